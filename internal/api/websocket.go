// websocket.go - WebSocket progress streaming for conversion attempts
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/voxpdf/frontend/internal/models"
)

// WebSocket message types for the progress protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeProgress  = "progress"
	MsgTypeComplete  = "complete"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope for every frame on the progress socket
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSProgressPayload carries one progress notification
type WSProgressPayload struct {
	Progress float64 `json:"progress"`
	Stage    string  `json:"stage,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// ProgressSocketHandler streams conversion progress to the widget page
type ProgressSocketHandler struct {
	sessions Sessions
	upgrader websocket.Upgrader
}

// NewProgressSocketHandler creates a new progress socket handler
func NewProgressSocketHandler(sessions Sessions) *ProgressSocketHandler {
	return &ProgressSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The page and the API share an origin; dev servers
				// connect cross-origin.
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
	}
}

// HandleProgressSocket upgrades the connection and relays progress
// updates for the session named in the "session" query parameter.
// The socket stays open across attempts; the widget closes it when
// the page goes away.
func (psh *ProgressSocketHandler) HandleProgressSocket(c echo.Context) error {
	sessionID := c.QueryParam("session")
	if sessionID == "" {
		return NewValidationError("session")
	}

	updates, cancel, ok := psh.sessions.Subscribe(sessionID)
	if !ok {
		return NewNotFoundError("session", sessionID)
	}

	ws, err := psh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		cancel()
		return err
	}
	defer ws.Close()
	defer cancel()

	// gorilla/websocket allows one concurrent writer; the pong path
	// and the progress path share this mutex.
	var writeMu sync.Mutex
	send := func(msg WSMessage) {
		msg.Timestamp = time.Now().UnixMilli()
		writeMu.Lock()
		ws.WriteJSON(msg)
		writeMu.Unlock()
	}

	send(WSMessage{Type: MsgTypeConnected, ID: sessionID})

	// Reader loop: answers pings and unblocks the writer when the
	// client goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg WSMessage
			if err := ws.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == MsgTypePing {
				send(WSMessage{Type: MsgTypePong})
			}
		}
	}()

	for {
		select {
		case u, open := <-updates:
			if !open {
				// Session was cleaned up.
				return nil
			}
			send(progressMessage(u))
		case <-done:
			return nil
		}
	}
}

// progressMessage wraps a progress update in the wire envelope.
func progressMessage(u models.ProgressUpdate) WSMessage {
	msgType := MsgTypeProgress
	switch u.Stage {
	case models.StageCompleted:
		msgType = MsgTypeComplete
	case models.StageError:
		msgType = MsgTypeError
	}

	return WSMessage{
		Type: msgType,
		ID:   u.SessionID,
		Payload: mustJSON(WSProgressPayload{
			Progress: u.Percent,
			Stage:    u.Stage,
			Message:  u.Message,
		}),
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
