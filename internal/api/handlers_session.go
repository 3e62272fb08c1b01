// handlers_session.go - Widget session lifecycle handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/voxpdf/frontend/internal/config"
	"github.com/voxpdf/frontend/internal/session"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	sessions  Sessions
	languages []config.Language
}

// NewSessionHandler creates a new session handler instance
func NewSessionHandler(sessions Sessions, languages []config.Language) SessionHandler {
	return &SessionHandlerImpl{
		sessions:  sessions,
		languages: languages,
	}
}

// HandleCreateSession registers a new widget session
func (h *SessionHandlerImpl) HandleCreateSession(c echo.Context) error {
	s, err := h.sessions.Create()
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			return NewSessionLimitError()
		}
		return NewInternalError("failed to create session", err)
	}

	snap, _ := h.sessions.Snapshot(s.ID)
	return c.JSON(http.StatusCreated, snap)
}

// HandleGetSession returns the current widget state for a session
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	snap, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleGetSessionMsgpack returns the widget state in MessagePack format
func (h *SessionHandlerImpl) HandleGetSessionMsgpack(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	snap, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	doc := map[string]interface{}{
		"sessionId": snap.SessionID,
		"state":     string(snap.State),
		"error":     snap.Error,
	}
	if snap.File != nil {
		doc["file"] = map[string]interface{}{
			"name":      snap.File.Name,
			"size":      snap.File.Size,
			"humanSize": snap.File.HumanSize,
		}
	}
	if snap.Result != nil {
		doc["result"] = map[string]interface{}{
			"filename":         snap.Result.Filename,
			"textLength":       snap.Result.TextLength,
			"estimatedMinutes": snap.Result.EstimatedMinutes,
			"downloadUrl":      snap.Result.DownloadURL,
		}
	}

	data, err := msgpack.Marshal(doc)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleResetSession returns the widget to its initial state
func (h *SessionHandlerImpl) HandleResetSession(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if !h.sessions.Reset(id) {
		return NewNotFoundError("session", id)
	}

	snap, _ := h.sessions.Snapshot(id)
	return c.JSON(http.StatusOK, snap)
}

// HandleGetLanguages returns the target-language selector options
func (h *SessionHandlerImpl) HandleGetLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, h.languages)
}
