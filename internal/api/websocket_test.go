// websocket_test.go - Progress socket integration test
package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/voxpdf/frontend/internal/session"
	"github.com/voxpdf/frontend/internal/testutil"
	"github.com/voxpdf/frontend/internal/widget"
)

func TestProgressSocket_StreamsConversionUpdates(t *testing.T) {
	conv := testutil.NewMockConverter()
	conv.EmitProgress = true
	mgr := session.NewManager(conv)
	s, _ := mgr.Create()

	e := echo.New()
	psh := NewProgressSocketHandler(mgr)
	e.GET("/api/ws/progress", psh.HandleProgressSocket)

	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/progress?session=" + s.ID
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello WSMessage
	assert.NoError(t, ws.ReadJSON(&hello))
	assert.Equal(t, MsgTypeConnected, hello.Type)
	assert.Equal(t, s.ID, hello.ID)

	// Drive a conversion; its progress must arrive on the socket.
	_, err = mgr.Convert(context.Background(), s.ID, session.UploadRequest{
		FileName:  "doc.pdf",
		Size:      8,
		MediaType: widget.PDFMediaType,
		Language:  "en",
		Body:      strings.NewReader("%PDF-1.4"),
	})
	assert.NoError(t, err)

	sawProgress := false
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v (saw progress: %v)", err, sawProgress)
		}
		if msg.Type == MsgTypeProgress {
			sawProgress = true
		}
		if msg.Type == MsgTypeComplete {
			break
		}
	}
	assert.True(t, sawProgress, "expected at least one progress frame before completion")
}

func TestProgressSocket_UnknownSession(t *testing.T) {
	mgr := session.NewManager(testutil.NewMockConverter())
	psh := NewProgressSocketHandler(mgr)

	e := echo.New()
	req := httptest.NewRequest("GET", "/api/ws/progress?session=nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := psh.HandleProgressSocket(c)
	apiErr, ok := err.(*APIError)
	if assert.True(t, ok) {
		assert.Equal(t, "NOT_FOUND", apiErr.Code)
	}
}
