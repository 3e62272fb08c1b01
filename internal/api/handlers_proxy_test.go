// handlers_proxy_test.go - Tests for converter pass-through handlers
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/voxpdf/frontend/internal/convert"
)

func proxyContext(path, filename string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if filename != "" {
		c.SetParamNames("filename")
		c.SetParamValues(filename)
	}
	return c, rec
}

func TestHandleDownload_ProxiesArtifact(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/out.mp3", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer upstream.Close()

	h := NewProxyHandler(convert.NewClient(upstream.URL, 5*time.Second))
	c, rec := proxyContext("/api/download/out.mp3", "out.mp3")

	if assert.NoError(t, h.HandleDownload(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "mp3-bytes", rec.Body.String())
		assert.Equal(t, "audio/mpeg", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "out.mp3")
	}
}

func TestHandleDownload_RejectsPathTraversal(t *testing.T) {
	h := NewProxyHandler(convert.NewClient("http://unused", time.Second))

	for _, bad := range []string{"../secrets.txt", "a/b.mp3", `a\b.mp3`, "..", ""} {
		c, _ := proxyContext("/api/download/x", bad)
		err := h.HandleDownload(c)
		apiErr, ok := err.(*APIError)
		if assert.True(t, ok, "filename %q must be rejected", bad) {
			assert.Equal(t, http.StatusBadRequest, apiErr.Status, "filename %q", bad)
		}
	}
}

func TestHandleDownload_UpstreamMiss(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	h := NewProxyHandler(convert.NewClient(upstream.URL, 5*time.Second))
	c, _ := proxyContext("/api/download/gone.mp3", "gone.mp3")

	err := h.HandleDownload(c)
	apiErr, ok := err.(*APIError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	}
}

func TestHandleStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"online","service":"PDF to MP3 Converter"}`))
	}))
	h := NewProxyHandler(convert.NewClient(upstream.URL, 5*time.Second))

	c, rec := proxyContext("/api/status", "")
	if assert.NoError(t, h.HandleStatus(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"online"`)
	}

	// Unreachable converter reports service unavailable.
	upstream.Close()
	c, _ = proxyContext("/api/status", "")
	err := h.HandleStatus(c)
	apiErr, ok := err.(*APIError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	}
}
