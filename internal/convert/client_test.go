package convert

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpload_Success(t *testing.T) {
	var gotName, gotLanguage, gotContent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		gotName = header.Filename
		gotContent = string(data)
		gotLanguage = r.FormValue("language")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"text_length":1500,"filename":"out.mp3","message":"Conversion completed successfully"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 5*time.Second)
	result, err := c.Upload(context.Background(), "doc.pdf",
		strings.NewReader("%PDF-1.4 fake"), 13, "es", nil)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1500, result.TextLength)
	assert.Equal(t, "out.mp3", result.Filename)
	assert.Equal(t, "doc.pdf", gotName)
	assert.Equal(t, "%PDF-1.4 fake", gotContent)
	assert.Equal(t, "es", gotLanguage)
}

func TestUpload_ServerReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"bad pdf"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, err := c.Upload(context.Background(), "doc.pdf", strings.NewReader("x"), 1, "en", nil)

	assert.Nil(t, result)
	var convErr *ConversionError
	if assert.ErrorAs(t, err, &convErr) {
		assert.Equal(t, "bad pdf", convErr.Message)
	}
}

func TestUpload_FailureWithoutMessageUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No success flag at all: treated as failure.
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Upload(context.Background(), "doc.pdf", strings.NewReader("x"), 1, "en", nil)

	var convErr *ConversionError
	if assert.ErrorAs(t, err, &convErr) {
		assert.Equal(t, "Conversion failed", convErr.Message)
	}
}

func TestUpload_UnparseableBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream exploded</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Upload(context.Background(), "doc.pdf", strings.NewReader("x"), 1, "en", nil)

	assert.Error(t, err)
	var convErr *ConversionError
	assert.False(t, errors.As(err, &convErr), "malformed body must not classify as an application failure")
}

func TestUpload_NetworkErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second)
	_, err := c.Upload(context.Background(), "doc.pdf", strings.NewReader("x"), 1, "en", nil)
	assert.Error(t, err)
}

func TestUpload_ReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Write([]byte(`{"success":true,"text_length":10,"filename":"out.mp3"}`))
	}))
	defer srv.Close()

	payload := strings.Repeat("a", 64*1024)
	var lastSent, lastTotal int64
	var calls int

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Upload(context.Background(), "doc.pdf",
		strings.NewReader(payload), int64(len(payload)), "en",
		func(sent, total int64) {
			if sent < lastSent {
				t.Errorf("progress went backwards: %d after %d", sent, lastSent)
			}
			lastSent, lastTotal = sent, total
			calls++
		})

	assert.NoError(t, err)
	assert.Greater(t, calls, 0)
	assert.Equal(t, int64(len(payload)), lastSent)
	assert.Equal(t, int64(len(payload)), lastTotal)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/download/out.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 5*time.Second)

	body, ct, length, err := c.Download(context.Background(), "out.mp3")
	assert.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, "mp3-bytes", string(data))
	assert.Equal(t, "audio/mpeg", ct)
	assert.Equal(t, int64(9), length)

	_, _, _, err = c.Download(context.Background(), "missing.mp3")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/status", r.URL.Path)
		w.Write([]byte(`{"status":"online","service":"PDF to MP3 Converter"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 5*time.Second)
	st, err := c.Status(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "online", st.Status)
	assert.Equal(t, "PDF to MP3 Converter", st.Service)
}
