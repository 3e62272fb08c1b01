// Package convert implements the HTTP client for the external PDF
// conversion service. The service is an opaque collaborator: this
// package only speaks its wire contract (multipart upload, JSON
// result, artifact download) and never inspects PDF content itself.
package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxpdf/frontend/internal/models"
)

// DefaultTimeout bounds a single conversion round trip when no
// timeout is configured. The upstream may spend minutes synthesizing
// audio for a large PDF, so this is deliberately generous.
const DefaultTimeout = 120 * time.Second

// ConversionError is a well-formed upstream response that reports
// failure. Message carries the server-supplied text verbatim.
type ConversionError struct {
	Message string
}

func (e *ConversionError) Error() string { return e.Message }

// ProgressFunc receives upload progress: bytes of the file sent so
// far and the file's total size. Total may be zero when unknown.
type ProgressFunc func(sent, total int64)

// ServiceStatus is the upstream liveness document.
type ServiceStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Client talks to one conversion service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL
// (e.g. "http://converter:5000/api"). A non-positive timeout falls
// back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// uploadResponse is the upstream upload contract. A missing success
// flag is treated as failure.
type uploadResponse struct {
	Success    bool   `json:"success"`
	TextLength int    `json:"text_length"`
	Filename   string `json:"filename"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// Upload streams one file to the converter as a multipart POST with
// fields "file" and "language". onProgress, when non-nil, is invoked
// as file bytes are written to the wire.
//
// Errors: a *ConversionError when the service responded with a parsed
// failure; any other error means the transport call itself failed.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, size int64, language string, onProgress ProgressFunc) (*models.ConversionResult, error) {
	src := r
	if onProgress != nil {
		src = &progressReader{r: r, total: size, fn: onProgress}
	}

	// Stream the multipart body through a pipe so the file is never
	// buffered whole in memory.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("language", language); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding upload response (status %d): %w", resp.StatusCode, err)
	}

	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Conversion failed"
		}
		return nil, &ConversionError{Message: msg}
	}
	if out.TextLength < 0 {
		out.TextLength = 0
	}
	return &models.ConversionResult{
		Success:    true,
		TextLength: out.TextLength,
		Filename:   out.Filename,
		Message:    out.Message,
	}, nil
}

// Download opens a stream for a converted artifact. The caller must
// close the returned reader. Returns the content type and length
// (-1 when unknown) alongside the stream.
func (c *Client) Download(ctx context.Context, filename string) (io.ReadCloser, string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, "", 0, fmt.Errorf("building download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("download request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", 0, fmt.Errorf("download %s: status %d", filename, resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return resp.Body, ct, resp.ContentLength, nil
}

// Status probes the converter's status endpoint.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status request: status %d", resp.StatusCode)
	}

	var st ServiceStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}
	return &st, nil
}

// progressReader counts file bytes as the multipart writer drains
// them and reports the running total.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
