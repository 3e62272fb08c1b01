// mock_converter.go - Mock upstream converter for testing
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/voxpdf/frontend/internal/convert"
	"github.com/voxpdf/frontend/internal/models"
)

// UploadCall records one Upload invocation.
type UploadCall struct {
	FileName string
	Size     int64
	Language string
	Body     []byte
}

// MockConverter implements session.Converter with canned responses.
type MockConverter struct {
	mu    sync.Mutex
	calls []UploadCall

	// Result and Err control the outcome; Err wins when both are set.
	Result *models.ConversionResult
	Err    error

	// EmitProgress, when true, invokes the progress callback with the
	// full file size before returning.
	EmitProgress bool

	// Release, when non-nil, blocks Upload until the channel is
	// closed. Used to hold an upload in flight during a test.
	Release chan struct{}
}

// NewMockConverter returns a mock that succeeds with the given result
// by default.
func NewMockConverter() *MockConverter {
	return &MockConverter{
		Result: &models.ConversionResult{
			Success:    true,
			TextLength: 1500,
			Filename:   "out.mp3",
		},
	}
}

func (m *MockConverter) Upload(ctx context.Context, name string, r io.Reader, size int64, language string, onProgress convert.ProgressFunc) (*models.ConversionResult, error) {
	body, _ := io.ReadAll(r)

	m.mu.Lock()
	m.calls = append(m.calls, UploadCall{
		FileName: name,
		Size:     size,
		Language: language,
		Body:     body,
	})
	release := m.Release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.EmitProgress && onProgress != nil {
		onProgress(size/2, size)
		onProgress(size, size)
	}

	if m.Err != nil {
		return nil, m.Err
	}
	res := *m.Result
	return &res, nil
}

// Calls returns a copy of the recorded uploads.
func (m *MockConverter) Calls() []UploadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]UploadCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many uploads were attempted.
func (m *MockConverter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
