// Package session keeps one upload widget instance per page session
// and drives it through conversion attempts against the upstream
// converter.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxpdf/frontend/internal/convert"
	"github.com/voxpdf/frontend/internal/models"
	"github.com/voxpdf/frontend/internal/widget"
)

// MaxSessions caps concurrent page sessions to bound memory.
const MaxSessions = 256

// DefaultSessionTimeout is how long an idle session survives before
// cleanup removes it.
const DefaultSessionTimeout = 30 * time.Minute

// progressBuffer is the per-subscriber channel depth. A subscriber
// that falls further behind than this loses intermediate updates.
const progressBuffer = 16

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)

// ConversionFailure is a failed conversion attempt, classified per
// the widget's error taxonomy. Message is safe to show to the user.
type ConversionFailure struct {
	Kind    widget.FailureKind
	Message string
}

func (e *ConversionFailure) Error() string { return e.Message }

// Converter is the slice of the upstream client this package needs.
// Satisfied by *convert.Client; mocked in tests.
type Converter interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, language string, onProgress convert.ProgressFunc) (*models.ConversionResult, error)
}

// Session is one page session: a widget instance plus its progress
// subscribers.
type Session struct {
	ID     string
	Widget *widget.Widget

	mu           sync.Mutex
	lastAccessed time.Time
	subscribers  map[chan models.ProgressUpdate]struct{}
}

// UploadRequest carries one conversion attempt into the manager.
type UploadRequest struct {
	FileName  string
	Size      int64
	MediaType string
	Language  string
	Body      io.Reader
}

// Manager owns all live sessions.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	converter Converter
}

// NewManager creates a session manager backed by the given converter
// client.
func NewManager(converter Converter) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		converter: converter,
	}
}

// Create registers a new session with a widget in the Idle state.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= MaxSessions {
		return nil, ErrTooManySessions
	}

	s := &Session{
		ID:           uuid.New().String(),
		Widget:       widget.New(),
		lastAccessed: time.Now(),
		subscribers:  make(map[chan models.ProgressUpdate]struct{}),
	}
	m.sessions[s.ID] = s
	return s, nil
}

// Get returns a session by ID, refreshing its idle timer.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	s.lastAccessed = time.Now()
	s.mu.Unlock()
	return s, true
}

// Reset returns the session's widget to Idle. Reports whether the
// session exists.
func (m *Manager) Reset(id string) bool {
	s, ok := m.Get(id)
	if !ok {
		return false
	}
	s.mu.Lock()
	s.Widget.Apply(widget.Reset{})
	s.mu.Unlock()
	return true
}

// CleanupOldSessions removes sessions idle for longer than maxAge and
// returns how many were dropped.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.lastAccessed.Before(cutoff)
		if stale {
			for ch := range s.subscribers {
				close(ch)
			}
			s.subscribers = nil
		}
		s.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Subscribe attaches a progress listener to a session. The returned
// cancel func must be called when the listener goes away.
func (m *Manager) Subscribe(id string) (<-chan models.ProgressUpdate, func(), bool) {
	s, ok := m.Get(id)
	if !ok {
		return nil, nil, false
	}

	ch := make(chan models.ProgressUpdate, progressBuffer)
	s.mu.Lock()
	if s.subscribers == nil {
		s.subscribers = make(map[chan models.ProgressUpdate]struct{})
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, live := s.subscribers[ch]; live {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, true
}

// publish fans an update out to all subscribers without blocking.
func (m *Manager) publish(s *Session, u models.ProgressUpdate) {
	u.SessionID = s.ID
	s.mu.Lock()
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
	s.mu.Unlock()
}

// Convert runs one conversion attempt end to end: validates the file
// through the widget, relays it upstream, publishes progress, and
// settles the widget on the outcome.
//
// Progress contract: 20% "uploading" when the request starts, real
// upload progress mapped into 20-60 while the body streams, 60%
// "processing" once the file is fully sent, and 100% "completed" only
// after a parsed success response. When the file size is unknown the
// fixed 20/60 checkpoints remain as the fallback.
func (m *Manager) Convert(ctx context.Context, id string, req UploadRequest) (*models.ConversionResult, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	effects := s.Widget.Apply(widget.FileChosen{
		Name:      req.FileName,
		Size:      req.Size,
		MediaType: req.MediaType,
	})
	if fail := rejection(effects); fail != nil {
		s.mu.Unlock()
		return nil, fail
	}

	effects = s.Widget.Apply(widget.Submit{})
	if fail := rejection(effects); fail != nil {
		s.mu.Unlock()
		return nil, fail
	}
	if !beginsUpload(effects) {
		// Submit produced nothing: another upload is in flight.
		s.mu.Unlock()
		return nil, &ConversionFailure{
			Kind:    widget.FailureValidation,
			Message: "An upload is already in progress",
		}
	}
	s.mu.Unlock()

	m.publish(s, models.ProgressUpdate{
		Percent: 20,
		Stage:   models.StageUploading,
		Message: "Uploading PDF...",
	})

	var lastPct float64 = 20
	onProgress := func(sent, total int64) {
		if total <= 0 {
			return
		}
		if sent >= total {
			m.publish(s, models.ProgressUpdate{
				Percent: 60,
				Stage:   models.StageProcessing,
				Message: "Extracting text and generating audio...",
			})
			lastPct = 60
			return
		}
		pct := 20 + 40*float64(sent)/float64(total)
		if pct-lastPct >= 1 {
			lastPct = pct
			m.publish(s, models.ProgressUpdate{
				Percent: pct,
				Stage:   models.StageUploading,
				Message: "Uploading PDF...",
			})
		}
	}

	result, err := m.converter.Upload(ctx, req.FileName, req.Body, req.Size, req.Language, onProgress)
	if err != nil {
		fail := classify(err)
		s.mu.Lock()
		s.Widget.Apply(widget.UploadFailed{Kind: fail.Kind, Message: fail.Message})
		s.mu.Unlock()
		m.publish(s, models.ProgressUpdate{
			Percent: 0,
			Stage:   models.StageError,
			Message: fail.Message,
		})
		return nil, fail
	}

	s.mu.Lock()
	s.Widget.Apply(widget.UploadSucceeded{Result: *result})
	s.mu.Unlock()
	m.publish(s, models.ProgressUpdate{
		Percent: 100,
		Stage:   models.StageCompleted,
		Message: "Conversion completed",
	})
	return result, nil
}

// rejection extracts a validation failure from widget effects, if any.
func rejection(effects []widget.Effect) *ConversionFailure {
	for _, eff := range effects {
		if show, ok := eff.(widget.ShowError); ok {
			return &ConversionFailure{Kind: show.Kind, Message: show.Message}
		}
	}
	return nil
}

func beginsUpload(effects []widget.Effect) bool {
	for _, eff := range effects {
		if _, ok := eff.(widget.BeginUpload); ok {
			return true
		}
	}
	return false
}

// classify maps an upstream error onto the widget's failure taxonomy.
// Application failures keep the server message verbatim; transport
// failures get a generic retryable message since no structured error
// is available.
func classify(err error) *ConversionFailure {
	var convErr *convert.ConversionError
	if errors.As(err, &convErr) {
		return &ConversionFailure{Kind: widget.FailureApplication, Message: convErr.Message}
	}
	return &ConversionFailure{
		Kind:    widget.FailureTransport,
		Message: "Conversion failed. Please check your connection and try again.",
	}
}
