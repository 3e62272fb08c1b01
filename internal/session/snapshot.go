package session

import (
	"github.com/voxpdf/frontend/internal/widget"
)

// FileView is the display form of the selected file.
type FileView struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	HumanSize string `json:"humanSize"`
}

// ResultView is the display form of a conversion result.
type ResultView struct {
	Filename         string `json:"filename"`
	TextLength       int    `json:"textLength"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	DownloadURL      string `json:"downloadUrl"`
}

// Snapshot is a point-in-time view of one session's widget, shaped
// for the UI.
type Snapshot struct {
	SessionID string       `json:"sessionId"`
	State     widget.State `json:"state"`
	File      *FileView    `json:"file,omitempty"`
	Result    *ResultView  `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Snapshot returns the current view of a session, or false when the
// session does not exist.
func (m *Manager) Snapshot(id string) (*Snapshot, bool) {
	s, ok := m.Get(id)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		SessionID: s.ID,
		State:     s.Widget.State(),
		Error:     s.Widget.LastError(),
	}
	if f := s.Widget.SelectedFile(); f != nil {
		snap.File = &FileView{
			Name:      f.Name,
			Size:      f.Size,
			HumanSize: widget.FormatSize(f.Size),
		}
	}
	if r := s.Widget.Result(); r != nil {
		snap.Result = &ResultView{
			Filename:         r.Filename,
			TextLength:       r.TextLength,
			EstimatedMinutes: widget.EstimateMinutes(r.TextLength),
			DownloadURL:      widget.DownloadPathPrefix + r.Filename,
		}
	}
	return snap, true
}
