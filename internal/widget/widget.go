// Package widget implements the upload widget as an explicit state
// machine. Handlers feed events in and receive a list of side-effect
// descriptions back; the package itself performs no I/O, which keeps
// every transition unit-testable without a running server.
package widget

import (
	"github.com/voxpdf/frontend/internal/models"
)

// Client-visible upload constraints.
const (
	// MaxFileSize is the largest accepted PDF, in bytes (10 MiB).
	MaxFileSize = 10 * 1024 * 1024

	// PDFMediaType is the only accepted media type.
	PDFMediaType = "application/pdf"
)

// DownloadPathPrefix is prepended to the converter-reported filename
// to form the artifact download path.
const DownloadPathPrefix = "/api/download/"

// User-facing validation messages. These mirror what the conversion
// service reports for the same conditions so the widget behaves the
// same whether a file is rejected locally or upstream.
const (
	MsgOnlyPDF      = "Only PDF files are allowed"
	MsgFileTooLarge = "File size must be less than 10MB"
	MsgNoFile       = "Please select a PDF file first"
)

// State is the widget's UI state.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateUploading    State = "uploading"
	StateResultShown  State = "result_shown"
	StateErrorShown   State = "error_shown"
)

// FailureKind classifies a conversion attempt failure.
type FailureKind string

const (
	// FailureValidation covers rejections made before any network
	// activity (wrong media type, oversized file, no file selected).
	FailureValidation FailureKind = "validation"

	// FailureTransport covers upload requests that never produced a
	// parseable response (network error, malformed body).
	FailureTransport FailureKind = "transport"

	// FailureApplication covers well-formed responses that report
	// success=false.
	FailureApplication FailureKind = "application"
)

// Event is a stimulus applied to the widget.
type Event interface{ isEvent() }

// FileChosen is raised when the user picks or drops a candidate file.
type FileChosen struct {
	Name      string
	Size      int64
	MediaType string
}

// Submit is raised when the user requests conversion of the selected
// file.
type Submit struct{}

// UploadSucceeded carries the parsed success response.
type UploadSucceeded struct {
	Result models.ConversionResult
}

// UploadFailed carries the failure classification and the message to
// surface. Message is shown verbatim for application failures.
type UploadFailed struct {
	Kind    FailureKind
	Message string
}

// Reset returns the widget to its initial state.
type Reset struct{}

func (FileChosen) isEvent()      {}
func (Submit) isEvent()          {}
func (UploadSucceeded) isEvent() {}
func (UploadFailed) isEvent()    {}
func (Reset) isEvent()           {}

// Effect describes a side effect the caller should perform. Effects
// are ordered.
type Effect interface{ isEffect() }

// SetFileInfo displays the accepted file's name and human-readable
// size and enables the submit control.
type SetFileInfo struct {
	Name      string
	HumanSize string
}

// ShowError surfaces a user-visible error. The submit control is
// re-enabled so the user can retry.
type ShowError struct {
	Kind    FailureKind
	Message string
}

// BeginUpload instructs the caller to start exactly one asynchronous
// upload of the selected file. The submit control is disabled until
// the attempt resolves.
type BeginUpload struct {
	File models.SelectedFile
}

// ShowResult displays the conversion outcome: estimated playback
// minutes and a link to the converted artifact.
type ShowResult struct {
	Result           models.ConversionResult
	EstimatedMinutes int
	DownloadURL      string
}

// ClearView hides all panels and clears errors, returning the view to
// its initial appearance.
type ClearView struct{}

func (SetFileInfo) isEffect() {}
func (ShowError) isEffect()   {}
func (BeginUpload) isEffect() {}
func (ShowResult) isEffect()  {}
func (ClearView) isEffect()   {}

// Widget holds the state of one file-conversion attempt. It is not
// safe for concurrent use; callers serialize access per session.
type Widget struct {
	state     State
	file      *models.SelectedFile
	result    *models.ConversionResult
	lastError string
}

// New returns a widget in the Idle state.
func New() *Widget {
	return &Widget{state: StateIdle}
}

// State returns the current UI state.
func (w *Widget) State() State { return w.state }

// SelectedFile returns the currently staged file, or nil.
func (w *Widget) SelectedFile() *models.SelectedFile {
	if w.file == nil {
		return nil
	}
	f := *w.file
	return &f
}

// Result returns the last successful conversion result, or nil.
func (w *Widget) Result() *models.ConversionResult {
	if w.result == nil {
		return nil
	}
	r := *w.result
	return &r
}

// LastError returns the message of the last surfaced error, or "".
func (w *Widget) LastError() string { return w.lastError }

// Apply runs one state transition and returns the side effects the
// caller should perform.
func (w *Widget) Apply(ev Event) []Effect {
	switch e := ev.(type) {
	case FileChosen:
		return w.applyFileChosen(e)
	case Submit:
		return w.applySubmit()
	case UploadSucceeded:
		return w.applySucceeded(e)
	case UploadFailed:
		return w.applyFailed(e)
	case Reset:
		return w.applyReset()
	}
	return nil
}

func (w *Widget) applyFileChosen(e FileChosen) []Effect {
	// No transition out of Uploading except success or failure.
	if w.state == StateUploading {
		return nil
	}

	// Rejections leave the current selection untouched.
	if e.MediaType != PDFMediaType {
		w.lastError = MsgOnlyPDF
		return []Effect{ShowError{Kind: FailureValidation, Message: MsgOnlyPDF}}
	}
	if e.Size > MaxFileSize {
		w.lastError = MsgFileTooLarge
		return []Effect{ShowError{Kind: FailureValidation, Message: MsgFileTooLarge}}
	}

	w.file = &models.SelectedFile{Name: e.Name, Size: e.Size, MediaType: e.MediaType}
	w.result = nil
	w.lastError = ""
	w.state = StateFileSelected
	return []Effect{SetFileInfo{Name: e.Name, HumanSize: FormatSize(e.Size)}}
}

func (w *Widget) applySubmit() []Effect {
	// Submit is disabled while an upload is in flight; a second
	// Submit must not start a second request.
	if w.state == StateUploading {
		return nil
	}
	if w.file == nil {
		w.lastError = MsgNoFile
		return []Effect{ShowError{Kind: FailureValidation, Message: MsgNoFile}}
	}

	w.lastError = ""
	w.state = StateUploading
	return []Effect{BeginUpload{File: *w.file}}
}

func (w *Widget) applySucceeded(e UploadSucceeded) []Effect {
	if w.state != StateUploading {
		return nil
	}
	r := e.Result
	if r.TextLength < 0 {
		r.TextLength = 0
	}
	w.result = &r
	w.lastError = ""
	w.state = StateResultShown
	return []Effect{ShowResult{
		Result:           r,
		EstimatedMinutes: EstimateMinutes(r.TextLength),
		DownloadURL:      DownloadPathPrefix + r.Filename,
	}}
}

func (w *Widget) applyFailed(e UploadFailed) []Effect {
	if w.state != StateUploading {
		return nil
	}
	w.lastError = e.Message
	w.state = StateErrorShown
	return []Effect{ShowError{Kind: e.Kind, Message: e.Message}}
}

func (w *Widget) applyReset() []Effect {
	w.state = StateIdle
	w.file = nil
	w.result = nil
	w.lastError = ""
	return []Effect{ClearView{}}
}
