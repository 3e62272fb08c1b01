package models

// ProgressUpdate is a single progress notification for an in-flight
// conversion attempt. Percent runs 0-100; Stage is one of "uploading",
// "processing", "completed" or "error".
type ProgressUpdate struct {
	SessionID string  `json:"sessionId"`
	Percent   float64 `json:"progress"`
	Stage     string  `json:"stage"`
	Message   string  `json:"message,omitempty"`
}

// Progress stages.
const (
	StageUploading  = "uploading"
	StageProcessing = "processing"
	StageCompleted  = "completed"
	StageError      = "error"
)
