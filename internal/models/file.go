package models

// SelectedFile describes the PDF currently staged for conversion.
// It is owned by a single widget instance and never shared between
// sessions.
type SelectedFile struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MediaType string `json:"mediaType"`
}
