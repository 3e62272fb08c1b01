// handlers_upload.go - Conversion upload handler
package api

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voxpdf/frontend/internal/config"
	"github.com/voxpdf/frontend/internal/session"
	"github.com/voxpdf/frontend/internal/widget"
)

// uploadSuccessResponse mirrors the converter's upload contract,
// enriched with the values the result view needs.
type uploadSuccessResponse struct {
	Success          bool   `json:"success"`
	TextLength       int    `json:"text_length"`
	Filename         string `json:"filename"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	DownloadURL      string `json:"download_url"`
	Message          string `json:"message,omitempty"`
}

// uploadFailureResponse is the failure side of the upload contract:
// success false plus a user-facing error string.
type uploadFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	sessions  Sessions
	languages []config.Language
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(sessions Sessions, languages []config.Language) UploadHandler {
	return &UploadHandlerImpl{
		sessions:  sessions,
		languages: languages,
	}
}

// HandleUpload accepts a multipart PDF upload and relays it to the
// conversion service. The multipart fields are "file", "language" and
// "sessionId" (the session may also arrive via the X-Session-ID
// header). Failures follow the {"success":false,"error":...} contract
// so the widget can show them directly.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	sessionID := c.FormValue("sessionId")
	if sessionID == "" {
		sessionID = c.Request().Header.Get("X-Session-ID")
	}
	if sessionID == "" {
		return NewValidationError("sessionId")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadFailureResponse{
			Error: "No file uploaded",
		})
	}

	language := c.FormValue("language")
	if language == "" || !h.supported(language) {
		// Unknown codes fall back to English, matching the converter.
		language = "en"
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	result, err := h.sessions.Convert(c.Request().Context(), sessionID, session.UploadRequest{
		FileName:  file.Filename,
		Size:      file.Size,
		MediaType: declaredMediaType(file.Header.Get(echo.HeaderContentType), file.Filename),
		Language:  language,
		Body:      src,
	})
	if err != nil {
		return uploadError(c, sessionID, err)
	}

	return c.JSON(http.StatusOK, uploadSuccessResponse{
		Success:          true,
		TextLength:       result.TextLength,
		Filename:         result.Filename,
		EstimatedMinutes: widget.EstimateMinutes(result.TextLength),
		DownloadURL:      widget.DownloadPathPrefix + result.Filename,
		Message:          result.Message,
	})
}

func (h *UploadHandlerImpl) supported(code string) bool {
	for _, l := range h.languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// uploadError maps a conversion failure onto the upload contract.
func uploadError(c echo.Context, sessionID string, err error) error {
	if errors.Is(err, session.ErrSessionNotFound) {
		return NewNotFoundError("session", sessionID)
	}

	var fail *session.ConversionFailure
	if errors.As(err, &fail) {
		status := http.StatusBadRequest
		switch fail.Kind {
		case widget.FailureTransport:
			status = http.StatusBadGateway
		case widget.FailureApplication:
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, uploadFailureResponse{Error: fail.Message})
	}

	return NewInternalError("conversion attempt failed", err)
}

// declaredMediaType resolves the media type the client declared for
// the uploaded part, falling back to the filename extension when the
// part carries no content type.
func declaredMediaType(header, filename string) string {
	mt := strings.TrimSpace(strings.Split(header, ";")[0])
	if mt != "" {
		return mt
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return strings.Split(byExt, ";")[0]
	}
	return "application/octet-stream"
}
