// interfaces.go - Handler and collaborator interfaces for clean separation of concerns
package api

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/voxpdf/frontend/internal/convert"
	"github.com/voxpdf/frontend/internal/models"
	"github.com/voxpdf/frontend/internal/session"
)

// Sessions is the slice of the session manager the handlers need.
// This allows mocking in tests.
type Sessions interface {
	Create() (*session.Session, error)
	Snapshot(id string) (*session.Snapshot, bool)
	Reset(id string) bool
	Convert(ctx context.Context, id string, req session.UploadRequest) (*models.ConversionResult, error)
	Subscribe(id string) (<-chan models.ProgressUpdate, func(), bool)
}

// Upstream is the slice of the converter client used for proxying.
type Upstream interface {
	Download(ctx context.Context, filename string) (io.ReadCloser, string, int64, error)
	Status(ctx context.Context) (*convert.ServiceStatus, error)
}

// SessionHandler handles widget session lifecycle operations
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleGetSessionMsgpack(c echo.Context) error
	HandleResetSession(c echo.Context) error
	HandleGetLanguages(c echo.Context) error
}

// UploadHandler handles the conversion upload operation
type UploadHandler interface {
	HandleUpload(c echo.Context) error
}

// ProxyHandler handles pass-through operations to the converter
type ProxyHandler interface {
	HandleDownload(c echo.Context) error
	HandleStatus(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
