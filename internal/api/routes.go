// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/voxpdf/frontend/internal/config"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions  Sessions
	Upstream  Upstream
	Languages []config.Language
	Version   string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Session  SessionHandler
	Upload   UploadHandler
	Proxy    ProxyHandler
	Progress *ProgressSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Session:  NewSessionHandler(deps.Sessions, deps.Languages),
		Upload:   NewUploadHandler(deps.Sessions, deps.Languages),
		Proxy:    NewProxyHandler(deps.Upstream),
		Progress: NewProgressSocketHandler(deps.Sessions),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	api := e.Group("/api")

	// Health and upstream status
	api.GET("/health", h.Health.HandleHealth)
	api.GET("/status", h.Proxy.HandleStatus)

	// Widget sessions
	api.POST("/session", h.Session.HandleCreateSession)
	api.GET("/session/:id", h.Session.HandleGetSession)
	api.GET("/session/:id/msgpack", h.Session.HandleGetSessionMsgpack)
	api.POST("/session/:id/reset", h.Session.HandleResetSession)
	api.GET("/languages", h.Session.HandleGetLanguages)

	// Conversion
	api.POST("/upload", h.Upload.HandleUpload)
	api.GET("/download/:filename", h.Proxy.HandleDownload)

	// Progress stream
	api.GET("/ws/progress", h.Progress.HandleProgressSocket)
}
