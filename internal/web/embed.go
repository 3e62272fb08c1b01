// Package web provides the embedded widget page so the service ships
// as a single binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed static/*
var staticFiles embed.FS

// GetFileSystem returns the embedded filesystem rooted at static/.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// RegisterStaticRoutes registers the widget page routes with Echo.
// The API routes should be registered before calling this function.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	fileServer := http.FileServer(http.FS(staticFS))

	e.GET("/", func(c echo.Context) error {
		data, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "missing embedded page")
		}
		return c.HTMLBlob(http.StatusOK, data)
	})

	e.GET("/static/*", func(c echo.Context) error {
		http.StripPrefix("/static/", fileServer).ServeHTTP(c.Response(), c.Request())
		return nil
	})

	// Anything else that is not an API call falls back to the page.
	e.GET("/*", func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			return echo.ErrNotFound
		}
		data, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			return echo.ErrNotFound
		}
		return c.HTMLBlob(http.StatusOK, data)
	})

	return nil
}
