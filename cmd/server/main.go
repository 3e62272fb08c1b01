package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/voxpdf/frontend/internal/api"
	"github.com/voxpdf/frontend/internal/config"
	"github.com/voxpdf/frontend/internal/convert"
	"github.com/voxpdf/frontend/internal/session"
	"github.com/voxpdf/frontend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Resolve config next to the executable.
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	configPath := filepath.Join(filepath.Dir(exePath), "config.yaml")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Upstream converter client.
	converter := convert.NewClient(cfg.Upstream.BaseURL, cfg.RequestTimeout())

	// Widget session manager with background cleanup.
	sessionMgr := session.NewManager(converter)
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(cfg.SessionTimeout())
		}
	}()

	handlers := api.NewHandlers(&api.Dependencies{
		Sessions:  sessionMgr,
		Upstream:  converter,
		Languages: cfg.Languages,
		Version:   Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.HasPrefix(path, "/api/ws/") ||
				strings.HasPrefix(path, "/api/session/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Uploads, downloads and the progress socket run as long
			// as the conversion does.
			path := c.Request().URL.Path
			return strings.Contains(path, "/upload") ||
				strings.Contains(path, "/download") ||
				strings.Contains(path, "/ws/")
		},
		ErrorMessage: "Request timeout",
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Session-ID"},
		}))
	}

	// API routes, then the embedded widget page.
	api.RegisterRoutes(e, handlers)
	if err := web.RegisterStaticRoutes(e); err != nil {
		fmt.Printf("Warning: failed to register static routes: %v\n", err)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           voxpdf Upload Frontend                          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Config:     %-45s║\n", configPath)
	fmt.Printf("║  Listen:     http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Converter:  %-45s║\n", cfg.Upstream.BaseURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
