// handlers_proxy.go - Pass-through handlers for the conversion service
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ProxyHandlerImpl implements the ProxyHandler interface
type ProxyHandlerImpl struct {
	upstream Upstream
}

// NewProxyHandler creates a new proxy handler instance
func NewProxyHandler(upstream Upstream) ProxyHandler {
	return &ProxyHandlerImpl{upstream: upstream}
}

// HandleDownload streams a converted artifact from the conversion
// service. The filename comes verbatim from a prior upload response;
// anything that looks like a path is rejected.
func (h *ProxyHandlerImpl) HandleDownload(c echo.Context) error {
	filename := c.Param("filename")
	if filename == "" {
		return NewValidationError("filename")
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return NewBadRequestError("invalid filename", nil)
	}

	body, contentType, length, err := h.upstream.Download(c.Request().Context(), filename)
	if err != nil {
		return NewNotFoundError("file", filename)
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))
	if length >= 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(length, 10))
	}
	return c.Stream(http.StatusOK, contentType, body)
}

// HandleStatus probes the conversion service and relays its status
// document.
func (h *ProxyHandlerImpl) HandleStatus(c echo.Context) error {
	st, err := h.upstream.Status(c.Request().Context())
	if err != nil {
		return NewServiceUnavailableError("conversion service unreachable")
	}
	return c.JSON(http.StatusOK, st)
}
