package handler

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/deppfellow/orgdir/internal/server"
	"github.com/labstack/echo/v4"
)

//go:embed docs/openapi.json docs/openapi.html
var docsFS embed.FS

type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

func (h *OpenAPIHandler) serve(c echo.Context, name, contentType string) error {
	data, err := docsFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, contentType, data)
}

// ServeOpenAPISpec returns the OpenAPI document.
func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	return h.serve(c, "docs/openapi.json", echo.MIMEApplicationJSONCharsetUTF8)
}

// ServeOpenAPIUI returns the API reference page, which loads the document.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	return h.serve(c, "docs/openapi.html", echo.MIMETextHTMLCharsetUTF8)
}
