package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"

	"github.com/acadvisor/acadvisor/docs"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Academic Advisor API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({url: "/openapi.yaml", dom_id: "#swagger-ui", displayRequestDuration: true});
    };
  </script>
</body>
</html>`

// DocsHandler serves the embedded OpenAPI document
type DocsHandler struct {
	yamlDoc []byte
	jsonDoc []byte
	jsonErr error
}

// NewDocsHandler converts the YAML document to JSON once up front
func NewDocsHandler() *DocsHandler {
	h := &DocsHandler{yamlDoc: docs.OpenAPISpec}
	h.jsonDoc, h.jsonErr = yamlToJSON(h.yamlDoc)
	return h
}

func yamlToJSON(in []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(in, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi yaml: %w", err)
	}
	return json.Marshal(doc)
}

// RegisterRoutes registers documentation routes
func (h *DocsHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/openapi.yaml", h.ServeYAML)
	app.Get("/openapi.json", h.ServeJSON)
	app.Get("/docs", h.ServeSwaggerUI)
}

// ServeYAML handles GET /openapi.yaml
func (h *DocsHandler) ServeYAML(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(h.yamlDoc)
}

// ServeJSON handles GET /openapi.json
func (h *DocsHandler) ServeJSON(c *fiber.Ctx) error {
	if h.jsonErr != nil {
		return errorResponse(c, apperrors.Internal("openapi document is not valid YAML").WithError(h.jsonErr))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(h.jsonDoc)
}

// ServeSwaggerUI handles GET /docs
func (h *DocsHandler) ServeSwaggerUI(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(swaggerPage)
}
