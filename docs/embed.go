// Package docs embeds the OpenAPI description of the advisor API.
package docs

import (
	_ "embed"
)

// OpenAPISpec is the OpenAPI 3 document in YAML.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
