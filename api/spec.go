// Package api embeds the OpenAPI description of the HTTP API.
package api

import _ "embed"

// OpenAPISpec is the YAML source of the API description served at
// /api/openapi.json.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
