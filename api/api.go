// Package api carries the published OpenAPI description of the HTTP API.
package api

import _ "embed"

// OpenAPI is api/openapi.yaml as built into the binary.
//
//go:embed openapi.yaml
var OpenAPI []byte
