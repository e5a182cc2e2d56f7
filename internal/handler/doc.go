// Package handler contains the HTTP handlers of the advisor API.
//
// Routes:
//   - POST /query - classify a free-text question and answer it
//   - GET /subjects - subject families and their catalog coverage
//   - GET /health, /live, /ready, /version - probes
//   - GET /openapi.yaml, /openapi.json, /docs - API documentation
//
// Application errors are written as {error, message, code, details} with
// the HTTP status carried by the error. AI gateway failures never reach
// this layer; the orchestrator replaces them with rule-based text.
package handler
