package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/tabled/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *TabledServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/schemas", s.handleCreateSchema)
	mux.HandleFunc("GET /v1/schemas", s.handleListSchemas)
	mux.HandleFunc("GET /v1/schemas/{id}", s.handleGetSchema)
	mux.HandleFunc("PATCH /v1/schemas/{id}", s.handleUpdateSchema)
	mux.HandleFunc("POST /v1/schemas/{id}/deactivate", s.handleDeactivateSchema)
	mux.HandleFunc("DELETE /v1/schemas/{id}", s.handleDeleteSchema)
	mux.HandleFunc("POST /v1/schemas/{id}/populate", s.handlePopulate)
	mux.HandleFunc("DELETE /v1/schemas/{id}/records", s.handleClearRecords)
	mux.HandleFunc("GET /v1/records", s.handleListRecords)
	mux.HandleFunc("GET /v1/records/{id}", s.handleGetRecord)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, LoggingMiddleware(RecoveryMiddleware(mux)))
}

// handleHealth handles GET /v1/health.
func (s *TabledServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeValidationError writes a 400 response carrying a field name to message
// map so callers can surface per-field problems.
func writeValidationError(w http.ResponseWriter, verr *model.ValidationError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.FieldMap()})
}
