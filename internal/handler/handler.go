// Package handler provides HTTP request handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Version is the application version.
const Version = "1.0.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health requests.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeMsg writes a single-field JSON body. The articles routes use
// "msg" while the hotels and auth routes use "message".
func writeMsg(logger *zap.Logger, w http.ResponseWriter, status int, key, message string) {
	writeJSON(logger, w, status, map[string]string{key: message})
}
