package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxIDLength matches the width of the id columns.
	maxIDLength = 64
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20
)

// ParsePathID extracts a catalog id from the request path.
// Returns the id and true on success, or "" and false on error
// (after writing an error response).
func ParsePathID(w http.ResponseWriter, r *http.Request, pathParam string, logger *zap.Logger) (string, bool) {
	id := strings.TrimSpace(r.PathValue(pathParam))
	if id == "" || len(id) > maxIDLength {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid "+pathParam); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", false
	}
	return id, true
}

// DecodeBody decodes a JSON request body into dest.
// Returns false after writing a 400 response when the body is not valid JSON.
func DecodeBody(w http.ResponseWriter, r *http.Request, dest any, logger *zap.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		logger.Debug("Rejected request body", zap.String("path", r.URL.Path), zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}
