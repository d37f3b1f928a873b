package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/service"
)

// envelope is the standard response shape: {"success": true, ...} on the way
// out, {"success": false, "error": "..."} on failures.
type envelope map[string]any

func respondJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, fields envelope) {
	payload := envelope{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	respondJSON(w, status, payload)
}

// respondError maps domain sentinels to status codes. Anything unmapped is a
// 500 whose detail stays in the server log, not the response body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		msg = "invalid credentials"
	default:
		status = http.StatusInternalServerError
		msg = "internal server error"
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	respondJSON(w, status, envelope{"success": false, "error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "invalid request body"})
		return false
	}
	return true
}
