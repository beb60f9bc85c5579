// Package handler exposes the HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/savestreak/backend/internal/apperror"
	"github.com/savestreak/backend/internal/logger"
	"github.com/savestreak/backend/internal/repository"
)

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service-layer error onto an HTTP response,
// preserving the status and field of an AppError when present. Repository
// not-found sentinels surface through the services' error wraps and are
// translated here, so a missing row is a 404, not a 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		err = apperror.NotFound("user")
	case errors.Is(err, repository.ErrChallengeNotFound):
		err = apperror.NotFound("challenge")
	case errors.Is(err, repository.ErrNotificationNotFound):
		err = apperror.NotFound("notification")
	}

	status := apperror.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "error", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		respondJSON(w, appErr.StatusCode, ErrorResponse{
			Error: appErr.Message,
			Field: appErr.Field,
		})
		return
	}
	respondError(w, status, apperror.GetMessage(err))
}
