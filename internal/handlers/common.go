package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"talkk-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps service sentinel errors onto HTTP status codes.
// Anything unmapped is a 500 with the detail suppressed.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrBlocked),
		errors.Is(err, services.ErrSuspended),
		errors.Is(err, services.ErrBanned):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrNicknameTaken):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrInsufficientCredits):
		respondError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrCodeMismatch),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrTooManyAttempts):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrInvalidToken):
		respondError(w, err.Error(), http.StatusUnauthorized)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
