package handlers

import (
	"encoding/json"
	"net/http"

	"talkk-backend/internal/models"
	"talkk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles phone verification HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestCodeRequest represents the request body for requesting a code
type RequestCodeRequest struct {
	Phone string `json:"phone"`
}

// RequestCode handles POST /api/v1/auth/request_code
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Phone == "" {
		respondError(w, "phone is required", http.StatusBadRequest)
		return
	}

	if err := h.authService.RequestCode(ctx, req.Phone); err != nil {
		log.Error().Err(err).Str("phone", req.Phone).Msg("Failed to request verification code")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("phone", req.Phone).Msg("Verification code requested")

	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyCodeRequest represents the request body for verifying a code
type VerifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyCodeResponse carries the issued bearer token and the user
type VerifyCodeResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// VerifyCode handles POST /api/v1/auth/verify_code
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Phone == "" || req.Code == "" {
		respondError(w, "phone and code are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.VerifyCode(ctx, req.Phone, req.Code)
	if err != nil {
		log.Warn().Err(err).Str("phone", req.Phone).Msg("Verification failed")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("nickname", user.Nickname).
		Msg("Phone verified")

	respondJSON(w, http.StatusOK, VerifyCodeResponse{Token: token, User: user})
}
