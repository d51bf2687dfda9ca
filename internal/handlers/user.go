package handlers

import (
	"encoding/json"
	"net/http"

	"talkk-backend/internal/middleware"
	"talkk-backend/internal/models"
	"talkk-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles profile and moderation HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /api/v1/users/me. The gate already resolved the user
// for this request, so it is served straight from context.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Nickname string        `json:"nickname"`
	Gender   models.Gender `json:"gender"`
}

// UpdateMe handles PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Nickname == "" {
		respondError(w, "nickname is required", http.StatusBadRequest)
		return
	}
	if req.Gender == "" {
		req.Gender = models.GenderUnknown
	}

	user, err := h.userService.UpdateProfile(ctx, userID, req.Nickname, req.Gender)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("nickname", user.Nickname).
		Msg("Profile updated")

	respondJSON(w, http.StatusOK, user)
}

// PushTokenRequest represents the request body for push-token registration
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// RegisterPushToken handles POST /api/v1/users/me/push_token
func (h *UserHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.RegisterPushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to register push token")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Push token registered")

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Block handles POST /api/v1/users/{user_id}/block
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "user_id")

	if err := h.userService.Block(ctx, userID, targetID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("target_id", targetID).
			Msg("Failed to block user")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("target_id", targetID).Msg("User blocked")

	respondJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
}

// Unblock handles DELETE /api/v1/users/{user_id}/block
func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "user_id")

	if err := h.userService.Unblock(ctx, userID, targetID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("target_id", targetID).
			Msg("Failed to unblock user")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "unblocked"})
}

// ReportRequest represents the request body for filing a report
type ReportRequest struct {
	Reason string `json:"reason"`
}

// Report handles POST /api/v1/users/{user_id}/report
func (h *UserHandler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "user_id")

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Reason == "" {
		respondError(w, "reason is required", http.StatusBadRequest)
		return
	}

	if err := h.userService.Report(ctx, userID, targetID, req.Reason); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("target_id", targetID).
			Msg("Failed to report user")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("target_id", targetID).Msg("User reported")

	respondJSON(w, http.StatusCreated, map[string]string{"status": "reported"})
}
