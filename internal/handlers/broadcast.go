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

// BroadcastHandler handles broadcast-related HTTP requests
type BroadcastHandler struct {
	broadcastService *services.BroadcastService
	audioService     *services.AudioService
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(broadcastService *services.BroadcastService, audioService *services.AudioService) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastService: broadcastService,
		audioService:     audioService,
	}
}

// List handles GET /api/v1/broadcasts
func (h *BroadcastHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	broadcasts, err := h.broadcastService.List(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list broadcasts")
		respondServiceError(w, err)
		return
	}

	if broadcasts == nil {
		broadcasts = []*models.Broadcast{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"broadcasts": broadcasts})
}

// CreateBroadcastRequest represents the request body for creating a broadcast
type CreateBroadcastRequest struct {
	AudioURL string `json:"audio_url"`
}

// Create handles POST /api/v1/broadcasts
func (h *BroadcastHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateBroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AudioURL == "" {
		respondError(w, "audio_url is required", http.StatusBadRequest)
		return
	}

	broadcast, err := h.broadcastService.Create(ctx, userID, req.AudioURL)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create broadcast")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("broadcast_id", broadcast.ID).
		Msg("Broadcast created")

	respondJSON(w, http.StatusCreated, broadcast)
}

// Deactivate handles DELETE /api/v1/broadcasts/{broadcast_id}
func (h *BroadcastHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	broadcastID := chi.URLParam(r, "broadcast_id")

	if broadcastID == "" {
		respondError(w, "broadcast_id is required", http.StatusBadRequest)
		return
	}

	if err := h.broadcastService.Deactivate(ctx, broadcastID, userID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("broadcast_id", broadcastID).
			Msg("Failed to deactivate broadcast")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("broadcast_id", broadcastID).
		Msg("Broadcast deactivated")

	w.WriteHeader(http.StatusNoContent)
}

// ReplyRequest represents the request body for replying to a broadcast
type ReplyRequest struct {
	AudioURL string `json:"audio_url"`
}

// ReplyResponse carries the conversation the reply landed in
type ReplyResponse struct {
	Conversation conversationView `json:"conversation"`
	Message      *models.Message  `json:"message"`
}

// Reply handles POST /api/v1/broadcasts/{broadcast_id}/reply
func (h *BroadcastHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	broadcastID := chi.URLParam(r, "broadcast_id")

	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AudioURL == "" {
		respondError(w, "audio_url is required", http.StatusBadRequest)
		return
	}

	conversation, message, err := h.broadcastService.Reply(ctx, broadcastID, userID, req.AudioURL)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("broadcast_id", broadcastID).
			Msg("Failed to reply to broadcast")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("broadcast_id", broadcastID).
		Str("conversation_id", conversation.ID).
		Msg("Broadcast reply sent")

	respondJSON(w, http.StatusCreated, ReplyResponse{Conversation: viewOf(conversation, userID), Message: message})
}

// UploadRequest represents the request body for an audio upload URL
type UploadRequest struct {
	ContentType string `json:"content_type"`
}

// Upload handles POST /api/v1/broadcasts/upload
func (h *BroadcastHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	upload, err := h.audioService.PresignUpload(ctx, "broadcasts", req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate upload URL")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, upload)
}
