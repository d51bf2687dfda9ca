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

// ConversationHandler handles conversation-related HTTP requests
type ConversationHandler struct {
	conversationService *services.ConversationService
	audioService        *services.AudioService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *services.ConversationService, audioService *services.AudioService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		audioService:        audioService,
	}
}

// conversationView is a conversation shaped for one viewer: the favorite
// flag is the viewer's side of the pair.
type conversationView struct {
	ID          string `json:"id"`
	OtherUserID string `json:"other_user_id"`
	Favorite    bool   `json:"favorite"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func viewOf(c *models.Conversation, viewerID string) conversationView {
	return conversationView{
		ID:          c.ID,
		OtherUserID: c.OtherUserID(viewerID),
		Favorite:    c.FavoriteFor(viewerID),
		CreatedAt:   c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   c.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	conversations, err := h.conversationService.List(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list conversations")
		respondServiceError(w, err)
		return
	}

	views := make([]conversationView, 0, len(conversations))
	for _, c := range conversations {
		views = append(views, viewOf(c, userID))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"conversations": views})
}

// HistoryResponse carries a conversation and its full message history
type HistoryResponse struct {
	Conversation conversationView  `json:"conversation"`
	Messages     []*models.Message `json:"messages"`
}

// History handles GET /api/v1/conversations/{conversation_id}/messages
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	conversationID := chi.URLParam(r, "conversation_id")

	conversation, messages, err := h.conversationService.History(ctx, conversationID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("conversation_id", conversationID).
			Msg("Failed to load conversation history")
		respondServiceError(w, err)
		return
	}

	if messages == nil {
		messages = []*models.Message{}
	}

	respondJSON(w, http.StatusOK, HistoryResponse{
		Conversation: viewOf(conversation, userID),
		Messages:     messages,
	})
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	AudioURL string `json:"audio_url"`
}

// SendMessage handles POST /api/v1/conversations/{conversation_id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	conversationID := chi.URLParam(r, "conversation_id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AudioURL == "" {
		respondError(w, "audio_url is required", http.StatusBadRequest)
		return
	}

	message, err := h.conversationService.Send(ctx, conversationID, userID, req.AudioURL)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("conversation_id", conversationID).
			Msg("Failed to send message")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("conversation_id", conversationID).
		Str("message_id", message.ID).
		Msg("Message sent")

	respondJSON(w, http.StatusCreated, message)
}

// FavoriteRequest represents the request body for the favorite toggle
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// Favorite handles PUT /api/v1/conversations/{conversation_id}/favorite
func (h *ConversationHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	conversationID := chi.URLParam(r, "conversation_id")

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.conversationService.Favorite(ctx, conversationID, userID, req.Favorite); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("conversation_id", conversationID).
			Msg("Failed to set favorite")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"favorite": req.Favorite})
}

// Delete handles DELETE /api/v1/conversations/{conversation_id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	conversationID := chi.URLParam(r, "conversation_id")

	if err := h.conversationService.Delete(ctx, conversationID, userID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("conversation_id", conversationID).
			Msg("Failed to delete conversation")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("conversation_id", conversationID).
		Msg("Conversation deleted")

	w.WriteHeader(http.StatusNoContent)
}

// Upload handles POST /api/v1/conversations/upload
func (h *ConversationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	upload, err := h.audioService.PresignUpload(ctx, "messages", req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate upload URL")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, upload)
}
