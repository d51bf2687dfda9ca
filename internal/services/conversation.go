package services

import (
	"context"
	"fmt"
	"time"

	"talkk-backend/internal/jobs"
	"talkk-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ConversationService handles pairwise conversations and their messages.
// Every entry point checks the caller is one of the two participants.
type ConversationService struct {
	conversationStore ConversationStore
	messageStore      MessageStore
	userStore         UserStore
	moderationStore   ModerationStore
	queue             EventQueue
}

// NewConversationService creates a new conversation service
func NewConversationService(
	conversationStore ConversationStore,
	messageStore MessageStore,
	userStore UserStore,
	moderationStore ModerationStore,
	queue EventQueue,
) *ConversationService {
	return &ConversationService{
		conversationStore: conversationStore,
		messageStore:      messageStore,
		userStore:         userStore,
		moderationStore:   moderationStore,
		queue:             queue,
	}
}

// List returns the caller's conversations ordered by last activity
func (s *ConversationService) List(ctx context.Context, userID string) ([]*models.Conversation, error) {
	conversations, err := s.conversationStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// History returns the full message history and marks the other side's
// messages read for the caller.
func (s *ConversationService) History(ctx context.Context, conversationID, userID string) (*models.Conversation, []*models.Message, error) {
	conversation, err := s.requireParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.messageStore.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}

	if err := s.messageStore.MarkRead(ctx, conversationID, userID); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to mark messages read")
	}

	return conversation, messages, nil
}

// Send appends a voice message and queues a notification for the other
// participant.
func (s *ConversationService) Send(ctx context.Context, conversationID, senderID, audioURL string) (*models.Message, error) {
	if audioURL == "" {
		return nil, fmt.Errorf("%w: audio attachment is required", ErrValidation)
	}

	conversation, err := s.requireParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	sender, err := s.userStore.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, senderID)
	}
	if err := RequireActive(sender); err != nil {
		return nil, err
	}

	recipientID := conversation.OtherUserID(senderID)
	blocked, err := s.moderationStore.IsBlocked(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check block: %w", err)
	}
	if blocked {
		return nil, ErrBlocked
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		AudioURL:       audioURL,
		CreatedAt:      time.Now(),
	}
	if err := s.messageStore.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	event := jobs.Event{
		Kind:           jobs.EventNewMessage,
		RecipientID:    recipientID,
		SenderID:       senderID,
		ConversationID: conversationID,
		MessageID:      message.ID,
	}
	if err := s.queue.Enqueue(ctx, event); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to enqueue message notification")
	}

	return message, nil
}

// Favorite sets the favorite flag on the caller's side of the conversation
func (s *ConversationService) Favorite(ctx context.Context, conversationID, userID string, favorite bool) error {
	if _, err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	if err := s.conversationStore.SetFavorite(ctx, conversationID, userID, favorite); err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	return nil
}

// Delete removes a conversation and its messages. Participants only.
func (s *ConversationService) Delete(ctx context.Context, conversationID, userID string) error {
	if _, err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	if err := s.conversationStore.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// requireParticipant loads the conversation and rejects callers that are
// not one of its two participants.
func (s *ConversationService) requireParticipant(ctx context.Context, conversationID, userID string) (*models.Conversation, error) {
	conversation, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, conversationID)
	}
	if !conversation.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conversation, nil
}
