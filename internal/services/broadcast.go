package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkk-backend/internal/jobs"
	"talkk-backend/internal/models"
	"talkk-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	broadcastLifetime = 6 * 24 * time.Hour
	broadcastPageSize = 50
	broadcastCost     = 1
)

// BroadcastService handles the broadcast lifecycle: create, list through
// the feed cache, owner deactivation, and replies that open conversations.
type BroadcastService struct {
	broadcastStore    BroadcastStore
	conversationStore ConversationStore
	messageStore      MessageStore
	userStore         UserStore
	moderationStore   ModerationStore
	feedCache         FeedCache
	queue             EventQueue
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(
	broadcastStore BroadcastStore,
	conversationStore ConversationStore,
	messageStore MessageStore,
	userStore UserStore,
	moderationStore ModerationStore,
	feedCache FeedCache,
	queue EventQueue,
) *BroadcastService {
	return &BroadcastService{
		broadcastStore:    broadcastStore,
		conversationStore: conversationStore,
		messageStore:      messageStore,
		userStore:         userStore,
		moderationStore:   moderationStore,
		feedCache:         feedCache,
		queue:             queue,
	}
}

// Create publishes a new broadcast for six days and spends the posting
// cost from the owner's credits.
func (s *BroadcastService) Create(ctx context.Context, ownerID, audioURL string) (*models.Broadcast, error) {
	if audioURL == "" {
		return nil, fmt.Errorf("%w: audio attachment is required", ErrValidation)
	}

	owner, err := s.userStore.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, ownerID)
	}
	if err := RequireActive(owner); err != nil {
		return nil, err
	}

	now := time.Now()
	spend := &models.CreditTransaction{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Amount:    -broadcastCost,
		Kind:      models.TransactionKindSpend,
		Note:      "broadcast",
		CreatedAt: now,
	}
	if err := s.userStore.AdjustCredits(ctx, spend); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientCredits
		}
		return nil, fmt.Errorf("failed to spend credits: %w", err)
	}

	b := &models.Broadcast{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		AudioURL:  audioURL,
		Active:    true,
		ExpiredAt: now.Add(broadcastLifetime),
		CreatedAt: now,
	}
	if err := s.broadcastStore.Create(ctx, b); err != nil {
		s.refundSpend(ctx, ownerID)
		return nil, fmt.Errorf("failed to create broadcast: %w", err)
	}

	s.invalidateFeed(ctx)

	return b, nil
}

// List serves the most recent active broadcasts from the feed cache,
// recomputing on miss, then filters out blocked users for the viewer.
// The block filter runs after the cache because the cache key is global.
func (s *BroadcastService) List(ctx context.Context, viewerID string) ([]*models.Broadcast, error) {
	broadcasts, err := s.feedCache.Get(ctx)
	if err != nil {
		broadcasts, err = s.broadcastStore.ListActive(ctx, broadcastPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list broadcasts: %w", err)
		}
		if cacheErr := s.feedCache.Set(ctx, broadcasts); cacheErr != nil {
			log.Warn().Err(cacheErr).Msg("Failed to populate broadcast cache")
		}
	}

	blocked, err := s.moderationStore.BlockedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blocks: %w", err)
	}
	if len(blocked) == 0 {
		return broadcasts, nil
	}

	hidden := make(map[string]bool, len(blocked))
	for _, id := range blocked {
		hidden[id] = true
	}

	visible := broadcasts[:0]
	for _, b := range broadcasts {
		if !hidden[b.UserID] {
			visible = append(visible, b)
		}
	}
	return visible, nil
}

// Deactivate flips a broadcast inactive. Only the owner may do this.
func (s *BroadcastService) Deactivate(ctx context.Context, broadcastID, userID string) error {
	b, err := s.broadcastStore.GetByID(ctx, broadcastID)
	if err != nil {
		return fmt.Errorf("%w: broadcast %s", ErrNotFound, broadcastID)
	}
	if b.UserID != userID {
		return ErrNotOwner
	}

	if err := s.broadcastStore.Deactivate(ctx, broadcastID); err != nil {
		return fmt.Errorf("failed to deactivate broadcast: %w", err)
	}

	s.invalidateFeed(ctx)
	return nil
}

// Reply opens (or reuses) the conversation between the broadcast owner
// and the replier, appends the voice message, and queues a notification
// for the owner. This is the only place broadcasts touch conversations.
func (s *BroadcastService) Reply(ctx context.Context, broadcastID, replierID, audioURL string) (*models.Conversation, *models.Message, error) {
	if audioURL == "" {
		return nil, nil, fmt.Errorf("%w: audio attachment is required", ErrValidation)
	}

	b, err := s.broadcastStore.GetByID(ctx, broadcastID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: broadcast %s", ErrNotFound, broadcastID)
	}
	if !b.Active || time.Now().After(b.ExpiredAt) {
		return nil, nil, fmt.Errorf("%w: broadcast %s", ErrNotFound, broadcastID)
	}
	if b.UserID == replierID {
		return nil, nil, fmt.Errorf("%w: cannot reply to your own broadcast", ErrValidation)
	}

	replier, err := s.userStore.GetByID(ctx, replierID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: user %s", ErrNotFound, replierID)
	}
	if err := RequireActive(replier); err != nil {
		return nil, nil, err
	}

	blocked, err := s.moderationStore.IsBlocked(ctx, replierID, b.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check block: %w", err)
	}
	if blocked {
		return nil, nil, ErrBlocked
	}

	conversation, err := s.conversationStore.GetOrCreate(ctx, b.UserID, replierID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open conversation: %w", err)
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversation.ID,
		SenderID:       replierID,
		AudioURL:       audioURL,
		CreatedAt:      time.Now(),
	}
	if err := s.messageStore.Create(ctx, message); err != nil {
		return nil, nil, fmt.Errorf("failed to append message: %w", err)
	}

	event := jobs.Event{
		Kind:           jobs.EventBroadcastReply,
		RecipientID:    b.UserID,
		SenderID:       replierID,
		ConversationID: conversation.ID,
		MessageID:      message.ID,
		BroadcastID:    b.ID,
	}
	if err := s.queue.Enqueue(ctx, event); err != nil {
		log.Error().Err(err).Str("broadcast_id", b.ID).Msg("Failed to enqueue reply notification")
	}

	return conversation, message, nil
}

// refundSpend gives back the posting cost when the insert after a debit
// fails. A failed refund only logs: the ledger keeps the spend row, so the
// discrepancy stays auditable.
func (s *BroadcastService) refundSpend(ctx context.Context, ownerID string) {
	refund := &models.CreditTransaction{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Amount:    broadcastCost,
		Kind:      models.TransactionKindRefund,
		Note:      "broadcast refund",
		CreatedAt: time.Now(),
	}
	if err := s.userStore.AdjustCredits(ctx, refund); err != nil {
		log.Error().Err(err).Str("user_id", ownerID).Msg("Failed to refund broadcast charge")
	}
}

// invalidateFeed drops the cached feed. Best-effort: the DB write stands
// even when the cache delete fails, bounded by the cache TTL.
func (s *BroadcastService) invalidateFeed(ctx context.Context) {
	if err := s.feedCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate broadcast cache")
	}
}
