package services

import (
	"context"
	"time"

	"talkk-backend/internal/jobs"
	"talkk-backend/internal/models"
)

// Store interfaces are satisfied by the pgx repositories. Services depend
// on these so tests can substitute in-memory fakes.

// UserStore persists users and their credit ledger
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	UpdateProfile(ctx context.Context, userID, nickname string, gender models.Gender) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	UpdateStatus(ctx context.Context, userID string, status models.UserStatus) error
	AdjustCredits(ctx context.Context, trx *models.CreditTransaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error)
}

// VerificationStore persists phone verification codes
type VerificationStore interface {
	Create(ctx context.Context, v *models.PhoneVerification) error
	GetActiveByPhone(ctx context.Context, phone string) (*models.PhoneVerification, error)
	MarkVerified(ctx context.Context, id string) error
	IncrementAttempts(ctx context.Context, id string) (int, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// BroadcastStore persists broadcasts
type BroadcastStore interface {
	Create(ctx context.Context, b *models.Broadcast) error
	GetByID(ctx context.Context, id string) (*models.Broadcast, error)
	ListActive(ctx context.Context, limit int) ([]*models.Broadcast, error)
	Deactivate(ctx context.Context, id string) error
	ExpireDue(ctx context.Context) (int64, error)
}

// ConversationStore persists conversations
type ConversationStore interface {
	GetOrCreate(ctx context.Context, userID, otherID string) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
	SetFavorite(ctx context.Context, id, userID string, favorite bool) error
	Delete(ctx context.Context, id string) error
}

// MessageStore persists messages
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
}

// ModerationStore persists blocks and reports
type ModerationStore interface {
	CreateBlock(ctx context.Context, b *models.Block) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, userID, otherID string) (bool, error)
	BlockedUserIDs(ctx context.Context, userID string) ([]string, error)
	CreateReport(ctx context.Context, r *models.Report) error
	PendingReports(ctx context.Context, reportedID string) ([]*models.Report, error)
	ResolveReport(ctx context.Context, id string) error
}

// FeedCache fronts the recent-broadcast listing
type FeedCache interface {
	Get(ctx context.Context) ([]*models.Broadcast, error)
	Set(ctx context.Context, broadcasts []*models.Broadcast) error
	Invalidate(ctx context.Context) error
}

// EventQueue enqueues notification events for the background dispatcher
type EventQueue interface {
	Enqueue(ctx context.Context, event jobs.Event) error
}

// CodeSender delivers a verification code out of band
type CodeSender interface {
	Send(ctx context.Context, phone, text string) error
}
