package repository

import (
	"context"
	"fmt"

	"talkk-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository handles database operations for conversations
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreate finds the conversation between two users or creates it.
// The pair is stored ordered (user_a_id < user_b_id) and backed by a unique
// constraint, so the same two users always land in one row.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	userAID, userBID := userID, otherID
	if userAID > userBID {
		userAID, userBID = userBID, userAID
	}

	query := `
		INSERT INTO conversations (id, user_a_id, user_b_id, favorite_a, favorite_b, created_at, updated_at)
		VALUES ($1, $2, $3, false, false, NOW(), NOW())
		ON CONFLICT (user_a_id, user_b_id) DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, user_a_id, user_b_id, favorite_a, favorite_b, created_at, updated_at
	`
	var c models.Conversation
	err := r.db.QueryRow(ctx, query, uuid.New().String(), userAID, userBID).Scan(
		&c.ID, &c.UserAID, &c.UserBID, &c.FavoriteA, &c.FavoriteB, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}
	return &c, nil
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, user_a_id, user_b_id, favorite_a, favorite_b, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`
	var c models.Conversation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserAID, &c.UserBID, &c.FavoriteA, &c.FavoriteB, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("conversation not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &c, nil
}

// ListForUser retrieves conversations the user participates in, most
// recently touched first
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	query := `
		SELECT id, user_a_id, user_b_id, favorite_a, favorite_b, created_at, updated_at
		FROM conversations
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(&c.ID, &c.UserAID, &c.UserBID, &c.FavoriteA, &c.FavoriteB, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return conversations, nil
}

// SetFavorite sets the favorite flag on the caller's side of the pair
func (r *ConversationRepository) SetFavorite(ctx context.Context, id, userID string, favorite bool) error {
	query := `
		UPDATE conversations
		SET favorite_a = CASE WHEN user_a_id = $2 THEN $3 ELSE favorite_a END,
		    favorite_b = CASE WHEN user_b_id = $2 THEN $3 ELSE favorite_b END
		WHERE id = $1 AND (user_a_id = $2 OR user_b_id = $2)
	`
	result, err := r.db.Exec(ctx, query, id, userID, favorite)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("conversation not found")
	}
	return nil
}

// Delete deletes a conversation and its messages
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("conversation not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
