package repository

import (
	"context"
	"fmt"

	"talkk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BroadcastRepository handles database operations for broadcasts
type BroadcastRepository struct {
	db *pgxpool.Pool
}

// NewBroadcastRepository creates a new broadcast repository
func NewBroadcastRepository(db *pgxpool.Pool) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create creates a new broadcast
func (r *BroadcastRepository) Create(ctx context.Context, b *models.Broadcast) error {
	query := `
		INSERT INTO broadcasts (id, user_id, audio_url, active, expired_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, b.ID, b.UserID, b.AudioURL, b.Active, b.ExpiredAt, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create broadcast: %w", err)
	}
	return nil
}

// GetByID retrieves a broadcast by ID
func (r *BroadcastRepository) GetByID(ctx context.Context, id string) (*models.Broadcast, error) {
	query := `
		SELECT id, user_id, audio_url, active, expired_at, created_at
		FROM broadcasts
		WHERE id = $1
	`
	var b models.Broadcast
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.AudioURL, &b.Active, &b.ExpiredAt, &b.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("broadcast not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get broadcast: %w", err)
	}
	return &b, nil
}

// ListActive retrieves the most recent broadcasts that are active and not
// yet past their expiry, newest first
func (r *BroadcastRepository) ListActive(ctx context.Context, limit int) ([]*models.Broadcast, error) {
	query := `
		SELECT id, user_id, audio_url, active, expired_at, created_at
		FROM broadcasts
		WHERE active = true AND expired_at > NOW()
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", err)
	}
	defer rows.Close()

	var broadcasts []*models.Broadcast
	for rows.Next() {
		var b models.Broadcast
		err := rows.Scan(&b.ID, &b.UserID, &b.AudioURL, &b.Active, &b.ExpiredAt, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan broadcast: %w", err)
		}
		broadcasts = append(broadcasts, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating broadcasts: %w", err)
	}

	return broadcasts, nil
}

// Deactivate flips a broadcast inactive
func (r *BroadcastRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE broadcasts SET active = false WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate broadcast: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("broadcast not found")
	}
	return nil
}

// ExpireDue bulk-flips all broadcasts past their expiry. One atomic
// statement, returns the number of rows flipped.
func (r *BroadcastRepository) ExpireDue(ctx context.Context) (int64, error) {
	query := `UPDATE broadcasts SET active = false WHERE active = true AND expired_at <= NOW()`
	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to expire broadcasts: %w", err)
	}
	return result.RowsAffected(), nil
}
