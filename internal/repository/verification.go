package repository

import (
	"context"
	"fmt"
	"time"

	"talkk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationRepository handles database operations for phone verifications
type VerificationRepository struct {
	db *pgxpool.Pool
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create creates a new phone verification record
func (r *VerificationRepository) Create(ctx context.Context, v *models.PhoneVerification) error {
	query := `
		INSERT INTO phone_verifications (id, phone, code, verified, attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, v.ID, v.Phone, v.Code, v.Verified, v.Attempts, v.ExpiresAt, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

// GetActiveByPhone retrieves the latest unexpired, unverified record for a phone
func (r *VerificationRepository) GetActiveByPhone(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	query := `
		SELECT id, phone, code, verified, attempts, expires_at, created_at
		FROM phone_verifications
		WHERE phone = $1 AND verified = false AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	var v models.PhoneVerification
	err := r.db.QueryRow(ctx, query, phone).Scan(
		&v.ID, &v.Phone, &v.Code, &v.Verified, &v.Attempts, &v.ExpiresAt, &v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("verification not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return &v, nil
}

// MarkVerified marks a verification record as used
func (r *VerificationRepository) MarkVerified(ctx context.Context, id string) error {
	query := `UPDATE phone_verifications SET verified = true WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark verification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("verification not found")
	}
	return nil
}

// IncrementAttempts increments the failed-attempt counter and returns the new value
func (r *VerificationRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	query := `UPDATE phone_verifications SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`
	var attempts int
	err := r.db.QueryRow(ctx, query, id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return attempts, nil
}

// DeleteExpired removes records whose expiry passed before the cutoff.
// Returns how many rows were removed.
func (r *VerificationRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM phone_verifications WHERE expires_at < $1`
	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verifications: %w", err)
	}
	return result.RowsAffected(), nil
}
