package repository

import (
	"context"
	"errors"
	"fmt"

	"talkk-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientBalance reports a debit the conditional balance UPDATE
// refused. Any other AdjustCredits failure is an infrastructure error.
var ErrInsufficientBalance = errors.New("insufficient balance")

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, phone, nickname, gender, verified, push_token, status, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Phone, user.Nickname, user.Gender, user.Verified,
		user.PushToken, user.Status, user.Credits, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, phone, nickname, gender, verified, push_token, status, credits, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Phone, &user.Nickname, &user.Gender, &user.Verified,
		&user.PushToken, &user.Status, &user.Credits, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByPhone retrieves a user by phone number
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `
		SELECT id, phone, nickname, gender, verified, push_token, status, credits, created_at, updated_at
		FROM users
		WHERE phone = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, phone).Scan(
		&user.ID, &user.Phone, &user.Nickname, &user.Gender, &user.Verified,
		&user.PushToken, &user.Status, &user.Credits, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return &user, nil
}

// NicknameExists checks if a nickname is already taken
func (r *UserRepository) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE nickname = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, nickname).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check nickname existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates nickname and gender for a user
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, nickname string, gender models.Gender) error {
	query := `UPDATE users SET nickname = $1, gender = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.Exec(ctx, query, nickname, gender, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// UpdateStatus updates the moderation status for a user
func (r *UserRepository) UpdateStatus(ctx context.Context, userID string, status models.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, status, userID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// AdjustCredits atomically changes a user's balance and appends a ledger row.
// The balance check lives in the UPDATE itself so concurrent spends cannot
// drive the balance negative.
func (r *UserRepository) AdjustCredits(ctx context.Context, trx *models.CreditTransaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE users SET credits = credits + $1, updated_at = NOW()
		WHERE id = $2 AND credits + $1 >= 0
	`
	result, err := tx.Exec(ctx, query, trx.Amount, trx.UserID)
	if err != nil {
		return fmt.Errorf("failed to adjust credits: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", trx.UserID, ErrInsufficientBalance)
	}

	insert := `
		INSERT INTO credit_transactions (id, user_id, amount, kind, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insert, trx.ID, trx.UserID, trx.Amount, trx.Kind, trx.Note, trx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credit transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTransactions retrieves the credit ledger for a user, newest first
func (r *UserRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	query := `
		SELECT id, user_id, amount, kind, note, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var trxs []*models.CreditTransaction
	for rows.Next() {
		var trx models.CreditTransaction
		err := rows.Scan(&trx.ID, &trx.UserID, &trx.Amount, &trx.Kind, &trx.Note, &trx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		trxs = append(trxs, &trx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return trxs, nil
}
