package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkk-backend/internal/models"
	"talkk-backend/internal/repository"

	"github.com/google/uuid"
)

const transactionPageSize = 50

// WalletService exposes the credit balance and its append-only ledger
type WalletService struct {
	userStore UserStore
}

// NewWalletService creates a new wallet service
func NewWalletService(userStore UserStore) *WalletService {
	return &WalletService{userStore: userStore}
}

// Balance returns the user's current credit balance
func (s *WalletService) Balance(ctx context.Context, userID string) (int, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return user.Credits, nil
}

// Grant credits a user's balance
func (s *WalletService) Grant(ctx context.Context, userID string, amount int, note string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: grant amount must be positive", ErrValidation)
	}
	trx := &models.CreditTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Amount:    amount,
		Kind:      models.TransactionKindGrant,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := s.userStore.AdjustCredits(ctx, trx); err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}
	return nil
}

// Spend debits a user's balance; the repository rejects overdrafts
func (s *WalletService) Spend(ctx context.Context, userID string, amount int, note string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: spend amount must be positive", ErrValidation)
	}
	trx := &models.CreditTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Amount:    -amount,
		Kind:      models.TransactionKindSpend,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if err := s.userStore.AdjustCredits(ctx, trx); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return ErrInsufficientCredits
		}
		return fmt.Errorf("failed to spend credits: %w", err)
	}
	return nil
}

// History returns the most recent ledger entries, newest first
func (s *WalletService) History(ctx context.Context, userID string) ([]*models.CreditTransaction, error) {
	trxs, err := s.userStore.ListTransactions(ctx, userID, transactionPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return trxs, nil
}
