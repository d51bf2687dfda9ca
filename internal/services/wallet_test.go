package services

import (
	"context"
	"testing"

	"talkk-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletGrantAndSpend(t *testing.T) {
	users := newFakeUserStore(activeUser("user-1", 0))
	svc := NewWalletService(users)

	require.NoError(t, svc.Grant(context.Background(), "user-1", 10, "signup grant"))

	balance, err := svc.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	require.NoError(t, svc.Spend(context.Background(), "user-1", 3, "broadcast"))

	balance, err = svc.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, balance)
}

func TestWalletSpendRejectsOverdraft(t *testing.T) {
	users := newFakeUserStore(activeUser("user-1", 2))
	svc := NewWalletService(users)

	err := svc.Spend(context.Background(), "user-1", 3, "broadcast")
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	balance, err := svc.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, balance, "balance must be untouched after a rejected spend")
}

func TestWalletRejectsNonPositiveAmounts(t *testing.T) {
	users := newFakeUserStore(activeUser("user-1", 5))
	svc := NewWalletService(users)

	assert.ErrorIs(t, svc.Grant(context.Background(), "user-1", 0, ""), ErrValidation)
	assert.ErrorIs(t, svc.Grant(context.Background(), "user-1", -1, ""), ErrValidation)
	assert.ErrorIs(t, svc.Spend(context.Background(), "user-1", 0, ""), ErrValidation)
	assert.ErrorIs(t, svc.Spend(context.Background(), "user-1", -1, ""), ErrValidation)
}

func TestWalletHistoryRecordsLedger(t *testing.T) {
	users := newFakeUserStore(activeUser("user-1", 0))
	svc := NewWalletService(users)

	require.NoError(t, svc.Grant(context.Background(), "user-1", 10, "signup grant"))
	require.NoError(t, svc.Spend(context.Background(), "user-1", 1, "broadcast"))

	trxs, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, trxs, 2)

	kinds := map[models.TransactionKind]int{}
	for _, trx := range trxs {
		kinds[trx.Kind]++
	}
	assert.Equal(t, 1, kinds[models.TransactionKindGrant])
	assert.Equal(t, 1, kinds[models.TransactionKindSpend])
}

func TestWalletSpendStoreFailureIsNotOverdraft(t *testing.T) {
	svc := NewWalletService(newFakeUserStore())

	// Unknown user: the debit fails, but not because of the balance.
	err := svc.Spend(context.Background(), "missing", 1, "broadcast")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientCredits)
}

func TestWalletBalanceUnknownUser(t *testing.T) {
	svc := NewWalletService(newFakeUserStore())

	_, err := svc.Balance(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
