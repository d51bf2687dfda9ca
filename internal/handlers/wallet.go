package handlers

import (
	"net/http"

	"talkk-backend/internal/middleware"
	"talkk-backend/internal/models"
	"talkk-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// WalletHandler handles credit balance HTTP requests
type WalletHandler struct {
	walletService *services.WalletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// BalanceResponse represents the wallet balance payload
type BalanceResponse struct {
	Credits int `json:"credits"`
}

// Balance handles GET /api/v1/wallet
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	credits, err := h.walletService.Balance(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load balance")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{Credits: credits})
}

// TransactionsResponse represents the ledger payload, newest first
type TransactionsResponse struct {
	Transactions []*models.CreditTransaction `json:"transactions"`
}

// Transactions handles GET /api/v1/wallet/transactions
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	trxs, err := h.walletService.History(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		respondServiceError(w, err)
		return
	}
	if trxs == nil {
		trxs = []*models.CreditTransaction{}
	}

	respondJSON(w, http.StatusOK, TransactionsResponse{Transactions: trxs})
}
