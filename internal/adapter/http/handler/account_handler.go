package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/tokengate/internal/adapter/http/dto"
	"github.com/iho/tokengate/internal/adapter/http/middleware"
	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/usecase"
)

// AccountService defines the provisioning behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
}

// LedgerService defines the balance operations needed by handlers.
type LedgerService interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	Credit(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error)
	ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

// AccountHandler handles account provisioning and balance requests.
type AccountHandler struct {
	accountUC AccountService
	ledgerUC  LedgerService
	logger    zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, ledgerUC LedgerService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		ledgerUC:  ledgerUC,
		logger:    logger,
	}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required", "")
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	h.logger.Info().
		Str("account_id", account.ID).
		Str("role", string(account.Role)).
		Msg("account created")

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// GetBalance handles GET /api/v1/accounts/{id}/balance.
//
// Callers read their own balance; admins read anyone's.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	if caller.ID != accountID && !caller.Privileged() {
		writeError(w, http.StatusForbidden, "insufficient permissions", "")
		return
	}

	balance, err := h.ledgerUC.GetBalance(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}

// Credit handles POST /api/v1/accounts/{id}/credit.
func (h *AccountHandler) Credit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.ledgerUC.Credit(r.Context(), accountID, req.Amount, domain.ReasonTopUp)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to credit account", err.Error())
		return
	}

	h.logger.Info().
		Str("account_id", accountID).
		Int64("amount", req.Amount).
		Int64("balance", balance).
		Msg("account credited")

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}
