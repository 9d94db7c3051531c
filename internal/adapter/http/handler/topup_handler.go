package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/tokengate/internal/adapter/http/dto"
	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/infrastructure/metrics"
)

// TopUpHandler receives top-up events from the payment collaborator.
type TopUpHandler struct {
	ledgerUC LedgerService
	secret   string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewTopUpHandler creates a new TopUpHandler.
func NewTopUpHandler(ledgerUC LedgerService, secret string, m *metrics.Metrics, logger zerolog.Logger) *TopUpHandler {
	return &TopUpHandler{
		ledgerUC: ledgerUC,
		secret:   secret,
		metrics:  m,
		logger:   logger,
	}
}

// HandleTopUp handles POST /webhooks/payment.
func (h *TopUpHandler) HandleTopUp(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid webhook secret", "")
		return
	}

	var req dto.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required", "")
		return
	}

	balance, err := h.ledgerUC.Credit(r.Context(), req.Identity, req.Amount, domain.ReasonTopUp)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("account_id", req.Identity).
			Int64("amount", req.Amount).
			Msg("top-up failed")
		writeError(w, mapDomainError(err), "top-up failed", err.Error())
		return
	}

	h.metrics.TopUpsTotal.Inc()
	h.metrics.TopUpAmount.Observe(float64(req.Amount))

	h.logger.Info().
		Str("account_id", req.Identity).
		Int64("amount", req.Amount).
		Int64("balance", balance).
		Msg("top-up applied")

	writeJSON(w, http.StatusOK, dto.TopUpResponse{
		OK:        true,
		AccountID: req.Identity,
		Balance:   balance,
	})
}
