package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/tokengate/internal/adapter/http/dto"
	"github.com/iho/tokengate/internal/adapter/http/middleware"
	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/infrastructure/metrics"
	"github.com/iho/tokengate/internal/usecase"
)

// GenerateService defines the behavior needed by GenerateHandler.
type GenerateService interface {
	Generate(ctx context.Context, input usecase.GenerateInput) (*usecase.GenerateOutput, error)
}

// GenerateHandler handles generation requests.
type GenerateHandler struct {
	generateUC GenerateService
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generateUC GenerateService, m *metrics.Metrics, logger zerolog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generateUC: generateUC,
		metrics:    m,
		logger:     logger,
	}
}

// Generate handles POST /api/v1/generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	start := time.Now()
	out, err := h.generateUC.Generate(r.Context(), req.ToUseCaseInput(*caller))
	if err != nil {
		h.writeGenerateError(w, r, caller, err)
		return
	}

	if out.Skipped {
		h.metrics.DuplicatesTotal.Inc()
		h.metrics.AdmissionsTotal.WithLabelValues(string(out.Outcome)).Inc()

		writeJSON(w, http.StatusOK, dto.GenerateResponse{
			OK:      true,
			Skipped: true,
			Message: "request already processed",
		})

		return
	}

	h.metrics.AdmissionsTotal.WithLabelValues(string(out.Outcome)).Inc()
	h.metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	switch out.Outcome {
	case usecase.OutcomeCharged:
		h.metrics.DebitsTotal.Inc()
	case usecase.OutcomeBypassed:
		h.metrics.BypassesTotal.Inc()
	}

	writeJSON(w, http.StatusOK, dto.GenerateResponse{
		OK:   true,
		Data: dto.ContentFromDomain(out.Content),
	})
}

func (h *GenerateHandler) writeGenerateError(w http.ResponseWriter, r *http.Request, caller *domain.Caller, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrPromptTooLong):
		writeError(w, http.StatusBadRequest, "prompt is required", "")

	case errors.Is(err, domain.ErrInsufficientBalance):
		h.metrics.NoFundsTotal.Inc()
		writeError(w, http.StatusForbidden, "no tokens", "top up and retry with a fresh request id")

	case errors.Is(err, domain.ErrGenerationTimeout):
		// The debit stays committed: one unit is spent even though no
		// content came back. Operators see this in the timeout counter.
		h.metrics.GenerationTimeouts.Inc()
		h.logger.Warn().
			Str("caller_id", caller.ID).
			Msg("generation deadline exceeded; debit not reversed")
		writeError(w, http.StatusGatewayTimeout, "timeout", "")

	case errors.Is(err, domain.ErrGenerationFailed):
		h.metrics.GenerationFailures.Inc()
		h.logger.Error().
			Err(err).
			Str("caller_id", caller.ID).
			Msg("generation failed; debit not reversed")
		writeError(w, http.StatusInternalServerError, "generation failed", "")

	default:
		h.logger.Error().
			Err(err).
			Str("caller_id", caller.ID).
			Msg("admission failed")
		writeError(w, mapDomainError(err), "request failed", err.Error())
	}
}
