package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tokengate/internal/adapter/http/dto"
	"github.com/iho/tokengate/internal/adapter/http/middleware"
)

// EntryHandler serves the ledger entry history.
type EntryHandler struct {
	ledgerUC LedgerService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledgerUC LedgerService) *EntryHandler {
	return &EntryHandler{ledgerUC: ledgerUC}
}

// List handles GET /api/v1/accounts/{id}/entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
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

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.ListEntries(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
