package dto

import (
	"time"

	"github.com/iho/tokengate/internal/domain"
)

// GenerateResponse represents the outcome of a generation request.
type GenerateResponse struct {
	OK      bool             `json:"ok"`
	Skipped bool             `json:"skipped,omitempty"`
	Message string           `json:"message,omitempty"`
	Data    *ContentResponse `json:"data,omitempty"`
}

// ContentResponse represents generated content in API responses.
type ContentResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
}

// ContentFromDomain converts generated content to a response.
func ContentFromDomain(c *domain.GeneratedContent) *ContentResponse {
	return &ContentResponse{
		Text:         c.Text,
		Model:        c.Model,
		InputTokens:  c.InputTokens,
		OutputTokens: c.OutputTokens,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Balance:   a.Balance,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

// BalanceResponse represents a balance lookup.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Delta           int64     `json:"delta"`
	Reason          string    `json:"reason"`
	PreviousBalance int64     `json:"previous_balance"`
	CurrentBalance  int64     `json:"current_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &EntryResponse{
			ID:              e.ID,
			AccountID:       e.AccountID,
			Delta:           e.Delta,
			Reason:          string(e.Reason),
			PreviousBalance: e.PreviousBalance,
			CurrentBalance:  e.CurrentBalance,
			CreatedAt:       e.CreatedAt,
		}
	}
	return result
}

// TopUpResponse represents a completed top-up.
type TopUpResponse struct {
	OK        bool   `json:"ok"`
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
