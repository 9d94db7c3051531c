package dto

import (
	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/usecase"
)

// GenerateRequest represents a generation request.
type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	RequestID string `json:"requestId,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *GenerateRequest) ToUseCaseInput(caller domain.Caller) usecase.GenerateInput {
	return usecase.GenerateInput{
		Caller:    caller,
		Prompt:    r.Prompt,
		RequestID: r.RequestID,
	}
}

// TopUpRequest is the payment collaborator's top-up event.
type TopUpRequest struct {
	Identity string `json:"identity"`
	Amount   int64  `json:"amount"`
}

// CreditRequest represents an admin credit.
type CreditRequest struct {
	Amount int64 `json:"amount"`
}

// CreateAccountRequest represents a request to provision an account.
type CreateAccountRequest struct {
	Email          string `json:"email"`
	Role           string `json:"role,omitempty"`
	InitialBalance int64  `json:"initial_balance,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Email:          r.Email,
		Role:           domain.Role(r.Role),
		InitialBalance: r.InitialBalance,
	}
}
