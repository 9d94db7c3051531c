package usecase

import (
	"context"
	"time"

	"github.com/iho/tokengate/internal/domain"
)

// AccountUseCase handles account provisioning and lookup. Credential
// issuance lives outside this service; this only creates the billing row.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Email          string
	Role           domain.Role
	InitialBalance int64
}

// CreateAccount provisions a billing account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.InitialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	if !role.IsValid() {
		return nil, domain.ErrInsufficientRole
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Email:     input.Email,
		Balance:   input.InitialBalance,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}
