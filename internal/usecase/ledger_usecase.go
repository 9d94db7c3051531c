package usecase

import (
	"context"
	"time"

	"github.com/iho/tokengate/internal/domain"
)

// LedgerUseCase owns every balance change. The balance mutation and its
// audit entry always commit in the same transaction; no other component
// writes Account.Balance.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	retrier     Retrier
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	retrier Retrier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		retrier:     retrier,
	}
}

// GetBalance returns the current balance for an account.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, accountID string) (int64, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	return account.Balance, nil
}

// Debit atomically decrements the balance and appends an audit entry.
// Fails with domain.ErrInsufficientBalance without any state change when
// the balance does not cover amount.
func (uc *LedgerUseCase) Debit(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	return uc.applyDelta(ctx, accountID, -amount, reason)
}

// Credit atomically increments the balance and appends an audit entry.
func (uc *LedgerUseCase) Credit(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	return uc.applyDelta(ctx, accountID, amount, reason)
}

// RecordBypass appends a zero-delta audit entry without touching the
// balance. Used for privileged callers so usage stays auditable.
func (uc *LedgerUseCase) RecordBypass(ctx context.Context, accountID string, reason domain.EntryReason) error {
	_, err := uc.applyDelta(ctx, accountID, 0, reason)

	return err
}

// ListEntries returns the audit trail for an account, newest first.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	if limit > 100 {
		limit = 100
	}

	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	return uc.entryRepo.ListByAccount(ctx, accountID, limit, offset)
}

// applyDelta runs the single-transaction balance update: lock the account
// row, validate, write the new balance and the entry, commit. A delta of
// zero skips the balance write but still appends an entry. Retried on
// transient storage errors; each attempt re-reads the locked row.
func (uc *LedgerUseCase) applyDelta(ctx context.Context, accountID string, delta int64, reason domain.EntryReason) (int64, error) {
	var newBalance int64

	err := uc.retrier.Retry(ctx, func() error {
		balance, err := uc.applyDeltaOnce(ctx, accountID, delta, reason)
		if err != nil {
			return err
		}

		newBalance = balance

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (uc *LedgerUseCase) applyDeltaOnce(ctx context.Context, accountID string, delta int64, reason domain.EntryReason) (int64, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	if delta < 0 {
		if err := account.ValidateDebit(-delta); err != nil {
			return 0, err
		}
	}

	now := time.Now().UTC()
	newBalance := account.ApplyCredit(delta)

	if delta != 0 {
		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
			return 0, err
		}
	}

	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Delta:           delta,
		Reason:          reason,
		PreviousBalance: account.Balance,
		CurrentBalance:  newBalance,
		CreatedAt:       now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return newBalance, nil
}
