package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/usecase"
	"github.com/iho/tokengate/internal/usecase/mocks"
)

func newLedgerUseCase(accountRepo *mocks.MockAccountRepository, entryRepo *mocks.MockEntryRepository) *usecase.LedgerUseCase {
	return usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		entryRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
	)
}

func TestLedgerUseCase_Debit(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		amount      int64
		wantBalance int64
		wantErr     error
	}{
		{name: "successful debit", balance: 5, amount: 1, wantBalance: 4},
		{name: "debit to zero", balance: 1, amount: 1, wantBalance: 0},
		{name: "insufficient balance", balance: 0, amount: 1, wantErr: domain.ErrInsufficientBalance},
		{name: "zero amount", balance: 5, amount: 0, wantErr: domain.ErrInvalidAmount},
		{name: "negative amount", balance: 5, amount: -2, wantErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockAccountRepository()
			entryRepo := mocks.NewMockEntryRepository()
			accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: tt.balance, Role: domain.RoleUser})

			uc := newLedgerUseCase(accountRepo, entryRepo)

			newBalance, err := uc.Debit(context.Background(), "acc-1", tt.amount, domain.ReasonGeneration)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Debit() error = %v, want %v", err, tt.wantErr)
				}
				if len(entryRepo.Entries()) != 0 {
					t.Error("failed debit must not append an entry")
				}
				acc, _ := accountRepo.GetByID(context.Background(), "acc-1")
				if acc.Balance != tt.balance {
					t.Errorf("failed debit changed balance: %d", acc.Balance)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if newBalance != tt.wantBalance {
				t.Errorf("new balance = %d, want %d", newBalance, tt.wantBalance)
			}

			entries := entryRepo.Entries()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].Delta != -tt.amount {
				t.Errorf("entry delta = %d, want %d", entries[0].Delta, -tt.amount)
			}
			if entries[0].Reason != domain.ReasonGeneration {
				t.Errorf("entry reason = %s", entries[0].Reason)
			}
			if entries[0].PreviousBalance != tt.balance || entries[0].CurrentBalance != tt.wantBalance {
				t.Errorf("entry balances = %d -> %d", entries[0].PreviousBalance, entries[0].CurrentBalance)
			}
		})
	}
}

func TestLedgerUseCase_Credit(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: 3})

	uc := newLedgerUseCase(accountRepo, entryRepo)

	newBalance, err := uc.Credit(context.Background(), "acc-1", 10, domain.ReasonTopUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newBalance != 13 {
		t.Errorf("new balance = %d, want 13", newBalance)
	}

	entries := entryRepo.Entries()
	if len(entries) != 1 || entries[0].Delta != 10 || entries[0].Reason != domain.ReasonTopUp {
		t.Errorf("unexpected entries: %+v", entries)
	}

	if _, err := uc.Credit(context.Background(), "acc-1", 0, domain.ReasonTopUp); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero credit error = %v, want ErrInvalidAmount", err)
	}

	if _, err := uc.Credit(context.Background(), "missing", 5, domain.ReasonTopUp); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("unknown account error = %v, want ErrAccountNotFound", err)
	}
}

func TestLedgerUseCase_DebitThenCreditRestoresBalance(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: 7})

	uc := newLedgerUseCase(accountRepo, entryRepo)
	ctx := context.Background()

	if _, err := uc.Debit(ctx, "acc-1", 1, domain.ReasonGeneration); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, err := uc.Credit(ctx, "acc-1", 1, domain.ReasonTopUp)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	if balance != 7 {
		t.Errorf("balance after round trip = %d, want 7", balance)
	}

	entries := entryRepo.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Delta != -1 || entries[1].Delta != 1 {
		t.Errorf("entry deltas = %d, %d; want -1, +1 in order", entries[0].Delta, entries[1].Delta)
	}
}

func TestLedgerUseCase_RecordBypass(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	accountRepo.Seed(&domain.Account{ID: "adm-1", Balance: 2, Role: domain.RoleAdmin})

	updates := 0
	accountRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error {
		updates++
		return nil
	}

	uc := newLedgerUseCase(accountRepo, entryRepo)

	if err := uc.RecordBypass(context.Background(), "adm-1", domain.ReasonAdminBypass); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updates != 0 {
		t.Error("bypass must not touch the balance")
	}

	entries := entryRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Delta != 0 || entries[0].Reason != domain.ReasonAdminBypass {
		t.Errorf("bypass entry = %+v", entries[0])
	}
}

func TestLedgerUseCase_RollbackOnEntryFailure(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: 4})

	storageErr := errors.New("connection reset")
	entryRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
		return storageErr
	}

	var tx *mocks.MockTransaction
	txManager := mocks.NewMockTransactionManager()
	txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		tx = &mocks.MockTransaction{}
		return tx, nil
	}

	uc := usecase.NewLedgerUseCase(txManager, accountRepo, entryRepo, mocks.NewMockIDGenerator(), mocks.NewMockRetrier())

	_, err := uc.Debit(context.Background(), "acc-1", 1, domain.ReasonGeneration)
	if !errors.Is(err, storageErr) {
		t.Fatalf("error = %v, want %v", err, storageErr)
	}

	if tx.Committed {
		t.Error("transaction must not commit when the entry write fails")
	}
	if !tx.RolledBack {
		t.Error("transaction must roll back when the entry write fails")
	}
}

func TestLedgerUseCase_GetBalance(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: 9})

	uc := newLedgerUseCase(accountRepo, mocks.NewMockEntryRepository())

	balance, err := uc.GetBalance(context.Background(), "acc-1")
	if err != nil || balance != 9 {
		t.Errorf("GetBalance = %d, %v", balance, err)
	}

	if _, err := uc.GetBalance(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("error = %v, want ErrAccountNotFound", err)
	}
}

func TestLedgerUseCase_ListEntriesClampsLimit(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	entryRepo := mocks.NewMockEntryRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1"})

	var gotLimit int
	entryRepo.ListByAccountFunc = func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
		gotLimit = limit
		return nil, nil
	}

	uc := newLedgerUseCase(accountRepo, entryRepo)

	if _, err := uc.ListEntries(context.Background(), "acc-1", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 20 {
		t.Errorf("default limit = %d, want 20", gotLimit)
	}

	if _, err := uc.ListEntries(context.Background(), "acc-1", 500, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 100 {
		t.Errorf("clamped limit = %d, want 100", gotLimit)
	}
}
