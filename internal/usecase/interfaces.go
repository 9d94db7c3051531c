package usecase

import (
	"context"
	"time"

	"github.com/iho/tokengate/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance int64, updatedAt time.Time) error
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

// DedupRepository defines data access for dedup records.
type DedupRepository interface {
	// TryAdmit atomically inserts a record for (accountID, requestID).
	// Returns false without error when the pair was already admitted.
	// The uniqueness check and the insert are a single statement; there
	// is no read-then-write window.
	TryAdmit(ctx context.Context, accountID, requestID string, at time.Time) (bool, error)

	// PruneBefore removes records older than cutoff. Retention is a
	// policy choice, not a correctness requirement.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DedupCache is a best-effort fast path in front of DedupRepository.
// It only ever caches ids that the repository has already consumed, so a
// cache miss or cache failure degrades to the authoritative store.
type DedupCache interface {
	Seen(ctx context.Context, accountID, requestID string) (bool, error)
	MarkSeen(ctx context.Context, accountID, requestID string, ttl time.Duration) error
}

// Generator is the opaque external generation call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*domain.GeneratedContent, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries operations that fail with transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
