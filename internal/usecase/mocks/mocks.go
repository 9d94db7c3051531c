package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
// Without Func overrides it behaves as an in-memory store.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly, bypassing any Func override.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.UpdatedAt = updatedAt
	return nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Entry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	ListByAccountFunc func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Entry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}
	return result, nil
}

// Entries returns all recorded entries.
func (m *MockEntryRepository) Entries() []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Entry(nil), m.entries...)
}

// MockDedupRepository is a mock implementation of DedupRepository.
type MockDedupRepository struct {
	mu   sync.Mutex
	seen map[string]bool

	TryAdmitFunc    func(ctx context.Context, accountID, requestID string, at time.Time) (bool, error)
	PruneBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func NewMockDedupRepository() *MockDedupRepository {
	return &MockDedupRepository{seen: make(map[string]bool)}
}

func (m *MockDedupRepository) TryAdmit(ctx context.Context, accountID, requestID string, at time.Time) (bool, error) {
	if m.TryAdmitFunc != nil {
		return m.TryAdmitFunc(ctx, accountID, requestID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := accountID + ":" + requestID
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *MockDedupRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PruneBeforeFunc != nil {
		return m.PruneBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

// MockDedupCache is a mock implementation of DedupCache.
type MockDedupCache struct {
	mu   sync.Mutex
	keys map[string]bool

	SeenFunc     func(ctx context.Context, accountID, requestID string) (bool, error)
	MarkSeenFunc func(ctx context.Context, accountID, requestID string, ttl time.Duration) error
}

func NewMockDedupCache() *MockDedupCache {
	return &MockDedupCache{keys: make(map[string]bool)}
}

func (m *MockDedupCache) Seen(ctx context.Context, accountID, requestID string) (bool, error) {
	if m.SeenFunc != nil {
		return m.SeenFunc(ctx, accountID, requestID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[accountID+":"+requestID], nil
}

func (m *MockDedupCache) MarkSeen(ctx context.Context, accountID, requestID string, ttl time.Duration) error {
	if m.MarkSeenFunc != nil {
		return m.MarkSeenFunc(ctx, accountID, requestID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[accountID+":"+requestID] = true
	return nil
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	t.RolledBack = true
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockRetrier runs the operation once without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
