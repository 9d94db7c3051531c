package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. The ledger_entries
// table is append-only; there are no update or delete paths.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create appends a ledger entry inside the caller's transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO ledger_entries (id, account_id, delta, reason, previous_balance, current_balance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID,
		entry.AccountID,
		entry.Delta,
		string(entry.Reason),
		entry.PreviousBalance,
		entry.CurrentBalance,
		entry.CreatedAt,
	)

	return err
}

// ListByAccount retrieves entries for an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, delta, reason, previous_balance, current_balance, created_at
		 FROM ledger_entries
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry

	for rows.Next() {
		var (
			entry  domain.Entry
			reason string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Delta,
			&reason,
			&entry.PreviousBalance,
			&entry.CurrentBalance,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Reason = domain.EntryReason(reason)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
