package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DedupRepository implements usecase.DedupRepository on the request_logs
// table. The (account_id, request_id) uniqueness is a primary key; the
// conditional insert below is the only admission path, so two concurrent
// identical requests can never both be admitted.
type DedupRepository struct {
	pool *pgxpool.Pool
}

// NewDedupRepository creates a new DedupRepository.
func NewDedupRepository(pool *pgxpool.Pool) *DedupRepository {
	return &DedupRepository{pool: pool}
}

// TryAdmit inserts the dedup record if the pair is unseen. ON CONFLICT DO
// NOTHING makes the check-and-insert a single atomic statement; a zero
// RowsAffected means the pair already existed.
func (r *DedupRepository) TryAdmit(ctx context.Context, accountID, requestID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO request_logs (account_id, request_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (account_id, request_id) DO NOTHING`,
		accountID, requestID, at)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// PruneBefore removes dedup records older than cutoff.
func (r *DedupRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM request_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
