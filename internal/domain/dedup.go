package domain

import (
	"fmt"
	"time"
)

// DedupRecord marks a (account, request id) pair as already accepted.
// At most one record may exist per pair; the uniqueness is enforced by
// the store, not by application-level checks.
type DedupRecord struct {
	RequestID string
	AccountID string
	CreatedAt time.Time
}

// SynthRequestID builds a request id for clients that did not supply one.
// Identical logical retries within the same millisecond collapse to the
// same id; callers wanting real idempotency must send their own ids.
func SynthRequestID(accountID string, at time.Time) string {
	return fmt.Sprintf("%s-%d", accountID, at.UnixMilli())
}
