package domain

import "time"

// EntryReason tags why a ledger entry was written.
type EntryReason string

const (
	// ReasonGeneration is a -1 debit for an admitted generation request.
	ReasonGeneration EntryReason = "generation"

	// ReasonAdminBypass is a zero-delta audit entry for privileged callers.
	ReasonAdminBypass EntryReason = "admin_bypass"

	// ReasonTopUp is a credit from the payment collaborator.
	ReasonTopUp EntryReason = "top_up"
)

// Entry is an immutable audit record of a balance change. Entries are
// append-only; they are never updated or deleted.
type Entry struct {
	ID              string
	AccountID       string
	Delta           int64
	Reason          EntryReason
	PreviousBalance int64
	CurrentBalance  int64
	CreatedAt       time.Time
}
