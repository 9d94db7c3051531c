package usecase

import (
	"context"
	"time"

	"github.com/iho/tokengate/internal/domain"
)

// Outcome is the terminal state of an admission attempt. There is no
// persisted intermediate state.
type Outcome string

const (
	// OutcomeDuplicate means the request id was already consumed; no
	// charge, no call.
	OutcomeDuplicate Outcome = "duplicate"

	// OutcomeCharged means one unit was debited and the request may
	// proceed to the generator.
	OutcomeCharged Outcome = "charged"

	// OutcomeBypassed means a privileged caller was admitted without a
	// charge; a zero-delta audit entry was written.
	OutcomeBypassed Outcome = "bypassed"
)

// Admission is the committed result of a gate decision.
type Admission struct {
	Outcome   Outcome
	RequestID string
	Balance   int64
}

// MeterUseCase decides whether a request is admitted: dedup first, then
// the role's billing policy. Dedup admission is irreversible per request
// id; a request rejected for insufficient funds keeps its dedup record,
// so callers retry after top-up with a fresh id.
type MeterUseCase struct {
	ledger     *LedgerUseCase
	dedupRepo  DedupRepository
	dedupCache DedupCache
	cacheTTL   time.Duration
}

// NewMeterUseCase creates a new MeterUseCase. dedupCache may be nil.
func NewMeterUseCase(ledger *LedgerUseCase, dedupRepo DedupRepository, dedupCache DedupCache, cacheTTL time.Duration) *MeterUseCase {
	return &MeterUseCase{
		ledger:     ledger,
		dedupRepo:  dedupRepo,
		dedupCache: dedupCache,
		cacheTTL:   cacheTTL,
	}
}

// Admit runs the gate for one request. Storage failures fail closed: no
// admission, no debit.
func (uc *MeterUseCase) Admit(ctx context.Context, caller domain.Caller, requestID string) (*Admission, error) {
	if uc.dedupCache != nil {
		seen, err := uc.dedupCache.Seen(ctx, caller.ID, requestID)
		if err == nil && seen {
			return &Admission{Outcome: OutcomeDuplicate, RequestID: requestID}, nil
		}
		// Cache errors fall through to the authoritative store.
	}

	admitted, err := uc.dedupRepo.TryAdmit(ctx, caller.ID, requestID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uc.markSeen(ctx, caller.ID, requestID)

	if !admitted {
		return &Admission{Outcome: OutcomeDuplicate, RequestID: requestID}, nil
	}

	admission, err := uc.policyFor(caller.Role).admit(ctx, caller.ID)
	if err != nil {
		// The dedup record stays even on ErrInsufficientBalance: a
		// rejected request id is permanently consumed.
		return nil, err
	}

	admission.RequestID = requestID

	return admission, nil
}

func (uc *MeterUseCase) markSeen(ctx context.Context, accountID, requestID string) {
	if uc.dedupCache == nil {
		return
	}

	// Best effort; the unique constraint is the source of truth.
	_ = uc.dedupCache.MarkSeen(ctx, accountID, requestID, uc.cacheTTL)
}

// billingPolicy is the per-role admission action, selected once per
// request so the gate's state machine stays exhaustive.
type billingPolicy interface {
	admit(ctx context.Context, accountID string) (*Admission, error)
}

func (uc *MeterUseCase) policyFor(role domain.Role) billingPolicy {
	if role.Privileged() {
		return bypassPolicy{ledger: uc.ledger}
	}

	return debitPolicy{ledger: uc.ledger}
}

type debitPolicy struct {
	ledger *LedgerUseCase
}

func (p debitPolicy) admit(ctx context.Context, accountID string) (*Admission, error) {
	balance, err := p.ledger.Debit(ctx, accountID, 1, domain.ReasonGeneration)
	if err != nil {
		return nil, err
	}

	return &Admission{Outcome: OutcomeCharged, Balance: balance}, nil
}

type bypassPolicy struct {
	ledger *LedgerUseCase
}

func (p bypassPolicy) admit(ctx context.Context, accountID string) (*Admission, error) {
	if err := p.ledger.RecordBypass(ctx, accountID, domain.ReasonAdminBypass); err != nil {
		return nil, err
	}

	return &Admission{Outcome: OutcomeBypassed}, nil
}
