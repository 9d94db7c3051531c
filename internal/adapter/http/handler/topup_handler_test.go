package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iho/tokengate/internal/adapter/http/dto"
	"github.com/iho/tokengate/internal/domain"
)

type ledgerServiceStub struct {
	getBalanceFn  func(ctx context.Context, accountID string) (int64, error)
	creditFn      func(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error)
	listEntriesFn func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

func (s *ledgerServiceStub) GetBalance(ctx context.Context, accountID string) (int64, error) {
	return s.getBalanceFn(ctx, accountID)
}

func (s *ledgerServiceStub) Credit(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
	return s.creditFn(ctx, accountID, amount, reason)
}

func (s *ledgerServiceStub) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	return s.listEntriesFn(ctx, accountID, limit, offset)
}

const webhookSecret = "hook-secret"

func newTopUpRequest(t *testing.T, secret string, body any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(raw))
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}

	return req
}

func TestTopUpHandler_Success(t *testing.T) {
	var gotAccount string
	var gotAmount int64
	var gotReason domain.EntryReason

	handler := NewTopUpHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
			gotAccount, gotAmount, gotReason = accountID, amount, reason
			return 15, nil
		},
	}, webhookSecret, testMetrics, zerolog.Nop())

	req := newTopUpRequest(t, webhookSecret, dto.TopUpRequest{Identity: "user-1", Amount: 10})
	rec := httptest.NewRecorder()

	handler.HandleTopUp(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotAccount != "user-1" || gotAmount != 10 || gotReason != domain.ReasonTopUp {
		t.Fatalf("unexpected credit call: %s %d %s", gotAccount, gotAmount, gotReason)
	}

	var resp dto.TopUpResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK || resp.Balance != 15 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTopUpHandler_BadSecret(t *testing.T) {
	handler := NewTopUpHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
			t.Fatal("Credit should not be called with a bad secret")
			return 0, nil
		},
	}, webhookSecret, testMetrics, zerolog.Nop())

	testCases := []struct {
		name   string
		secret string
	}{
		{name: "missing secret", secret: ""},
		{name: "wrong secret", secret: "nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := newTopUpRequest(t, tc.secret, dto.TopUpRequest{Identity: "user-1", Amount: 10})
			rec := httptest.NewRecorder()

			handler.HandleTopUp(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestTopUpHandler_InvalidAmount(t *testing.T) {
	handler := NewTopUpHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
			return 0, domain.ErrInvalidAmount
		},
	}, webhookSecret, testMetrics, zerolog.Nop())

	req := newTopUpRequest(t, webhookSecret, dto.TopUpRequest{Identity: "user-1", Amount: -5})
	rec := httptest.NewRecorder()

	handler.HandleTopUp(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTopUpHandler_UnknownAccount(t *testing.T) {
	handler := NewTopUpHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
			return 0, domain.ErrAccountNotFound
		},
	}, webhookSecret, testMetrics, zerolog.Nop())

	req := newTopUpRequest(t, webhookSecret, dto.TopUpRequest{Identity: "ghost", Amount: 10})
	rec := httptest.NewRecorder()

	handler.HandleTopUp(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTopUpHandler_MissingIdentity(t *testing.T) {
	handler := NewTopUpHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, accountID string, amount int64, reason domain.EntryReason) (int64, error) {
			t.Fatal("Credit should not be called without an identity")
			return 0, nil
		},
	}, webhookSecret, testMetrics, zerolog.Nop())

	req := newTopUpRequest(t, webhookSecret, dto.TopUpRequest{Amount: 10})
	rec := httptest.NewRecorder()

	handler.HandleTopUp(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
