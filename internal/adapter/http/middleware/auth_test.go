package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/infrastructure/auth"
)

func TestAuthMiddleware(t *testing.T) {
	verifier := auth.NewJWTVerifier("test-secret")

	token, err := verifier.Sign(domain.Caller{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  domain.RoleUser,
	}, time.Hour)
	require.NoError(t, err)

	var gotCaller *domain.Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller, _ = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(verifier)(next)

	testCases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic " + token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotCaller = nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusOK {
				require.NotNil(t, gotCaller)
				assert.Equal(t, "user-1", gotCaller.ID)
				assert.Equal(t, domain.RoleUser, gotCaller.Role)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRole(domain.RoleAdmin)(next)

	testCases := []struct {
		name       string
		caller     *domain.Caller
		wantStatus int
	}{
		{
			name:       "admin allowed",
			caller:     &domain.Caller{ID: "a-1", Role: domain.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "user rejected",
			caller:     &domain.Caller{ID: "u-1", Role: domain.RoleUser},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no caller rejected",
			caller:     nil,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.caller != nil {
				ctx := context.WithValue(req.Context(), CallerContextKey, tc.caller)
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}
