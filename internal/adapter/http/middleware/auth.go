package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/infrastructure/auth"
)

// ContextKey is the type for context keys.
type ContextKey string

// CallerContextKey is the context key for the authenticated caller.
const CallerContextKey ContextKey = "caller"

// AuthMiddleware resolves the bearer credential to a (identity, role)
// pair and attaches it to the request context.
func AuthMiddleware(verifier *auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			caller, err := verifier.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CallerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that checks for a specific role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if role == domain.RoleAdmin && caller.Role != domain.RoleAdmin {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CallerFromContext extracts the authenticated caller from context.
func CallerFromContext(ctx context.Context) (*domain.Caller, bool) {
	caller, ok := ctx.Value(CallerContextKey).(*domain.Caller)
	return caller, ok
}
