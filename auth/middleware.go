package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	contextEmailKey contextKey = "email"
	contextRoleKey  contextKey = "role"
)

type Middleware struct {
	tokens *TokenProvider
}

func NewMiddleware(tokens *TokenProvider) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate verifies the bearer token once and puts the verified email
// and role into the request context; handlers never parse credentials.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}
		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), contextEmailKey, claims.Email)
		ctx = context.WithValue(ctx, contextRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a handler behind one allowed role.
func RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actual, ok := RoleFromContext(r.Context())
		if !ok || actual != role {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(contextEmailKey).(string)
	return email, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(contextRoleKey).(string)
	return role, ok
}
