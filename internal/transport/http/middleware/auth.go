package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vanishmail/internal/domain"
	jwtinfra "github.com/vanishmail/internal/infrastructure/jwt"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver re-checks that the token's subject still exists.
type UserResolver interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Auth returns middleware that validates the Bearer JWT, re-resolves the user
// against the store, and injects the user into the request context. The
// stored password hash never reaches handlers' JSON output (json:"-").
func Auth(provider *jwtinfra.Provider, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, errMsg := resolve(r, provider, users)
			if u == nil {
				writeJSONError(w, http.StatusUnauthorized, errMsg)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

// OptionalAuth performs the same resolution as Auth but proceeds anonymously
// on any failure instead of rejecting.
func OptionalAuth(provider *jwtinfra.Provider, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, _ := resolve(r, provider, users); u != nil {
				r = r.WithContext(context.WithValue(r.Context(), userKey, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(r *http.Request, provider *jwtinfra.Provider, users UserResolver) (*domain.User, string) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, "no token provided"
	}
	claims, err := provider.Verify(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return nil, "invalid or expired token"
	}
	u, err := users.Get(r.Context(), claims.UserID)
	if err != nil {
		return nil, "user not found"
	}
	return u, ""
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}
