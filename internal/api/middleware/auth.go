package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/users"
)

type contextKey string

const userContextKey contextKey = "current_user"

// CurrentUser returns the authenticated user stored by RequireAuth.
func CurrentUser(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(userContextKey).(users.User)
	return user, ok
}

// WithUser stores the user on the context. Exported for handler tests.
func WithUser(ctx context.Context, user users.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireAuth guards a handler with bearer-token authentication. The token
// is verified and the subject resolved against the user store, so a token
// for a since-deleted account is rejected even before expiry.
func RequireAuth(tokens *auth.TokenManager, userRepo users.Repository, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, r, err, env)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				unauthorized(w, r, err, env)
				return
			}

			user, err := userRepo.FindByID(r.Context(), claims.UserID())
			if err != nil {
				if errors.Is(err, users.ErrNotFound) {
					unauthorized(w, r, auth.ErrInvalidToken, env)
					return
				}
				problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
					"Internal Server Error", err, env)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error, env string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
		"Unauthorized", err, env, problem.WithDetail("valid bearer token required"))
}
