// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecoplagas/backend/internal/core"
	"github.com/ecoplagas/backend/internal/session"
)

type SessionLoader interface {
	Load(ctx context.Context, r *http.Request) (*session.Session, error)
}

// Sessions resolves the session cookie into a request identity. Requests
// without a valid session continue anonymously.
func Sessions(loader SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loader.Load(r.Context(), r)
			if err != nil {
				if !errors.Is(err, core.ErrNotFound) {
					slog.WarnContext(r.Context(), "session lookup failed",
						"error", err,
						"request_id", GetRequestID(r.Context()),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), sess.ID, sess.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			core.JSONError(w, core.UnauthorizedError(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}
