// AngelaMos | 2026
// context.go

package middleware

import (
	"context"

	"github.com/ecoplagas/backend/internal/session"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	IdentityKey  contextKey = "identity"
	SessionIDKey contextKey = "session_id"
)

func WithIdentity(
	ctx context.Context,
	sessionID string,
	identity session.Identity,
) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, identity)
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func GetIdentity(ctx context.Context) (session.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(session.Identity)
	return identity, ok
}

func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	_, ok := GetIdentity(ctx)
	return ok
}
