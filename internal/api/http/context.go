package http

import (
	"context"

	"library-circulation/internal/domain"
)

type contextKey int

const (
	identityKey contextKey = iota
	requestIDKey
)

// Identity is the authenticated caller, taken from the bearer token.
type Identity struct {
	UserID int32
	Email  string
	Role   domain.UserRole
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller, or false on public routes.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func CurrentUserID(ctx context.Context) int32 {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

func CurrentUserRole(ctx context.Context) domain.UserRole {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return domain.UserRoleAnonymous
	}
	return id.Role
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
