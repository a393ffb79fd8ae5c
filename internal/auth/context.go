package auth

import (
	"context"

	"inkflow/internal/domain/models"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the request identity. Requests that never
// passed through the identity middleware resolve as guest.
func IdentityFromContext(ctx context.Context) models.Identity {
	if identity, ok := ctx.Value(identityKey).(models.Identity); ok {
		return identity
	}
	return models.GuestIdentity
}
