/*
Package identity resolves the caller of a request to a stable user identifier.

It performs no authorization. Session tokens are parsed upstream by the jwt
middleware; Resolver implementations only read the result.
*/
package identity

import (
	"context"

	"roomchat/internal/pkg/auth/jwt"
)

// Resolver maps a request context to the id of the signed-in user.
type Resolver interface {
	// ResolveCaller returns the caller's user id and true, or false for anonymous requests.
	ResolveCaller(ctx context.Context) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (string, bool)

// ResolveCaller implements Resolver.
func (f ResolverFunc) ResolveCaller(ctx context.Context) (string, bool) {
	return f(ctx)
}

// SessionResolver reads the session payload stored by jwt.IdentityExtractorMiddleware.
type SessionResolver struct{}

// ResolveCaller implements Resolver.
func (SessionResolver) ResolveCaller(ctx context.Context) (string, bool) {
	payload := jwt.PayloadFromContext(ctx)
	if payload == nil || payload.ID == "" {
		return "", false
	}
	return payload.ID, true
}

// WithCaller returns a context that SessionResolver resolves to userID.
func WithCaller(ctx context.Context, userID string) context.Context {
	return jwt.ContextWithPayload(ctx, &jwt.Payload{ID: userID, Provider: jwt.ProviderLocal})
}
