package jwt

import (
	"context"
	"net/http"
	"strings"

	"roomchat/internal/pkg/logx"
)

type contextKey string

const (
	// ContextAuthPayloadKey is the context key of the parsed session Payload.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// IdentityExtractorMiddleware parses a Bearer token when present and stores its
// Payload in the request context. Missing or invalid tokens leave the request
// anonymous; handlers decide whether a caller is required.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(parts[1], secretKey)
			if err != nil {
				logx.Ctx(r.Context()).Warn().Err(err).Msg("Invalid or expired JWT provided, treating as anonymous")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPayload(r.Context(), payload)))
		})
	}
}

// ContextWithPayload returns a copy of ctx carrying payload.
func ContextWithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// PayloadFromContext returns the session Payload in ctx, or nil for anonymous callers.
func PayloadFromContext(ctx context.Context) *Payload {
	payload, ok := ctx.Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}

// GetPayloadFromContext is PayloadFromContext for an *http.Request.
func GetPayloadFromContext(r *http.Request) *Payload {
	return PayloadFromContext(r.Context())
}
