/*
Package oauthstate keeps the short-lived state tokens that tie an OAuth authorization
request to its callback.

A token is issued when sign-in starts and consumed exactly once when the provider
redirects back. Tokens expire after a TTL whether or not they are used.
*/
package oauthstate

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL bounds how long a user may take to finish the provider's consent screen.
const DefaultTTL = 10 * time.Minute

// ErrStateInvalid is returned by Consume for unknown, expired, or already consumed tokens.
var ErrStateInvalid = errors.New("oauthstate: state invalid or expired")

// Store issues and consumes state tokens.
type Store interface {
	// Issue generates a new state token valid for the store's TTL.
	Issue(ctx context.Context) (string, error)

	// Consume validates and removes state. A second Consume of the same token fails.
	Consume(ctx context.Context, state string) error
}
