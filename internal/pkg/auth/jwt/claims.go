package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims of a roomchat session token.
type Payload struct {
	// StandardClaims carries exp, iat and iss.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable user identifier every room operation is authorized against.
	ID string `json:"id"`

	// Username is the display handle at the time the token was issued.
	Username string `json:"username"`

	// Provider records how the session was established ("local" or "google").
	Provider string `json:"provider"`
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)
