/*
Package randx provides cryptographically secure random tokens and identifiers.

It is used for OAuth state tokens and entity ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// StateTokenLength is the length of an OAuth state token (about 190 bits of entropy).
	StateTokenLength = 32
)

// base62 returns a random Base62 string of the given length drawn from crypto/rand.
func base62(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// StateToken generates an opaque token for an OAuth authorization round trip.
func StateToken() (string, error) {
	return base62(StateTokenLength)
}

// IsValidStateToken checks the length and alphabet of a state token before any store lookup.
func IsValidStateToken(token string) bool {
	if len(token) != StateTokenLength {
		return false
	}

	for _, char := range token {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// ID generates a UUID v4 string used as a room or user identifier.
func ID() string {
	return uuid.New().String()
}

// IsValidID reports whether s parses as a UUID.
func IsValidID(s string) bool {
	_, ok := ParseID(s)
	return ok
}

// ParseID returns the canonical lowercase form of a UUID identifier.
func ParseID(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
