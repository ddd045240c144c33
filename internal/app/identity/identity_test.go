package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionResolver(t *testing.T) {
	var r SessionResolver

	_, ok := r.ResolveCaller(context.Background())
	assert.False(t, ok)

	id, ok := r.ResolveCaller(WithCaller(context.Background(), "user-7"))
	assert.True(t, ok)
	assert.Equal(t, "user-7", id)

	_, ok = r.ResolveCaller(WithCaller(context.Background(), ""))
	assert.False(t, ok)
}

func signIDToken(t *testing.T, claims idTokenClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return raw
}

func TestParseIDToken(t *testing.T) {
	raw := signIDToken(t, idTokenClaims{
		StandardClaims: jwt.StandardClaims{Subject: "1234567890", Audience: "client-id"},
		Email:          "taro.yamada@example.com",
		EmailVerified:  true,
	})

	got, err := parseIDToken(raw, "client-id")
	require.NoError(t, err)
	assert.Equal(t, GoogleIdentity{Subject: "1234567890", Email: "taro.yamada@example.com"}, got)
}

func TestParseIDToken_Rejects(t *testing.T) {
	noEmail := signIDToken(t, idTokenClaims{StandardClaims: jwt.StandardClaims{Subject: "1", Audience: "client-id"}})
	_, err := parseIDToken(noEmail, "client-id")
	assert.Error(t, err)

	otherAudience := signIDToken(t, idTokenClaims{
		StandardClaims: jwt.StandardClaims{Subject: "1", Audience: "someone-else"},
		Email:          "a@example.com",
	})
	_, err = parseIDToken(otherAudience, "client-id")
	assert.Error(t, err)

	unverified := signIDToken(t, idTokenClaims{
		StandardClaims: jwt.StandardClaims{Subject: "1", Audience: "client-id"},
		Email:          "a@example.com",
	})
	_, err = parseIDToken(unverified, "client-id")
	assert.ErrorContains(t, err, "not verified")

	_, err = parseIDToken("not.a.jwt", "client-id")
	assert.Error(t, err)
}
