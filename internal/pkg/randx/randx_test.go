package randx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateToken(t *testing.T) {
	a, err := StateToken()
	require.NoError(t, err)
	b, err := StateToken()
	require.NoError(t, err)

	assert.Len(t, a, StateTokenLength)
	assert.True(t, IsValidStateToken(a))
	assert.NotEqual(t, a, b)
}

func TestIsValidStateToken_Rejects(t *testing.T) {
	assert.False(t, IsValidStateToken(""))
	assert.False(t, IsValidStateToken("short"))
	assert.False(t, IsValidStateToken("0123456789abcdef0123456789abcde!"))
}

func TestID(t *testing.T) {
	id := ID()
	assert.True(t, IsValidID(id))
	assert.False(t, IsValidID("room-1"))
}

func TestParseID_Canonicalizes(t *testing.T) {
	got, ok := ParseID("6F9619FF-8B86-D011-B42D-00C04FC964FF")
	require.True(t, ok)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", got)

	_, ok = ParseID("")
	assert.False(t, ok)
}
