package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_UsesTemplate(t *testing.T) {
	e := NewError(ErrRoomNotFound)

	assert.Equal(t, ErrRoomNotFound, e.Code)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.NotEmpty(t, e.Message)
}

func TestNewError_DefaultsStatusToOK(t *testing.T) {
	e := NewError(ErrUserAlreadyExists)
	assert.Equal(t, http.StatusOK, e.Status)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	e := NewError(424242)
	assert.Equal(t, ErrUnknown, e.Code)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
}

func TestNewError_ReturnsIndependentCopies(t *testing.T) {
	a := NewError(ErrRoomForbidden)
	a.Message = "mutated"

	b := NewError(ErrRoomForbidden)
	assert.NotEqual(t, "mutated", b.Message)
}

func TestWrap_KeepsShapeAndCause(t *testing.T) {
	cause := errors.New("deadline exceeded")
	e := Wrap(ErrStoreTransient, cause)

	plain := NewError(ErrStoreTransient)
	assert.Equal(t, plain.Code, e.Code)
	assert.Equal(t, plain.Message, e.Message)
	assert.Equal(t, plain.Status, e.Status)
	assert.ErrorIs(t, e, cause)
}

func TestAsAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("rename: %w", NewError(ErrRoomForbidden))

	require.NotNil(t, As(wrapped))
	assert.Equal(t, ErrRoomForbidden, As(wrapped).Code)
	assert.Equal(t, ErrRoomForbidden, CodeOf(wrapped))
	assert.True(t, Is(wrapped, ErrRoomForbidden))
	assert.False(t, Is(wrapped, ErrRoomNotFound))

	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrUnknown, As(errors.New("plain")).Code)
	assert.Equal(t, 0, CodeOf(nil))
	assert.Nil(t, As(nil))
}
