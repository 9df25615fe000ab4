package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := New(CodeNotFound, "user not found")
	wrapped := Wrap(base, CodeInternal, "load user")

	assert.True(t, HasCode(base, CodeNotFound))
	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.True(t, HasCode(wrapped, CodeNotFound), "inner codes are visible")
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.True(t, Is(fmt.Errorf("outer: %w", wrapped), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "noop"))

	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeUnavailable, "portal unreachable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unavailable: portal unreachable: dial tcp: refused", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
