package spawnerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeInvalidState, "instance already despawned")

	assert.Equal(t, ErrorTypeInvalidState, err.Type)
	assert.Equal(t, "invalid_state: instance already despawned", err.Error())
	assert.NotEmpty(t, err.Stack, "stack captured at creation")
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrorTypeHost, "activation failed")

	assert.Equal(t, ErrorTypeHost, err.Type)
	assert.Equal(t, "host: activation failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestWrapPreservesStructuredStack(t *testing.T) {
	inner := New(ErrorTypeNotFound, "unknown object")
	outer := Wrap(inner, ErrorTypeHost, "place failed")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.ErrorIs(t, outer, error(inner))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeConflict, "handler already registered").
		WithDetail("key", "enemy").
		WithDetail("attempt", 2)

	assert.Equal(t, "enemy", err.Details["key"])
	assert.Equal(t, 2, err.Details["attempt"])
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeValidation, "spawn requires a template")

	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeInternal))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeValidation))
	assert.False(t, IsType(nil, ErrorTypeValidation))
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := New(ErrorTypeNotFound, "unknown key")
	wrapped := fmt.Errorf("spawn: %w", inner)

	assert.True(t, IsType(wrapped, ErrorTypeNotFound))
}

func TestErrorsAs(t *testing.T) {
	var structured *Error
	err := fmt.Errorf("outer: %w", New(ErrorTypePersistence, "journal closed"))

	require.True(t, errors.As(err, &structured))
	assert.Equal(t, ErrorTypePersistence, structured.Type)
}
