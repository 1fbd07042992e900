package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndNewf(t *testing.T) {
	err := New(ErrorTypeValidation, "bad input")
	assert.Equal(t, "validation: bad input", err.Error())
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeNotFound))

	err = Newf(ErrorTypeNotFound, "row %q not found", "row-1")
	assert.Contains(t, err.Error(), `row "row-1" not found`)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrorTypeFile, "failed to write database file")

	assert.True(t, IsType(err, ErrorTypeFile))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapExistingTypedError(t *testing.T) {
	inner := New(ErrorTypeConflict, "duplicate id")
	outer := Wrap(inner, ErrorTypeInternal, "mutation failed")

	// The outer type wins for classification.
	assert.True(t, IsType(outer, ErrorTypeInternal))
	assert.ErrorIs(t, outer, inner)
}

func TestIsTypeThroughWrapping(t *testing.T) {
	err := New(ErrorTypeNotFound, "missing")
	wrapped := fmt.Errorf("loading workspace: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeNotFound))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeNotFound))
	assert.False(t, IsType(nil, ErrorTypeNotFound))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeValidation, "invalid database").
		WithDetail("errors", []string{"no primary column"})

	require.NotNil(t, err.Details)
	assert.Equal(t, []string{"no primary column"}, err.Details["errors"])
}

func TestStackIsCaptured(t *testing.T) {
	err := New(ErrorTypeInternal, "boom")
	assert.NotEmpty(t, err.Stack)
}
