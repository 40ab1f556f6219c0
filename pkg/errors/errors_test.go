package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "validation", err: NewValidationError("bad"), want: ErrorTypeValidation},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", NewNotFoundError("missing")), want: ErrorTypeNotFound},
		{name: "conflict", err: NewConflictError("race"), want: ErrorTypeConflict},
		{name: "permission", err: NewPermissionError("nope"), want: ErrorTypePermission},
		{name: "untyped", err: fmt.Errorf("plain"), want: ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestIsHelpersUnwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NewConflictError("already claimed")))

	assert.True(t, IsConflictError(err))
	assert.False(t, IsNotFoundError(err))
	assert.False(t, IsValidationError(err))
	assert.Equal(t, "conflict", TypeOf(err).String())
}
