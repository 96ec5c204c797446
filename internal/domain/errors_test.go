// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "message only",
			err:      NewValidationError("missing meeting id"),
			expected: "missing meeting id",
		},
		{
			name:     "message with wrapped error",
			err:      NewInternalError("store write failed", errors.New("connection reset")),
			expected: "store write failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{name: "validation error", err: NewValidationError("bad input"), expected: ErrorTypeValidation},
		{name: "unauthorized error", err: NewUnauthorizedError("bad signature"), expected: ErrorTypeUnauthorized},
		{name: "not found error", err: NewNotFoundError("no meeting"), expected: ErrorTypeNotFound},
		{name: "conflict error", err: NewConflictError("revision mismatch"), expected: ErrorTypeConflict},
		{name: "unavailable error", err: NewUnavailableError("store down"), expected: ErrorTypeUnavailable},
		{name: "plain error defaults to internal", err: errors.New("anything"), expected: ErrorTypeInternal},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("handling event: %w", NewNotFoundError("no agent")),
			expected: ErrorTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorType(tt.err))
		})
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewInternalError("outer", inner)
	assert.ErrorIs(t, err, inner)
}
