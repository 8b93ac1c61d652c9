package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesKind(t *testing.T) {
	err := NewCapacity("Only %d seats available", 1)

	assert.True(t, errors.Is(err, ErrCapacity))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Only 1 seats available", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"not found", NewNotFound("flight %s not found", "x"), KindNotFound},
		{"wrapped forbidden", fmt.Errorf("cancel: %w", NewForbidden("nope")), KindForbidden},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNewInternal_KeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternal("failed to load flight", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load flight", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "Internal server error", MessageOf(errors.New("raw")))
}
