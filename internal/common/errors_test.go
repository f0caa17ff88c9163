package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_JoinsAndMatches(t *testing.T) {
	err := NewValidationError("first.", "second.")

	assert.Equal(t, "first. second.", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrAccountConflict))

	wrapped := fmt.Errorf("register: %w", err)
	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, []string{"first.", "second."}, ve.Violations)
}

func TestConflictVariants_WrapAccountConflict(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyRegistered, ErrAccountConflict)
	assert.ErrorIs(t, ErrLinkedExternally, ErrAccountConflict)
	assert.NotErrorIs(t, ErrAlreadyRegistered, ErrLinkedExternally)
}
