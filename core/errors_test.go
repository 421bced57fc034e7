package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("confidenceMin", "must be at most %d", 100)
	assert.Equal(t, "confidenceMin: must be at most 100", err.Error())
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsStorageError(err))

	bare := &ValidationError{Message: "bad"}
	assert.Equal(t, "bad", bare.Error())
}

func TestStorageError(t *testing.T) {
	assert.Nil(t, NewStorageError("find", nil))

	err := NewStorageError("find", context.DeadlineExceeded)
	assert.True(t, IsStorageError(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "storage find failed")

	// Already-wrapped errors keep their original operation
	again := NewStorageError("count", err)
	var se *StorageError
	assert.True(t, errors.As(again, &se))
	assert.Equal(t, "find", se.Op)
}
