package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("receipt")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrapped: %w", ErrUsernameTaken)))
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))

	assert.True(t, Is(ErrRequestProcessed, KindInvalidState))
	assert.False(t, Is(ErrRequestProcessed, KindConflict))
}

func TestWithDetailsCopies(t *testing.T) {
	detailed := ErrUsernameTaken.WithDetails(map[string]string{"username": "alice"})

	assert.Nil(t, ErrUsernameTaken.Details)
	assert.Equal(t, ErrUsernameTaken.Message, detailed.Message)
	assert.Equal(t, KindConflict, detailed.Kind)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "transaction not found", NotFound("transaction").Error())
	assert.Equal(t, `amount "x" is not a whole number`, Validation("amount %q is not a whole number", "x").Error())
}
