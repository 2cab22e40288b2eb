package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NotFound("ConfirmLoan", "no pending action for user %d book %d", 1, 7)
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "ConfirmLoan: NOT_FOUND: no pending action for user 1 book 7", err.Error())
}

func TestError_UnwrapCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreFailure("GetUser", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrStoreFailure))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKindOf_Untagged(t *testing.T) {
	assert.Equal(t, KindStoreFailure, KindOf(errors.New("boom")))
	assert.Equal(t, KindConflict, KindOf(Conflict("DeletePendingAction", nil)))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("SubmitReservation", "user or book unavailable")))
}
