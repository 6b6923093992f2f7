package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solpayhq/solpay/internal/domain/errors"
)

func TestNewRecord(t *testing.T) {
	r, err := NewRecord(1, "a@b.com", "Alice", 500, "5sig", "ref-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.IsTerminal())
	assert.Nil(t, r.CompletedAt)
}

func TestNewRecord_RejectsNonPositiveAmount(t *testing.T) {
	_, err := NewRecord(1, "a@b.com", "Alice", 0, "5sig", "")
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
}

func TestNewRecord_RejectsEmptySignature(t *testing.T) {
	_, err := NewRecord(1, "a@b.com", "Alice", 500, "", "")
	assert.Error(t, err)
}

func TestRecord_MarkCompleted(t *testing.T) {
	r, _ := NewRecord(1, "a@b.com", "Alice", 500, "5sig", "")
	require.NoError(t, r.MarkCompleted())
	assert.Equal(t, StatusCompleted, r.Status)
	assert.NotNil(t, r.CompletedAt)
	assert.True(t, r.IsTerminal())
}

func TestRecord_TerminalStatesNeverTransition(t *testing.T) {
	r, _ := NewRecord(1, "a@b.com", "Alice", 500, "5sig", "")
	require.NoError(t, r.MarkCompleted())

	assert.ErrorIs(t, r.MarkFailed(), errors.ErrInvalidStateTransition)
	assert.ErrorIs(t, r.MarkCompleted(), errors.ErrInvalidStateTransition)
	assert.Equal(t, StatusCompleted, r.Status)

	f, _ := NewRecord(1, "a@b.com", "Alice", 500, "6sig", "")
	require.NoError(t, f.MarkFailed())
	assert.ErrorIs(t, f.MarkCompleted(), errors.ErrInvalidStateTransition)
}
