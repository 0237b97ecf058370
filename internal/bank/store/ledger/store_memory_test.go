package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
)

func requestOn(recipientID string, status bank.RequestStatus, date time.Time) bank.BloodRequest {
	return bank.BloodRequest{
		ID:          uuid.New(),
		BloodType:   bank.BloodTypeBNeg,
		QuantityML:  300,
		RecipientID: &recipientID,
		RequestDate: bank.Date(date),
		Status:      status,
	}
}

func TestInMemoryStore_Append(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	request := requestOn("recipient-1", bank.StatusFulfilled, time.Now())
	require.NoError(t, store.Append(ctx, request))

	t.Run("duplicate ID conflicts", func(t *testing.T) {
		assert.ErrorIs(t, store.Append(ctx, request), sentinel.ErrConflict)
	})
}

func TestInMemoryStore_ListByRecipient(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	oldest := requestOn("recipient-1", bank.StatusPending, base.AddDate(0, 0, -80))
	middle := requestOn("recipient-1", bank.StatusFulfilled, base.AddDate(0, 0, -40))
	newest := requestOn("recipient-1", bank.StatusFulfilled, base)
	other := requestOn("recipient-2", bank.StatusPending, base)
	for _, r := range []bank.BloodRequest{middle, newest, oldest, other} {
		require.NoError(t, store.Append(ctx, r))
	}

	requests, err := store.ListByRecipient(ctx, "recipient-1")
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, newest.ID, requests[0].ID, "newest request first")
	assert.Equal(t, middle.ID, requests[1].ID)
	assert.Equal(t, oldest.ID, requests[2].ID)

	t.Run("unknown recipient lists empty", func(t *testing.T) {
		requests, err := store.ListByRecipient(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, requests)
	})
}
