package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
)

var today = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func unitOn(id uuid.UUID, bloodType bank.BloodType, qty int, collected time.Time) bank.BloodUnit {
	donorID := "donor-1"
	return bank.BloodUnit{
		ID:             id,
		BloodType:      bloodType,
		QuantityML:     qty,
		DonorID:        &donorID,
		CollectionDate: bank.Date(collected),
		ExpiryDate:     bank.Date(collected).AddDate(0, 0, bank.ShelfLifeDays),
	}
}

func TestInMemoryStore_AvailableQuantity(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	t.Run("empty type sums to zero", func(t *testing.T) {
		total, err := store.AvailableQuantity(ctx, bank.BloodTypeBNeg, today)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("sums only matching non-expired units", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, unitOn(uuid.New(), bank.BloodTypeOPos, 100, today.AddDate(0, 0, -1))))
		require.NoError(t, store.Add(ctx, unitOn(uuid.New(), bank.BloodTypeOPos, 50, today)))
		require.NoError(t, store.Add(ctx, unitOn(uuid.New(), bank.BloodTypeANeg, 500, today)))
		// Collected long enough ago to have expired.
		require.NoError(t, store.Add(ctx, unitOn(uuid.New(), bank.BloodTypeOPos, 999, today.AddDate(0, 0, -bank.ShelfLifeDays))))

		total, err := store.AvailableQuantity(ctx, bank.BloodTypeOPos, today)
		require.NoError(t, err)
		assert.Equal(t, 150, total)
	})
}

func TestInMemoryStore_ListFIFO(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	oldID := uuid.New()
	newID := uuid.New()
	require.NoError(t, store.Add(ctx, unitOn(newID, bank.BloodTypeOPos, 50, today.AddDate(0, 0, -5))))
	require.NoError(t, store.Add(ctx, unitOn(oldID, bank.BloodTypeOPos, 100, today.AddDate(0, 0, -20))))
	require.NoError(t, store.Add(ctx, unitOn(uuid.New(), bank.BloodTypeOPos, 999, today.AddDate(0, 0, -bank.ShelfLifeDays))))

	units, err := store.ListFIFO(ctx, bank.BloodTypeOPos, today)
	require.NoError(t, err)
	require.Len(t, units, 2, "expired unit must not be listed")
	assert.Equal(t, oldID, units[0].ID, "oldest collection first")
	assert.Equal(t, newID, units[1].ID)
}

func TestInMemoryStore_ListFIFO_TieBreakByID(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	collected := today.AddDate(0, 0, -3)
	// Insert in reverse to prove ordering is by ID, not insertion.
	require.NoError(t, store.Add(ctx, unitOn(second, bank.BloodTypeABNeg, 10, collected)))
	require.NoError(t, store.Add(ctx, unitOn(first, bank.BloodTypeABNeg, 20, collected)))

	units, err := store.ListFIFO(ctx, bank.BloodTypeABNeg, today)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, first, units[0].ID)
	assert.Equal(t, second, units[1].ID)
}

func TestInMemoryStore_Mutations(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, store.Add(ctx, unitOn(id, bank.BloodTypeAPos, 100, today)))

	t.Run("duplicate add conflicts", func(t *testing.T) {
		err := store.Add(ctx, unitOn(id, bank.BloodTypeAPos, 100, today))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("set quantity persists", func(t *testing.T) {
		require.NoError(t, store.SetQuantity(ctx, id, 40))
		total, err := store.AvailableQuantity(ctx, bank.BloodTypeAPos, today)
		require.NoError(t, err)
		assert.Equal(t, 40, total)
	})

	t.Run("zero quantity is rejected, delete is the path out", func(t *testing.T) {
		assert.ErrorIs(t, store.SetQuantity(ctx, id, 0), sentinel.ErrInvalidState)
	})

	t.Run("delete removes the unit", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))
		assert.ErrorIs(t, store.Delete(ctx, id), sentinel.ErrNotFound)
		assert.ErrorIs(t, store.SetQuantity(ctx, id, 10), sentinel.ErrNotFound)
	})
}

func TestInMemoryStore_ListByDonor(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	older := unitOn(uuid.New(), bank.BloodTypeONeg, 100, today.AddDate(0, 0, -10))
	newer := unitOn(uuid.New(), bank.BloodTypeONeg, 200, today)
	require.NoError(t, store.Add(ctx, older))
	require.NoError(t, store.Add(ctx, newer))

	units, err := store.ListByDonor(ctx, "donor-1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, newer.ID, units[0].ID, "newest collection first")
}

func TestInMemoryStore_ConcurrentAdds(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Add(ctx, unitOn(uuid.New(), bank.BloodTypeBPos, 10, today)))
		}()
	}
	wg.Wait()

	total, err := store.AvailableQuantity(ctx, bank.BloodTypeBPos, today)
	require.NoError(t, err)
	assert.Equal(t, goroutines*10, total)
}
