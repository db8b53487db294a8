package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

func TestAprHistoryStore_AppendAndHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAprHistoryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.AprPoint{PoolID: domain.PoolFlexible, AprPercent: 12.0, Timestamp: 1000}))
	require.NoError(t, store.Append(ctx, domain.AprPoint{PoolID: domain.PoolFlexible, AprPercent: 12.5, Timestamp: 2000}))
	require.NoError(t, store.Append(ctx, domain.AprPoint{PoolID: domain.PoolLock180, AprPercent: 40.0, Timestamp: 1500}))

	history, err := store.History(ctx, domain.PoolFlexible)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 12.0, history[0].AprPercent)
	assert.Equal(t, int64(2000), history[1].Timestamp)

	other, err := store.History(ctx, domain.PoolLock180)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, domain.PoolLock180, other[0].PoolID)
}

func TestAprHistoryStore_CapEnforced(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAprHistoryStore(pool)
	ctx := context.Background()

	for i := 0; i < storage.AprHistoryCap+4; i++ {
		err := store.Append(ctx, domain.AprPoint{
			PoolID:     domain.PoolLock90,
			AprPercent: float64(i),
			Timestamp:  int64(i * 100),
		})
		require.NoError(t, err)
	}

	history, err := store.History(ctx, domain.PoolLock90)
	require.NoError(t, err)
	require.Len(t, history, storage.AprHistoryCap)
	assert.Equal(t, int64(400), history[0].Timestamp, "oldest rows should have been trimmed")
}

func TestAprHistoryStore_RejectsInvalid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAprHistoryStore(pool)
	ctx := context.Background()

	err := store.Append(ctx, domain.AprPoint{PoolID: domain.PoolFlexible, AprPercent: -5})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Append(ctx, domain.AprPoint{PoolID: domain.PoolID(9), AprPercent: 10})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
