package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

func TestEventStore_StakeEvents(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	events := []*domain.StakeEvent{
		{
			User:           "alice",
			StakeIndex:     1,
			StakedAmount:   2_000_000_000,
			LockDuration:   2_592_000,
			APYNumerator:   10,
			APYDenominator: 100,
			Timestamp:      1_700_000_100,
		},
		{
			User:           "alice",
			StakeIndex:     0,
			StakedAmount:   1_000_000_000,
			LockDuration:   604_800,
			APYNumerator:   5,
			APYDenominator: 100,
			Timestamp:      1_700_000_000,
		},
		{
			User:           "bob",
			StakeIndex:     0,
			StakedAmount:   3_000_000_000,
			LockDuration:   7_776_000,
			APYNumerator:   20,
			APYDenominator: 100,
			Timestamp:      1_700_000_050,
		},
	}
	for _, e := range events {
		require.NoError(t, store.InsertStakeEvent(ctx, e))
	}

	got, err := store.GetStakeEventsByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1_700_000_000), got[0].Timestamp, "events ordered by timestamp")
	assert.Equal(t, uint64(0), got[0].StakeIndex)
	assert.Equal(t, uint64(1_000_000_000), got[0].StakedAmount)
	assert.Equal(t, uint64(5), got[0].APYNumerator)
	assert.Equal(t, uint64(1), got[1].StakeIndex)

	got, err = store.GetStakeEventsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventStore_UnstakeEvents(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	event := &domain.UnstakeEvent{
		User:           "alice",
		StakeIndex:     0,
		Principal:      1_000_000_000,
		Rewards:        49_315_068,
		TotalWithdrawn: 1_049_315_068,
		LockDuration:   7_776_000,
		APYNumerator:   20,
		APYDenominator: 100,
		Timestamp:      1_707_776_000,
	}
	require.NoError(t, store.InsertUnstakeEvent(ctx, event))

	got, err := store.GetUnstakeEventsByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, event, got[0])
}

func TestEventStore_RejectsInvalidEvents(t *testing.T) {
	store := NewEventStore(nil)
	ctx := context.Background()

	err := store.InsertStakeEvent(ctx, nil)
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertStakeEvent(ctx, &domain.StakeEvent{})
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertUnstakeEvent(ctx, &domain.UnstakeEvent{})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
