package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() Key {
	return NewKey(uuid.New(), time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
}

func TestNewKey_FormatsDate(t *testing.T) {
	id := uuid.New()
	key := NewKey(id, time.Date(2025, 4, 10, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, "2025-04-10", key.JourneyDate)
	assert.Equal(t, id.String()+":2025-04-10", key.String())
}

func TestMemory_ReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := testKey()

	available, err := m.Available(ctx, key, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	res, err := m.TryReserve(ctx, key, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, Reservation{OK: true, Available: 0}, res)

	res, err = m.TryReserve(ctx, key, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, Reservation{OK: false, Available: 0}, res)
	assert.Equal(t, 2, m.Committed(key))

	require.NoError(t, m.Release(ctx, key, 2))

	res, err = m.TryReserve(ctx, key, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, Reservation{OK: true, Available: 1}, res)
}

func TestMemory_ReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := testKey()

	_, err := m.TryReserve(ctx, key, 10, 1)
	require.NoError(t, err)
	require.NoError(t, m.Release(ctx, key, 5))

	assert.Equal(t, 0, m.Committed(key))
	available, err := m.Available(ctx, key, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
}

func TestMemory_RejectsNonPositiveCount(t *testing.T) {
	m := NewMemory()
	_, err := m.TryReserve(context.Background(), testKey(), 10, 0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.ErrorIs(t, m.Release(context.Background(), testKey(), -1), ErrInvalidCount)
}

func TestMemory_ConcurrentReservationsNeverOversell(t *testing.T) {
	const (
		capacity = 10
		callers  = 50
	)
	ctx := context.Background()
	m := NewMemory()
	key := testKey()

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := m.TryReserve(ctx, key, capacity, 1)
			if err == nil && res.OK {
				success.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(capacity), success.Load())
	assert.Equal(t, capacity, m.Committed(key))
}

func TestMemory_MixedReserveReleaseKeepsInvariant(t *testing.T) {
	const capacity = 7
	ctx := context.Background()
	m := NewMemory()
	key := testKey()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			count := n%3 + 1
			res, err := m.TryReserve(ctx, key, capacity, count)
			if err != nil || !res.OK {
				return
			}
			assert.LessOrEqual(t, m.Committed(key), capacity)
			assert.NoError(t, m.Release(ctx, key, count))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, m.Committed(key))
}

func TestMemory_CancelledCallerNeverCommits(t *testing.T) {
	m := NewMemory()
	key := testKey()

	// hold the key so the next caller has to queue
	c := m.findOrCreate(key)
	require.NoError(t, c.lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.TryReserve(ctx, key, 5, 1)
		done <- err
	}()

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	c.unlock()
	assert.Equal(t, 0, m.Committed(key))
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	m := NewMemory()
	busy := testKey()
	free := testKey()

	c := m.findOrCreate(busy)
	require.NoError(t, c.lock(context.Background()))
	defer c.unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := m.TryReserve(ctx, free, 3, 3)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestOpen_SelectsBackend(t *testing.T) {
	l, err := Open(BackendMemory, nil, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, l)

	_, err = Open(BackendPostgres, nil, nil, nil)
	assert.Error(t, err)

	_, err = Open(BackendRedis, nil, nil, nil)
	assert.Error(t, err)

	_, err = Open("etcd", nil, nil, nil)
	assert.Error(t, err)
}

func TestMemory_SeedNeverLowers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := testKey()

	require.NoError(t, m.Seed(ctx, key, 2))
	assert.Equal(t, 2, m.Committed(key))

	res, err := m.TryReserve(ctx, key, 2, 1)
	require.NoError(t, err)
	assert.False(t, res.OK)

	require.NoError(t, m.Seed(ctx, key, 1))
	assert.Equal(t, 2, m.Committed(key))

	assert.ErrorIs(t, m.Seed(ctx, key, -1), ErrInvalidCount)
}

func TestMemory_PruneDropsPastDates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	past := NewKey(uuid.New(), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	today := NewKey(uuid.New(), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	for _, key := range []Key{past, today} {
		_, err := m.TryReserve(ctx, key, 10, 4)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, m.Prune("2025-04-01"))
	assert.Equal(t, 0, m.Committed(past))
	assert.Equal(t, 4, m.Committed(today))
}
