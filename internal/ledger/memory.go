package ledger

import (
	"context"
	"sync"
	"sync/atomic"
)

// Memory is an in-process ledger. Each key owns a one-slot semaphore so
// mutations on the same key are serialized while different keys proceed
// independently. The map lock is only taken to find or create a counter.
// Counters live as long as the process: they must be seeded from stored
// bookings at startup, and keys for past journey dates stay until Prune.
type Memory struct {
	mu       sync.Mutex
	counters map[Key]*counter
}

type counter struct {
	sem       chan struct{}
	committed atomic.Int64
}

func NewMemory() *Memory {
	return &Memory{counters: make(map[Key]*counter)}
}

func (m *Memory) findOrCreate(key Key) *counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[key]
	if !ok {
		c = &counter{sem: make(chan struct{}, 1)}
		m.counters[key] = c
	}
	return c
}

func (m *Memory) lookup(key Key) *counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// lock waits for the key's slot or for ctx to end
func (c *counter) lock(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *counter) unlock() {
	<-c.sem
}

func (m *Memory) Available(ctx context.Context, key Key, totalSeats int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c := m.lookup(key)
	if c == nil {
		return max(totalSeats, 0), nil
	}
	return remaining(totalSeats, int(c.committed.Load())), nil
}

func (m *Memory) TryReserve(ctx context.Context, key Key, totalSeats, count int) (Reservation, error) {
	if count <= 0 {
		return Reservation{}, ErrInvalidCount
	}
	if err := ctx.Err(); err != nil {
		return Reservation{}, err
	}

	c := m.findOrCreate(key)
	if err := c.lock(ctx); err != nil {
		return Reservation{}, err
	}
	defer c.unlock()

	committed := int(c.committed.Load())
	if committed+count > totalSeats {
		return Reservation{OK: false, Available: remaining(totalSeats, committed)}, nil
	}

	// a caller cancelled while queued must not commit
	if err := ctx.Err(); err != nil {
		return Reservation{}, err
	}

	committed += count
	c.committed.Store(int64(committed))
	return Reservation{OK: true, Available: remaining(totalSeats, committed)}, nil
}

func (m *Memory) Release(ctx context.Context, key Key, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}

	c := m.findOrCreate(key)
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	c.committed.Store(max(c.committed.Load()-int64(count), 0))
	return nil
}

// Committed exposes the raw counter, mainly for tests and diagnostics
func (m *Memory) Committed(key Key) int {
	if c := m.lookup(key); c != nil {
		return int(c.committed.Load())
	}
	return 0
}

func (m *Memory) Seed(ctx context.Context, key Key, committed int) error {
	if committed < 0 {
		return ErrInvalidCount
	}

	c := m.findOrCreate(key)
	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	c.committed.Store(max(c.committed.Load(), int64(committed)))
	return nil
}

// Prune drops counters whose journey date is before the given "YYYY-MM-DD"
// date and reports how many were removed
func (m *Memory) Prune(before string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.counters {
		if key.JourneyDate < before {
			delete(m.counters, key)
			removed++
		}
	}
	return removed
}
