// Package ledger keeps the authoritative count of committed seats for every
// (train, journey date) pair. A reservation either commits all requested
// seats or changes nothing.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railway-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var ErrInvalidCount = errors.New("seat count must be positive")

// Key identifies one inventory counter. JourneyDate is formatted "YYYY-MM-DD".
type Key struct {
	TrainID     uuid.UUID
	JourneyDate string
}

func NewKey(trainID uuid.UUID, journeyDate time.Time) Key {
	return Key{TrainID: trainID, JourneyDate: journeyDate.Format(time.DateOnly)}
}

func (k Key) String() string {
	return k.TrainID.String() + ":" + k.JourneyDate
}

// Reservation is the outcome of TryReserve. Available is the number of seats
// left after the call, whether or not it succeeded.
type Reservation struct {
	OK        bool
	Available int
}

type Ledger interface {
	// Available returns totalSeats minus committed seats, never negative. The value may be stale.
	Available(ctx context.Context, key Key, totalSeats int) (int, error)

	// TryReserve commits count seats if they fit under totalSeats. On failure nothing changes.
	TryReserve(ctx context.Context, key Key, totalSeats, count int) (Reservation, error)

	// Release returns count seats to the pool. The counter never drops below zero.
	Release(ctx context.Context, key Key, count int) error
}

// Seeder is implemented by ledgers whose counters are not stored with the
// bookings and can be lost on restart. Seed raises the counter for key to at
// least committed and never lowers it.
type Seeder interface {
	Seed(ctx context.Context, key Key, committed int) error
}

// Open builds the ledger selected by backend. db and rdb are only used by their own backends.
func Open(backend string, db database.PgxIface, rdb redis.Cmdable, log *zap.Logger) (Ledger, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		if db == nil {
			return nil, errors.New("postgres ledger requires a database connection")
		}
		return NewPostgres(db, log), nil
	case BackendRedis:
		if rdb == nil {
			return nil, errors.New("redis ledger requires a redis client")
		}
		return NewRedis(rdb, log), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", backend)
	}
}

func remaining(totalSeats, committed int) int {
	return max(totalSeats-committed, 0)
}
