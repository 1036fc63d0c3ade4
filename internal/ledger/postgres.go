package ledger

import (
	"context"
	"errors"
	"fmt"

	"railway-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Postgres stores counters in seat_inventory. The conditional upsert takes the
// row lock for its key, which serializes concurrent reservations per key.
type Postgres struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPostgres(db database.PgxIface, log *zap.Logger) *Postgres {
	return &Postgres{
		db:  db,
		log: log.With(zap.String("ledger", "postgres")),
	}
}

const reserveQuery = `
	INSERT INTO seat_inventory (train_id, journey_date, committed_seats, updated_at)
	VALUES ($1, $2::date, $3, NOW())
	ON CONFLICT (train_id, journey_date) DO UPDATE
	SET committed_seats = seat_inventory.committed_seats + EXCLUDED.committed_seats,
	    updated_at = NOW()
	WHERE seat_inventory.committed_seats + EXCLUDED.committed_seats <= $4
	RETURNING committed_seats
`

const committedQuery = `
	SELECT committed_seats FROM seat_inventory
	WHERE train_id = $1 AND journey_date = $2::date
`

const releaseQuery = `
	UPDATE seat_inventory
	SET committed_seats = GREATEST(committed_seats - $3, 0), updated_at = NOW()
	WHERE train_id = $1 AND journey_date = $2::date
`

func (p *Postgres) committed(ctx context.Context, key Key) (int, error) {
	var committed int
	err := p.db.QueryRow(ctx, committedQuery, key.TrainID, key.JourneyDate).Scan(&committed)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return committed, nil
}

func (p *Postgres) Available(ctx context.Context, key Key, totalSeats int) (int, error) {
	committed, err := p.committed(ctx, key)
	if err != nil {
		p.log.Error("Failed to read seat inventory", zap.Error(err), zap.String("key", key.String()))
		return 0, fmt.Errorf("read seat inventory %s: %w", key, err)
	}
	return remaining(totalSeats, committed), nil
}

func (p *Postgres) TryReserve(ctx context.Context, key Key, totalSeats, count int) (Reservation, error) {
	if count <= 0 {
		return Reservation{}, ErrInvalidCount
	}

	// the insert branch of the upsert is not guarded by the WHERE clause
	if count > totalSeats {
		available, err := p.Available(ctx, key, totalSeats)
		if err != nil {
			return Reservation{}, err
		}
		return Reservation{OK: false, Available: available}, nil
	}

	var committed int
	err := p.db.QueryRow(ctx, reserveQuery, key.TrainID, key.JourneyDate, count, totalSeats).Scan(&committed)
	if errors.Is(err, pgx.ErrNoRows) {
		available, err := p.Available(ctx, key, totalSeats)
		if err != nil {
			return Reservation{}, err
		}
		return Reservation{OK: false, Available: available}, nil
	}
	if err != nil {
		p.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("count", count),
		)
		return Reservation{}, fmt.Errorf("reserve %d seats on %s: %w", count, key, err)
	}

	return Reservation{OK: true, Available: remaining(totalSeats, committed)}, nil
}

func (p *Postgres) Release(ctx context.Context, key Key, count int) error {
	if count <= 0 {
		return ErrInvalidCount
	}

	if _, err := p.db.Exec(ctx, releaseQuery, key.TrainID, key.JourneyDate, count); err != nil {
		p.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("count", count),
		)
		return fmt.Errorf("release %d seats on %s: %w", count, key, err)
	}
	return nil
}
