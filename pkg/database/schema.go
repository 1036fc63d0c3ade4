package database

import (
	"context"
	"fmt"
)

// statements run in order; every one is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		full_name VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		phone VARCHAR(20),
		role VARCHAR(20) NOT NULL DEFAULT 'customer',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token UUID NOT NULL UNIQUE,
		user_agent TEXT,
		ip_address VARCHAR(64),
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS trains (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		number VARCHAR(20) NOT NULL UNIQUE,
		source VARCHAR(100) NOT NULL,
		destination VARCHAR(100) NOT NULL,
		departure_time VARCHAR(5) NOT NULL,
		arrival_time VARCHAR(5) NOT NULL,
		total_seats INT NOT NULL CHECK (total_seats > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		pnr VARCHAR(32) NOT NULL UNIQUE,
		user_id UUID NOT NULL REFERENCES users(id),
		train_id UUID NOT NULL REFERENCES trains(id),
		booking_date TIMESTAMPTZ NOT NULL,
		journey_date DATE NOT NULL,
		num_passengers INT NOT NULL CHECK (num_passengers > 0),
		total_fare NUMERIC(12,2) NOT NULL CHECK (total_fare >= 0),
		status VARCHAR(20) NOT NULL,
		payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_date ON bookings (user_id, booking_date DESC)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id UUID PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		position INT NOT NULL,
		name VARCHAR(100) NOT NULL,
		age INT NOT NULL CHECK (age >= 0),
		gender VARCHAR(10) NOT NULL,
		seat_number VARCHAR(10) NOT NULL,
		UNIQUE (booking_id, seat_number)
	)`,
	`CREATE TABLE IF NOT EXISTS seat_holds (
		booking_id UUID PRIMARY KEY REFERENCES bookings(id) ON DELETE CASCADE,
		train_id UUID NOT NULL,
		journey_date DATE NOT NULL,
		seats INT NOT NULL CHECK (seats > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seat_holds_key ON seat_holds (train_id, journey_date)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings(id),
		method VARCHAR(20) NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		transaction_id VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS seat_inventory (
		train_id UUID NOT NULL REFERENCES trains(id),
		journey_date DATE NOT NULL,
		committed_seats INT NOT NULL DEFAULT 0 CHECK (committed_seats >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (train_id, journey_date)
	)`,
}

// Migrate creates the tables the service needs when they do not exist yet
func Migrate(ctx context.Context, db PgxIface) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
