package repository

import (
	"context"
	"errors"
	"fmt"

	"railway-booking/internal/data/entity"
	"railway-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// Create stores the booking and its passengers in one transaction
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// CommittedByKey sums the seat holds per train and journey date
	CommittedByKey(ctx context.Context) ([]entity.CommittedSeats, error)

	// ReleaseHold deletes the booking's seat hold and returns how many seats it held.
	// Only one caller gets a non-zero count for a given hold.
	ReleaseHold(ctx context.Context, bookingID uuid.UUID) (int, error)
	// RestoreHold puts back a hold whose seats could not be handed to the ledger
	RestoreHold(ctx context.Context, hold *entity.SeatHold) error

	// TransitionStatus moves the booking from one status to another only if it is
	// still in the expected status. It reports false when another writer got there first.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (bool, error)

	// MarkPaid flips a confirmed booking's payment status to paid and records the payment.
	// It reports false when the booking is no longer confirmed and pending.
	MarkPaid(ctx context.Context, payment *entity.Payment) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const selectBooking = `
	SELECT id, pnr, user_id, train_id, booking_date, journey_date, num_passengers,
	       total_fare, status, payment_status, created_at, updated_at
	FROM bookings
`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin booking transaction", zap.Error(err))
		return fmt.Errorf("begin create booking %s: %w", booking.PNR, err)
	}

	if err := r.insert(ctx, tx, booking); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.log.Warn("Failed to roll back booking transaction", zap.Error(rbErr))
		}
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("pnr", booking.PNR),
			zap.String("user_id", booking.UserID.String()),
		)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit booking",
			zap.Error(err),
			zap.String("pnr", booking.PNR),
		)
		return fmt.Errorf("commit booking %s: %w", booking.PNR, err)
	}

	return nil
}

func (r *bookingRepository) insert(ctx context.Context, tx pgx.Tx, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, pnr, user_id, train_id, booking_date, journey_date,
		                      num_passengers, total_fare, status, payment_status,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		booking.ID,
		booking.PNR,
		booking.UserID,
		booking.TrainID,
		booking.BookingDate,
		booking.JourneyDate,
		booking.NumPassengers,
		booking.TotalFare,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create booking %s: %w", booking.PNR, err)
	}

	passengerQuery := `
		INSERT INTO passengers (id, booking_id, position, name, age, gender, seat_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range booking.Passengers {
		_, err := tx.Exec(ctx, passengerQuery,
			p.ID,
			booking.ID,
			p.Position,
			p.Name,
			p.Age,
			p.Gender,
			p.SeatNumber,
		)
		if err != nil {
			return fmt.Errorf("create passenger %d for booking %s: %w", p.Position, booking.PNR, err)
		}
	}

	if !booking.Status.HoldsInventory() {
		return nil
	}

	holdQuery := `
		INSERT INTO seat_holds (booking_id, train_id, journey_date, seats)
		VALUES ($1, $2, $3, $4)
	`

	_, err = tx.Exec(ctx, holdQuery, booking.ID, booking.TrainID, booking.JourneyDate, booking.NumPassengers)
	if err != nil {
		return fmt.Errorf("create seat hold for booking %s: %w", booking.PNR, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.QueryRow(ctx, selectBooking+`WHERE id = $1`, id).Scan(
		&booking.ID,
		&booking.PNR,
		&booking.UserID,
		&booking.TrainID,
		&booking.BookingDate,
		&booking.JourneyDate,
		&booking.NumPassengers,
		&booking.TotalFare,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	if err := r.attachPassengers(ctx, []*entity.Booking{&booking}); err != nil {
		return nil, err
	}

	return &booking, nil
}

// FindByUserID returns the newest bookings first
func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := selectBooking + `
		WHERE user_id = $1
		ORDER BY booking_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.PNR,
			&booking.UserID,
			&booking.TrainID,
			&booking.BookingDate,
			&booking.JourneyDate,
			&booking.NumPassengers,
			&booking.TotalFare,
			&booking.Status,
			&booking.PaymentStatus,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	if err := r.attachPassengers(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) CommittedByKey(ctx context.Context) ([]entity.CommittedSeats, error) {
	query := `
		SELECT train_id, journey_date, SUM(seats)::int
		FROM seat_holds
		GROUP BY train_id, journey_date
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to sum committed seats", zap.Error(err))
		return nil, fmt.Errorf("sum committed seats: %w", err)
	}
	defer rows.Close()

	var counts []entity.CommittedSeats
	for rows.Next() {
		var c entity.CommittedSeats
		if err := rows.Scan(&c.TrainID, &c.JourneyDate, &c.Seats); err != nil {
			return nil, fmt.Errorf("scan committed seats: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate committed seats: %w", err)
	}

	return counts, nil
}

func (r *bookingRepository) ReleaseHold(ctx context.Context, bookingID uuid.UUID) (int, error) {
	query := `DELETE FROM seat_holds WHERE booking_id = $1 RETURNING seats`

	var seats int
	err := r.db.QueryRow(ctx, query, bookingID).Scan(&seats)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		r.log.Error("Failed to release seat hold",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("release seat hold for booking %s: %w", bookingID.String(), err)
	}

	return seats, nil
}

func (r *bookingRepository) RestoreHold(ctx context.Context, hold *entity.SeatHold) error {
	query := `
		INSERT INTO seat_holds (booking_id, train_id, journey_date, seats)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, hold.BookingID, hold.TrainID, hold.JourneyDate, hold.Seats)
	if err != nil {
		r.log.Error("Failed to restore seat hold",
			zap.Error(err),
			zap.String("booking_id", hold.BookingID.String()),
		)
		return fmt.Errorf("restore seat hold for booking %s: %w", hold.BookingID.String(), err)
	}

	return nil
}

func (r *bookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update booking %s status %s to %s: %w", id.String(), from, to, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, payment *entity.Payment) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin payment transaction", zap.Error(err))
		return false, fmt.Errorf("begin payment for booking %s: %w", payment.BookingID.String(), err)
	}

	updated, err := r.markPaid(ctx, tx, payment)
	if err != nil || !updated {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.log.Warn("Failed to roll back payment transaction", zap.Error(rbErr))
		}
		if err != nil {
			r.log.Error("Failed to record payment",
				zap.Error(err),
				zap.String("booking_id", payment.BookingID.String()),
			)
		}
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return false, fmt.Errorf("commit payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return true, nil
}

func (r *bookingRepository) markPaid(ctx context.Context, tx pgx.Tx, payment *entity.Payment) (bool, error) {
	update := `
		UPDATE bookings
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND payment_status = $4
	`

	result, err := tx.Exec(ctx, update,
		payment.BookingID,
		entity.PaymentStatusPaid,
		entity.BookingStatusConfirmed,
		entity.PaymentStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("update payment status of booking %s: %w", payment.BookingID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	insert := `
		INSERT INTO payments (id, booking_id, method, amount, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.Exec(ctx, insert,
		payment.ID,
		payment.BookingID,
		payment.Method,
		payment.Amount,
		payment.TransactionID,
		payment.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return true, nil
}

// attachPassengers loads passengers for all given bookings with a single query
func (r *bookingRepository) attachPassengers(ctx context.Context, bookings []*entity.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(bookings))
	byID := make(map[uuid.UUID]*entity.Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	query := `
		SELECT id, booking_id, position, name, age, gender, seat_number
		FROM passengers
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, position
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to load passengers", zap.Error(err), zap.Int("bookings", len(ids)))
		return fmt.Errorf("find passengers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.Passenger
		if err := rows.Scan(
			&p.ID,
			&p.BookingID,
			&p.Position,
			&p.Name,
			&p.Age,
			&p.Gender,
			&p.SeatNumber,
		); err != nil {
			r.log.Error("Failed to scan passenger row", zap.Error(err))
			return fmt.Errorf("scan passenger row: %w", err)
		}
		if b, ok := byID[p.BookingID]; ok {
			b.Passengers = append(b.Passengers, &p)
		}
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return fmt.Errorf("iterate passenger rows: %w", err)
	}

	return nil
}
