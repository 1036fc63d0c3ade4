package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"railway-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bookingColumns = []string{
	"id", "pnr", "user_id", "train_id", "booking_date", "journey_date", "num_passengers",
	"total_fare", "status", "payment_status", "created_at", "updated_at",
}

var passengerColumns = []string{"id", "booking_id", "position", "name", "age", "gender", "seat_number"}

func setupBookingRepo(t *testing.T) (BookingRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewBookingRepository(mock, zap.NewNop()), mock
}

func sampleBooking() *entity.Booking {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	id := uuid.New()
	return &entity.Booking{
		BaseNoDelete:  entity.BaseNoDelete{ID: id, CreatedAt: now, UpdatedAt: now},
		PNR:           "PNR-20250401-1A2B3C4D",
		UserID:        uuid.New(),
		TrainID:       uuid.New(),
		BookingDate:   now,
		JourneyDate:   time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		NumPassengers: 2,
		TotalFare:     decimal.NewFromInt(100),
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.PaymentStatusPending,
		Passengers: []*entity.Passenger{
			{ID: uuid.New(), BookingID: id, Position: 1, Name: "Asha", Age: 34, Gender: entity.GenderFemale, SeatNumber: "A1"},
			{ID: uuid.New(), BookingID: id, Position: 2, Name: "Ravi", Age: 36, Gender: entity.GenderMale, SeatNumber: "A2"},
		},
	}
}

func bookingRow(rows *pgxmock.Rows, b *entity.Booking) *pgxmock.Rows {
	return rows.AddRow(b.ID, b.PNR, b.UserID, b.TrainID, b.BookingDate, b.JourneyDate, b.NumPassengers,
		b.TotalFare, b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt)
}

func TestBookingRepository_Create(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	b := sampleBooking()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(b.ID, b.PNR, b.UserID, b.TrainID, b.BookingDate, b.JourneyDate, b.NumPassengers,
			b.TotalFare, b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, p := range b.Passengers {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO passengers")).
			WithArgs(p.ID, b.ID, p.Position, p.Name, p.Age, p.Gender, p.SeatNumber).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seat_holds")).
		WithArgs(b.ID, b.TrainID, b.JourneyDate, b.NumPassengers).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create_WaitingHoldsNoSeats(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	b := sampleBooking()
	b.Status = entity.BookingStatusWaiting
	b.Passengers = b.Passengers[:1]
	b.NumPassengers = 1
	p := b.Passengers[0]

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(b.ID, b.PNR, b.UserID, b.TrainID, b.BookingDate, b.JourneyDate, b.NumPassengers,
			b.TotalFare, b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO passengers")).
		WithArgs(p.ID, b.ID, p.Position, p.Name, p.Age, p.Gender, p.SeatNumber).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create_RollsBackOnPassengerFailure(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	b := sampleBooking()

	first, second := b.Passengers[0], b.Passengers[1]

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(b.ID, b.PNR, b.UserID, b.TrainID, b.BookingDate, b.JourneyDate, b.NumPassengers,
			b.TotalFare, b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO passengers")).
		WithArgs(first.ID, b.ID, first.Position, first.Name, first.Age, first.Gender, first.SeatNumber).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO passengers")).
		WithArgs(second.ID, b.ID, second.Position, second.Name, second.Age, second.Gender, second.SeatNumber).
		WillReturnError(errors.New("duplicate seat"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create passenger 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	booking, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByID_LoadsPassengers(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	b := sampleBooking()

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings")).
		WithArgs(b.ID).
		WillReturnRows(bookingRow(pgxmock.NewRows(bookingColumns), b))

	passengers := pgxmock.NewRows(passengerColumns)
	for _, p := range b.Passengers {
		passengers.AddRow(p.ID, p.BookingID, p.Position, p.Name, p.Age, p.Gender, p.SeatNumber)
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM passengers")).
		WithArgs([]uuid.UUID{b.ID}).
		WillReturnRows(passengers)

	got, err := repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.PNR, got.PNR)
	assert.True(t, b.TotalFare.Equal(got.TotalFare))
	require.Len(t, got.Passengers, 2)
	assert.Equal(t, "A1", got.Passengers[0].SeatNumber)
	assert.Equal(t, "A2", got.Passengers[1].SeatNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByUserID(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	newer := sampleBooking()
	older := sampleBooking()
	older.UserID = newer.UserID
	older.BookingDate = newer.BookingDate.Add(-time.Hour)

	rows := pgxmock.NewRows(bookingColumns)
	bookingRow(rows, newer)
	bookingRow(rows, older)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY booking_date DESC")).
		WithArgs(newer.UserID, 10, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM passengers")).
		WithArgs([]uuid.UUID{newer.ID, older.ID}).
		WillReturnRows(pgxmock.NewRows(passengerColumns).
			AddRow(older.Passengers[0].ID, older.ID, 1, "Asha", 34, entity.GenderFemale, "A1"))

	got, err := repo.FindByUserID(context.Background(), newer.UserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Empty(t, got[0].Passengers)
	assert.Len(t, got[1].Passengers, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_TransitionStatus(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status")).
		WithArgs(id, entity.BookingStatusConfirmed, entity.BookingStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status")).
		WithArgs(id, entity.BookingStatusConfirmed, entity.BookingStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.TransitionStatus(context.Background(), id, entity.BookingStatusConfirmed, entity.BookingStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(context.Background(), id, entity.BookingStatusConfirmed, entity.BookingStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_MarkPaid(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	txn := "TXN-42"
	payment := &entity.Payment{
		BaseSimple:    entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		BookingID:     uuid.New(),
		Method:        entity.PaymentMethodUPI,
		Amount:        decimal.NewFromInt(100),
		TransactionID: &txn,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET payment_status")).
		WithArgs(payment.BookingID, entity.PaymentStatusPaid, entity.BookingStatusConfirmed, entity.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(payment.ID, payment.BookingID, payment.Method, payment.Amount, payment.TransactionID, payment.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ok, err := repo.MarkPaid(context.Background(), payment)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_MarkPaid_AlreadyPaid(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	payment := &entity.Payment{BookingID: uuid.New(), Method: entity.PaymentMethodCreditCard}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET payment_status")).
		WithArgs(payment.BookingID, entity.PaymentStatusPaid, entity.BookingStatusConfirmed, entity.PaymentStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	ok, err := repo.MarkPaid(context.Background(), payment)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CommittedByKey(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	trainID := uuid.New()
	first := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	second := time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SUM(seats)::int")).
		WillReturnRows(pgxmock.NewRows([]string{"train_id", "journey_date", "sum"}).
			AddRow(trainID, first, 5).
			AddRow(trainID, second, 2))

	counts, err := repo.CommittedByKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.CommittedSeats{
		{TrainID: trainID, JourneyDate: first, Seats: 5},
		{TrainID: trainID, JourneyDate: second, Seats: 2},
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ReleaseHold(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	id := uuid.New()

	query := regexp.QuoteMeta("DELETE FROM seat_holds WHERE booking_id = $1 RETURNING seats")
	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"seats"}).AddRow(2))
	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	seats, err := repo.ReleaseHold(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, seats)

	seats, err = repo.ReleaseHold(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_RestoreHold(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	hold := &entity.SeatHold{
		BookingID:   uuid.New(),
		TrainID:     uuid.New(),
		JourneyDate: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Seats:       2,
	}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (booking_id) DO NOTHING")).
		WithArgs(hold.BookingID, hold.TrainID, hold.JourneyDate, hold.Seats).
		WillReturnError(errors.New("connection reset"))

	err := repo.RestoreHold(context.Background(), hold)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore seat hold")
	assert.NoError(t, mock.ExpectationsWereMet())
}
