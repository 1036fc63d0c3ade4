package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"railway-booking/internal/data/entity"
	"railway-booking/internal/data/repository"
	"railway-booking/internal/dto/request"
	"railway-booking/internal/fare"
	"railway-booking/internal/ledger"
	"railway-booking/pkg/monitoring"
	"railway-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const waitlistLabelPrefix = "WL"

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*entity.Booking, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	RecordPayment(ctx context.Context, bookingID uuid.UUID, req *request.ProcessPaymentRequest) (*entity.Payment, error)
	GetAvailableSeats(ctx context.Context, trainID uuid.UUID, journeyDate string) (*entity.SeatAvailability, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) ([]*entity.Booking, int64, error)

	// RestoreSeatCounts rebuilds counters of a ledger that does not live with the
	// bookings. It must finish before the first booking is accepted.
	RestoreSeatCounts(ctx context.Context) (int, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	trains   repository.TrainRepository
	seats    ledger.Ledger
	fares    fare.Calculator
	config   utils.BookingConfig
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	seats ledger.Ledger,
	fares fare.Calculator,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		bookings: repo.Booking,
		trains:   repo.Train,
		seats:    seats,
		fares:    fares,
		config:   config.Booking,
		now:      time.Now,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*entity.Booking, error) {
	if req == nil {
		return nil, invalidField("body", "This field is required")
	}
	normalizePassengers(req)

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, &InvalidRequestError{Fields: errs}
	}

	trainID, err := uuid.Parse(req.TrainID)
	if err != nil {
		return nil, invalidField("train_id", "Must be a valid UUID")
	}
	journeyDate, err := s.parseJourneyDate(req.JourneyDate)
	if err != nil {
		return nil, err
	}

	train, err := s.trains.FindByID(ctx, trainID)
	if err != nil {
		return nil, &PersistenceError{Op: "load train", Err: err}
	}
	if train == nil {
		return nil, ErrTrainNotFound
	}

	key := ledger.NewKey(train.ID, journeyDate)
	count := len(req.Passengers)

	started := time.Now()
	reservation, err := s.seats.TryReserve(ctx, key, train.TotalSeats, count)
	if err != nil {
		monitoring.TrackReservation(monitoring.ReservationError, started)
		s.log.Error("Seat reservation failed",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("count", count),
		)
		return nil, &PersistenceError{Op: "reserve seats", Err: err}
	}

	status := entity.BookingStatusConfirmed
	if reservation.OK {
		monitoring.TrackReservation(monitoring.ReservationReserved, started)
	} else {
		monitoring.TrackReservation(monitoring.ReservationInsufficient, started)
		if !s.config.WaitlistEnabled {
			s.log.Info("Booking rejected, not enough seats",
				zap.String("key", key.String()),
				zap.Int("requested", count),
				zap.Int("available", reservation.Available),
			)
			monitoring.TrackBooking("rejected")
			return nil, &InsufficientSeatsError{Requested: count, Available: reservation.Available}
		}
		status = entity.BookingStatusWaiting
	}

	booking := s.newBooking(userID, train, journeyDate, req.Passengers, status)

	if err := s.bookings.Create(ctx, booking); err != nil {
		if status.HoldsInventory() {
			s.compensate(ctx, key, count, booking.PNR)
		}
		return nil, &PersistenceError{Op: "save booking", Err: err}
	}

	monitoring.TrackBooking(string(booking.Status))
	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("pnr", booking.PNR),
		zap.String("user_id", userID.String()),
		zap.String("key", key.String()),
		zap.Int("passengers", count),
		zap.String("status", string(booking.Status)),
		zap.String("total_fare", booking.TotalFare.StringFixed(2)),
	)

	return booking, nil
}

// compensate hands back seats reserved for a booking that was never stored.
// It must run even if the caller has already gone away.
func (s *bookingService) compensate(ctx context.Context, key ledger.Key, count int, pnr string) {
	if err := s.seats.Release(context.WithoutCancel(ctx), key, count); err != nil {
		monitoring.TrackRelease(monitoring.ReleaseCompensation, false)
		s.log.Error("Compensating seat release failed, inventory is over-counted",
			zap.Error(err),
			zap.String("key", key.String()),
			zap.Int("count", count),
			zap.String("pnr", pnr),
		)
		return
	}
	monitoring.TrackRelease(monitoring.ReleaseCompensation, true)
	s.log.Warn("Released seats after failed booking save",
		zap.String("key", key.String()),
		zap.Int("count", count),
		zap.String("pnr", pnr),
	)
}

func (s *bookingService) newBooking(
	userID uuid.UUID,
	train *entity.Train,
	journeyDate time.Time,
	passengers []request.PassengerRequest,
	status entity.BookingStatus,
) *entity.Booking {
	now := s.now()
	id := uuid.New()

	prefix := s.config.SeatLabelPrefix
	if status == entity.BookingStatusWaiting {
		prefix = waitlistLabelPrefix
	}

	ages := make([]int, len(passengers))
	list := make([]*entity.Passenger, len(passengers))
	for i, p := range passengers {
		ages[i] = *p.Age
		list[i] = &entity.Passenger{
			ID:         uuid.New(),
			BookingID:  id,
			Position:   i + 1,
			Name:       p.Name,
			Age:        *p.Age,
			Gender:     entity.Gender(p.Gender),
			SeatNumber: fmt.Sprintf("%s%d", prefix, i+1),
		}
	}

	return &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PNR:           utils.GeneratePNR(now),
		UserID:        userID,
		TrainID:       train.ID,
		BookingDate:   now,
		JourneyDate:   journeyDate,
		NumPassengers: len(passengers),
		TotalFare:     s.fares.Fare(fare.Quote{Train: train, JourneyDate: journeyDate, Ages: ages}),
		Status:        status,
		PaymentStatus: entity.PaymentStatusPending,
		Passengers:    list,
	}
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return false, &PersistenceError{Op: "load booking", Err: err}
	}
	if booking == nil {
		return false, ErrBookingNotFound
	}

	if booking.Status != entity.BookingStatusCancelled {
		if !booking.Status.CanTransitionTo(entity.BookingStatusCancelled) {
			return false, &InvalidTransitionError{Action: "cancel", Status: booking.Status, PaymentStatus: booking.PaymentStatus}
		}

		moved, err := s.bookings.TransitionStatus(ctx, booking.ID, booking.Status, entity.BookingStatusCancelled)
		if err != nil {
			return false, &PersistenceError{Op: "cancel booking", Err: err}
		}
		if !moved {
			if err := s.resolveLostCancel(ctx, booking.ID); err != nil {
				return false, err
			}
		} else {
			monitoring.TrackBooking(string(entity.BookingStatusCancelled))
			s.log.Info("Booking cancelled",
				zap.String("booking_id", booking.ID.String()),
				zap.String("pnr", booking.PNR),
				zap.String("previous_status", string(booking.Status)),
			)
		}
	}

	// runs on every cancel so a hold left by an earlier failed release is retried
	if err := s.releaseHold(ctx, booking); err != nil {
		return false, err
	}

	return true, nil
}

// releaseHold hands a cancelled booking's seats back to the ledger. Deleting the
// hold row picks a single releaser among concurrent cancels. When the ledger call
// fails the hold is put back and the booking stays cancelled. A release that errors
// after the backend applied it is still retried, which frees those seats twice;
// the counter never drops below zero.
func (s *bookingService) releaseHold(ctx context.Context, booking *entity.Booking) error {
	detached := context.WithoutCancel(ctx)

	seats, err := s.bookings.ReleaseHold(detached, booking.ID)
	if err != nil {
		return &PersistenceError{Op: "claim seat hold", Err: err}
	}
	if seats == 0 {
		return nil
	}

	key := ledger.NewKey(booking.TrainID, booking.JourneyDate)
	err = s.seats.Release(detached, key, seats)
	if err == nil {
		monitoring.TrackRelease(monitoring.ReleaseCancel, true)
		return nil
	}
	monitoring.TrackRelease(monitoring.ReleaseCancel, false)

	hold := &entity.SeatHold{
		BookingID:   booking.ID,
		TrainID:     booking.TrainID,
		JourneyDate: booking.JourneyDate,
		Seats:       seats,
	}
	if restoreErr := s.bookings.RestoreHold(detached, hold); restoreErr != nil {
		s.log.Error("Failed to restore seat hold after release error",
			zap.Error(restoreErr),
			zap.NamedError("release_error", err),
			zap.String("booking_id", booking.ID.String()),
		)
		return &PersistenceError{Op: "release seats", Err: errors.Join(err, restoreErr)}
	}

	s.log.Error("Seat release failed, hold kept for retry",
		zap.Error(err),
		zap.String("booking_id", booking.ID.String()),
		zap.String("key", key.String()),
	)
	return &PersistenceError{Op: "release seats", Err: err}
}

// resolveLostCancel accepts losing the status race only to another cancel
func (s *bookingService) resolveLostCancel(ctx context.Context, bookingID uuid.UUID) error {
	current, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return &PersistenceError{Op: "reload booking", Err: err}
	}
	if current == nil {
		return ErrBookingNotFound
	}
	if current.Status == entity.BookingStatusCancelled {
		return nil
	}
	return &PersistenceError{Op: "cancel booking", Err: ErrConcurrentUpdate}
}

func (s *bookingService) RecordPayment(ctx context.Context, bookingID uuid.UUID, req *request.ProcessPaymentRequest) (*entity.Payment, error) {
	if req == nil {
		return nil, invalidField("body", "This field is required")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Record payment validation failed", zap.Any("errors", errs))
		return nil, &InvalidRequestError{Fields: errs}
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if !booking.CanPay() {
		return nil, &InvalidTransitionError{Action: "pay", Status: booking.Status, PaymentStatus: booking.PaymentStatus}
	}
	if !req.Amount.Equal(booking.TotalFare) {
		return nil, invalidField("amount", "Must equal booking total "+booking.TotalFare.StringFixed(2))
	}

	payment := &entity.Payment{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: s.now(),
		},
		BookingID:     booking.ID,
		Method:        entity.PaymentMethod(req.Method),
		Amount:        booking.TotalFare,
		TransactionID: req.TransactionID,
	}

	recorded, err := s.bookings.MarkPaid(ctx, payment)
	if err != nil {
		return nil, &PersistenceError{Op: "record payment", Err: err}
	}
	if !recorded {
		current, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return nil, &PersistenceError{Op: "reload booking", Err: err}
		}
		if current == nil {
			return nil, ErrBookingNotFound
		}
		return nil, &InvalidTransitionError{Action: "pay", Status: current.Status, PaymentStatus: current.PaymentStatus}
	}

	s.log.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("method", req.Method),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)

	return payment, nil
}

func (s *bookingService) GetAvailableSeats(ctx context.Context, trainID uuid.UUID, journeyDate string) (*entity.SeatAvailability, error) {
	date, err := time.Parse(entity.DateLayout, journeyDate)
	if err != nil {
		return nil, invalidField("date", "Must be a date in "+entity.DateLayout+" format")
	}

	train, err := s.trains.FindByID(ctx, trainID)
	if err != nil {
		return nil, &PersistenceError{Op: "load train", Err: err}
	}
	if train == nil {
		return nil, ErrTrainNotFound
	}

	available, err := s.seats.Available(ctx, ledger.NewKey(train.ID, date), train.TotalSeats)
	if err != nil {
		return nil, &PersistenceError{Op: "read availability", Err: err}
	}

	return &entity.SeatAvailability{
		TrainID:     train.ID,
		JourneyDate: date,
		TotalSeats:  train.TotalSeats,
		Available:   available,
	}, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) ([]*entity.Booking, int64, error) {
	bookings, err := s.bookings.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, 0, &PersistenceError{Op: "list bookings", Err: err}
	}

	total, err := s.bookings.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, 0, &PersistenceError{Op: "count bookings", Err: err}
	}

	return bookings, total, nil
}

// parseJourneyDate rejects dates before today in the server's local calendar
func (s *bookingService) parseJourneyDate(value string) (time.Time, error) {
	date, err := time.Parse(entity.DateLayout, value)
	if err != nil {
		return time.Time{}, invalidField("journey_date", "Must be a date in "+entity.DateLayout+" format")
	}

	if date.Before(s.today()) {
		return time.Time{}, invalidField("journey_date", "Journey date must not be in the past")
	}

	return date, nil
}

func (s *bookingService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *bookingService) RestoreSeatCounts(ctx context.Context) (int, error) {
	seeder, ok := s.seats.(ledger.Seeder)
	if !ok {
		return 0, nil
	}

	counts, err := s.bookings.CommittedByKey(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "load committed seats", Err: err}
	}

	today := s.today()
	restored := 0
	for _, c := range counts {
		if c.JourneyDate.Before(today) {
			continue
		}
		key := ledger.NewKey(c.TrainID, c.JourneyDate)
		if err := seeder.Seed(ctx, key, c.Seats); err != nil {
			return restored, &PersistenceError{Op: "seed seat ledger", Err: err}
		}
		restored++
	}

	s.log.Info("Seat ledger restored from seat holds", zap.Int("keys", restored))
	return restored, nil
}

func normalizePassengers(req *request.CreateBookingRequest) {
	for i := range req.Passengers {
		req.Passengers[i].Name = strings.TrimSpace(req.Passengers[i].Name)
		req.Passengers[i].Gender = strings.ToLower(strings.TrimSpace(req.Passengers[i].Gender))
	}
}
