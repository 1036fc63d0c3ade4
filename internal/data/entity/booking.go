package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of a journey date
const DateLayout = "2006-01-02"

type BookingStatus string

const (
	// BookingStatusPending only exists while a booking is being created and is never persisted
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaiting   BookingStatus = "waiting"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusWaiting},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusWaiting:   {BookingStatusCancelled},
	BookingStatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled
}

// HoldsInventory reports whether a booking in this status owns committed seats in the ledger
func (s BookingStatus) HoldsInventory() bool {
	return s == BookingStatusConfirmed
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return s == PaymentStatusPending && target == PaymentStatusPaid
}

type Booking struct {
	BaseNoDelete
	PNR           string          `db:"pnr"`
	UserID        uuid.UUID       `db:"user_id"`
	TrainID       uuid.UUID       `db:"train_id"`
	BookingDate   time.Time       `db:"booking_date"`
	JourneyDate   time.Time       `db:"journey_date"`
	NumPassengers int             `db:"num_passengers"`
	TotalFare     decimal.Decimal `db:"total_fare"`
	Status        BookingStatus   `db:"status"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
	Passengers    []*Passenger
}

// CanPay reports whether a payment may be recorded against the booking
func (b *Booking) CanPay() bool {
	return b.Status == BookingStatusConfirmed && b.PaymentStatus.CanTransitionTo(PaymentStatusPaid)
}
