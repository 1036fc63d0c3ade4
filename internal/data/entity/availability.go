package entity

import (
	"time"

	"github.com/google/uuid"
)

type SeatAvailability struct {
	TrainID     uuid.UUID
	JourneyDate time.Time
	TotalSeats  int
	Available   int
}

// CommittedSeats is the number of seats held by bookings for one train and date
type CommittedSeats struct {
	TrainID     uuid.UUID
	JourneyDate time.Time
	Seats       int
}

// SeatHold records the seats a confirmed booking took from the ledger.
// The row is deleted when those seats are handed back.
type SeatHold struct {
	BookingID   uuid.UUID
	TrainID     uuid.UUID
	JourneyDate time.Time
	Seats       int
}
