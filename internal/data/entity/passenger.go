package entity

import "github.com/google/uuid"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Passenger is owned by its booking and removed with it
type Passenger struct {
	ID         uuid.UUID `db:"id"`
	BookingID  uuid.UUID `db:"booking_id"`
	Position   int       `db:"position"`
	Name       string    `db:"name"`
	Age        int       `db:"age"`
	Gender     Gender    `db:"gender"`
	SeatNumber string    `db:"seat_number"`
}
