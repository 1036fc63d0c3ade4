package response

import (
	"time"

	"railway-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PassengerResponse struct {
	Name       string        `json:"name"`
	Age        int           `json:"age"`
	Gender     entity.Gender `json:"gender"`
	SeatNumber string        `json:"seat_number"`
}

type BookingResponse struct {
	ID            string               `json:"id"`
	PNR           string               `json:"pnr"`
	UserID        string               `json:"user_id"`
	TrainID       string               `json:"train_id"`
	BookingDate   time.Time            `json:"booking_date"`
	JourneyDate   string               `json:"journey_date"`
	NumPassengers int                  `json:"num_passengers"`
	TotalFare     decimal.Decimal      `json:"total_fare"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	Passengers    []PassengerResponse  `json:"passengers"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Method        entity.PaymentMethod `json:"method"`
	Amount        decimal.Decimal      `json:"amount"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type AvailabilityResponse struct {
	TrainID     string `json:"train_id"`
	JourneyDate string `json:"journey_date"`
	TotalSeats  int    `json:"total_seats"`
	Available   int    `json:"available_seats"`
}

type CancelResponse struct {
	BookingID string               `json:"booking_id"`
	Status    entity.BookingStatus `json:"status"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	passengers := make([]PassengerResponse, len(booking.Passengers))
	for i, p := range booking.Passengers {
		passengers[i] = PassengerResponse{
			Name:       p.Name,
			Age:        p.Age,
			Gender:     p.Gender,
			SeatNumber: p.SeatNumber,
		}
	}

	return BookingResponse{
		ID:            booking.ID.String(),
		PNR:           booking.PNR,
		UserID:        booking.UserID.String(),
		TrainID:       booking.TrainID.String(),
		BookingDate:   booking.BookingDate,
		JourneyDate:   booking.JourneyDate.Format(entity.DateLayout),
		NumPassengers: booking.NumPassengers,
		TotalFare:     booking.TotalFare,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		Passengers:    passengers,
	}
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		BookingID:     payment.BookingID.String(),
		Method:        payment.Method,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
	}
}

func AvailabilityToResponse(a *entity.SeatAvailability) AvailabilityResponse {
	return AvailabilityResponse{
		TrainID:     a.TrainID.String(),
		JourneyDate: a.JourneyDate.Format(entity.DateLayout),
		TotalSeats:  a.TotalSeats,
		Available:   a.Available,
	}
}
