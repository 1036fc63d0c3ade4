package request

import "github.com/shopspring/decimal"

type CreateBookingRequest struct {
	TrainID     string             `json:"train_id" validate:"required,uuid"`
	JourneyDate string             `json:"journey_date" validate:"required,datetime=2006-01-02"`
	Passengers  []PassengerRequest `json:"passengers" validate:"required,min=1,dive"`
}

type PassengerRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Age    *int   `json:"age" validate:"required,min=0,max=150"`
	Gender string `json:"gender" validate:"required,oneof=male female other"`
}

type ProcessPaymentRequest struct {
	Method        string          `json:"method" validate:"required,oneof=credit_card debit_card net_banking upi"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID *string         `json:"transaction_id,omitempty" validate:"omitempty,max=100"`
}
