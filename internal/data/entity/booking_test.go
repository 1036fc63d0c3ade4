package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusWaiting, true},
		{BookingStatusPending, BookingStatusCancelled, false},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusWaiting, false},
		{BookingStatusWaiting, BookingStatusCancelled, true},
		{BookingStatusWaiting, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookingStatus_Flags(t *testing.T) {
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatusConfirmed.IsTerminal())

	assert.True(t, BookingStatusConfirmed.HoldsInventory())
	assert.False(t, BookingStatusWaiting.HoldsInventory())
	assert.False(t, BookingStatusCancelled.HoldsInventory())

	assert.False(t, BookingStatus("expired").IsValid())
}

func TestBooking_CanPay(t *testing.T) {
	b := &Booking{Status: BookingStatusConfirmed, PaymentStatus: PaymentStatusPending}
	assert.True(t, b.CanPay())

	b.PaymentStatus = PaymentStatusPaid
	assert.False(t, b.CanPay())

	b = &Booking{Status: BookingStatusWaiting, PaymentStatus: PaymentStatusPending}
	assert.False(t, b.CanPay())

	b = &Booking{Status: BookingStatusCancelled, PaymentStatus: PaymentStatusPending}
	assert.False(t, b.CanPay())
}
