package usecase

import (
	"errors"
	"fmt"

	"railway-booking/internal/data/entity"
	"railway-booking/pkg/utils"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrTrainNotFound    = errors.New("train not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrForbidden        = errors.New("booking belongs to another user")
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")

	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired session")
)

// InsufficientSeatsError means the ledger could not fit the request. Nothing was committed.
type InsufficientSeatsError struct {
	Requested int
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: requested %d, available %d", e.Requested, e.Available)
}

// InvalidRequestError carries per-field messages keyed by the JSON field path
type InvalidRequestError struct {
	Fields map[string]string
}

func (e *InvalidRequestError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func invalidField(field, message string) *InvalidRequestError {
	return &InvalidRequestError{Fields: map[string]string{field: message}}
}

// PersistenceError wraps a storage or ledger failure. The operation may be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Retryable() bool {
	return true
}

type InvalidTransitionError struct {
	Action        string
	Status        entity.BookingStatus
	PaymentStatus entity.PaymentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking with status %s and payment %s", e.Action, e.Status, e.PaymentStatus)
}
