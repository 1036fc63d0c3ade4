package adaptor

import (
	"railway-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Train   *TrainHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Train:   NewTrainHandler(service.Train, service.Booking, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}
