package usecase

import (
	"railway-booking/internal/data/repository"
	"railway-booking/internal/fare"
	"railway-booking/internal/ledger"
	"railway-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Train   TrainService
	Booking BookingService
}

func NewService(
	repo *repository.Repository,
	seats ledger.Ledger,
	fares fare.Calculator,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		User:    NewUserService(repo.User, repo.Session, log),
		Train:   NewTrainService(repo.Train, log),
		Booking: NewBookingService(repo, seats, fares, config, log),
	}
}
