package usecase

import (
	"context"
	"strings"
	"time"

	"railway-booking/internal/data/entity"
	"railway-booking/internal/data/repository"
	"railway-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TrainService interface {
	ListTrains(ctx context.Context) ([]response.TrainResponse, error)
	SearchTrains(ctx context.Context, source, destination string) ([]response.TrainResponse, error)
	GetTrain(ctx context.Context, trainID uuid.UUID) (*response.TrainResponse, error)

	// SeedDefaults fills an empty catalog with the sample timetable and returns how many trains were added
	SeedDefaults(ctx context.Context) (int, error)
}

type trainService struct {
	trains repository.TrainRepository
	log    *zap.Logger
}

func NewTrainService(trains repository.TrainRepository, log *zap.Logger) TrainService {
	return &trainService{
		trains: trains,
		log:    log.With(zap.String("service", "train")),
	}
}

var defaultTrains = []entity.Train{
	{Name: "Rajdhani Express", Number: "RAJ2025", Source: "Delhi", Destination: "Mumbai", DepartureTime: "16:00", ArrivalTime: "08:00", TotalSeats: 500},
	{Name: "Shatabdi Express", Number: "SHT1050", Source: "Chennai", Destination: "Bangalore", DepartureTime: "06:00", ArrivalTime: "10:30", TotalSeats: 400},
	{Name: "Duronto Express", Number: "DUR2210", Source: "Kolkata", Destination: "Delhi", DepartureTime: "23:00", ArrivalTime: "14:00", TotalSeats: 450},
}

func (s *trainService) ListTrains(ctx context.Context) ([]response.TrainResponse, error) {
	trains, err := s.trains.FindAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list trains", Err: err}
	}
	return response.TrainsToResponse(trains), nil
}

func (s *trainService) SearchTrains(ctx context.Context, source, destination string) ([]response.TrainResponse, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)

	trains, err := s.trains.Search(ctx, source, destination)
	if err != nil {
		return nil, &PersistenceError{Op: "search trains", Err: err}
	}

	s.log.Debug("Trains searched",
		zap.String("source", source),
		zap.String("destination", destination),
		zap.Int("count", len(trains)),
	)

	return response.TrainsToResponse(trains), nil
}

func (s *trainService) GetTrain(ctx context.Context, trainID uuid.UUID) (*response.TrainResponse, error) {
	train, err := s.trains.FindByID(ctx, trainID)
	if err != nil {
		return nil, &PersistenceError{Op: "load train", Err: err}
	}
	if train == nil {
		return nil, ErrTrainNotFound
	}

	resp := response.TrainToResponse(train)
	return &resp, nil
}

func (s *trainService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.trains.Count(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "count trains", Err: err}
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now()
	for _, t := range defaultTrains {
		train := t
		train.BaseNoDelete = entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
		if err := s.trains.Create(ctx, &train); err != nil {
			return 0, &PersistenceError{Op: "seed trains", Err: err}
		}
	}

	s.log.Info("Seeded sample trains", zap.Int("count", len(defaultTrains)))
	return len(defaultTrains), nil
}
