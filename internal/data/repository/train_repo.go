package repository

import (
	"context"
	"errors"
	"fmt"

	"railway-booking/internal/data/entity"
	"railway-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TrainRepository interface {
	Create(ctx context.Context, train *entity.Train) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Train, error)
	FindAll(ctx context.Context) ([]*entity.Train, error)
	Search(ctx context.Context, source, destination string) ([]*entity.Train, error)
	Count(ctx context.Context) (int64, error)
}

type trainRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTrainRepository(db database.PgxIface, log *zap.Logger) TrainRepository {
	return &trainRepository{
		db:  db,
		log: log.With(zap.String("repository", "train")),
	}
}

const selectTrain = `
	SELECT id, name, number, source, destination, departure_time, arrival_time,
	       total_seats, created_at, updated_at
	FROM trains
`

func (r *trainRepository) Create(ctx context.Context, train *entity.Train) error {
	query := `
		INSERT INTO trains (id, name, number, source, destination, departure_time,
		                    arrival_time, total_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		train.ID,
		train.Name,
		train.Number,
		train.Source,
		train.Destination,
		train.DepartureTime,
		train.ArrivalTime,
		train.TotalSeats,
		train.CreatedAt,
		train.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create train",
			zap.Error(err),
			zap.String("number", train.Number),
		)
		return fmt.Errorf("create train %s: %w", train.Number, err)
	}

	return nil
}

func (r *trainRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Train, error) {
	var train entity.Train
	err := r.db.QueryRow(ctx, selectTrain+`WHERE id = $1`, id).Scan(
		&train.ID,
		&train.Name,
		&train.Number,
		&train.Source,
		&train.Destination,
		&train.DepartureTime,
		&train.ArrivalTime,
		&train.TotalSeats,
		&train.CreatedAt,
		&train.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find train by ID",
			zap.Error(err),
			zap.String("train_id", id.String()),
		)
		return nil, fmt.Errorf("find train by ID %s: %w", id.String(), err)
	}

	return &train, nil
}

func (r *trainRepository) FindAll(ctx context.Context) ([]*entity.Train, error) {
	rows, err := r.db.Query(ctx, selectTrain+`ORDER BY departure_time, name`)
	if err != nil {
		r.log.Error("Failed to list trains", zap.Error(err))
		return nil, fmt.Errorf("find all trains: %w", err)
	}
	defer rows.Close()

	return r.scanTrains(rows)
}

// Search matches case-insensitive substrings; an empty argument matches everything
func (r *trainRepository) Search(ctx context.Context, source, destination string) ([]*entity.Train, error) {
	query := selectTrain + `
		WHERE source ILIKE '%' || $1 || '%'
		  AND destination ILIKE '%' || $2 || '%'
		ORDER BY departure_time, name
	`

	rows, err := r.db.Query(ctx, query, source, destination)
	if err != nil {
		r.log.Error("Failed to search trains",
			zap.Error(err),
			zap.String("source", source),
			zap.String("destination", destination),
		)
		return nil, fmt.Errorf("search trains %s -> %s: %w", source, destination, err)
	}
	defer rows.Close()

	return r.scanTrains(rows)
}

func (r *trainRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trains`).Scan(&count); err != nil {
		r.log.Error("Failed to count trains", zap.Error(err))
		return 0, fmt.Errorf("count trains: %w", err)
	}
	return count, nil
}

func (r *trainRepository) scanTrains(rows pgx.Rows) ([]*entity.Train, error) {
	var trains []*entity.Train
	for rows.Next() {
		var train entity.Train
		err := rows.Scan(
			&train.ID,
			&train.Name,
			&train.Number,
			&train.Source,
			&train.Destination,
			&train.DepartureTime,
			&train.ArrivalTime,
			&train.TotalSeats,
			&train.CreatedAt,
			&train.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan train row", zap.Error(err))
			return nil, fmt.Errorf("scan train row: %w", err)
		}
		trains = append(trains, &train)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate train rows: %w", err)
	}

	return trains, nil
}
