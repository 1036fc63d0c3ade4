package main

import (
	"context"
	"log"
	"time"

	"railway-booking/cmd"
	"railway-booking/internal/data/repository"
	"railway-booking/internal/fare"
	"railway-booking/internal/ledger"
	"railway-booking/internal/wire"
	"railway-booking/pkg/database"
	"railway-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("ledger", config.Ledger.Backend),
		zap.String("fare_policy", config.Fare.Policy),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	var rdb redis.Cmdable
	if config.Ledger.Backend == ledger.BackendRedis {
		client, err := database.NewRedisClient(config.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		rdb = client
		logger.Info("Redis connected successfully")
	}

	seats, err := ledger.Open(config.Ledger.Backend, db, rdb, logger)
	if err != nil {
		logger.Fatal("Failed to open seat ledger", zap.Error(err))
	}

	fares, err := fare.New(config.Fare)
	if err != nil {
		logger.Fatal("Invalid fare configuration", zap.Error(err))
	}

	repos := repository.NewRepository(db, logger)

	app := wire.Wiring(repos, seats, fares, config, logger)

	if _, err := app.Service.Train.SeedDefaults(ctx); err != nil {
		logger.Fatal("Failed to seed trains", zap.Error(err))
	}

	if _, err := app.Service.Booking.RestoreSeatCounts(ctx); err != nil {
		logger.Fatal("Failed to restore seat ledger", zap.Error(err))
	}

	if mem, ok := seats.(*ledger.Memory); ok {
		go pruneLedger(mem, logger)
	}

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// pruneLedger drops in-memory counters for journeys that have already left
func pruneLedger(mem *ledger.Memory, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		today := time.Now().Format(time.DateOnly)
		if removed := mem.Prune(today); removed > 0 {
			logger.Info("Pruned past seat counters", zap.Int("removed", removed))
		}
	}
}
