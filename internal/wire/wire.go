package wire

import (
	"net/http"

	"railway-booking/internal/adaptor"
	"railway-booking/internal/data/repository"
	"railway-booking/internal/fare"
	"railway-booking/internal/ledger"
	"railway-booking/internal/usecase"
	"railway-booking/pkg/middleware"
	"railway-booking/pkg/monitoring"
	"railway-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

func Wiring(
	repo *repository.Repository,
	seats ledger.Ledger,
	fares fare.Calculator,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, seats, fares, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	auth := middleware.AuthSession(repo.Session, repo.User, logger)

	wireAuth(r, handler.Auth, auth)
	wireUser(r, handler.User, auth)
	wireTrain(r, handler.Train)
	wireBooking(r, handler.Booking, auth, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if config.App.MetricsEnabled {
		r.Handle("/metrics", monitoring.Handler())
	}

	return r
}
