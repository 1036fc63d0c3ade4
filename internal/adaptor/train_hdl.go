package adaptor

import (
	"net/http"
	"strings"

	"railway-booking/internal/dto/response"
	"railway-booking/internal/usecase"
	"railway-booking/pkg/utils"

	"go.uber.org/zap"
)

type TrainHandler struct {
	trains   usecase.TrainService
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewTrainHandler(trains usecase.TrainService, bookings usecase.BookingService, log *zap.Logger) *TrainHandler {
	return &TrainHandler{
		trains:   trains,
		bookings: bookings,
		log:      log.With(zap.String("handler", "train")),
	}
}

// ListTrains handles GET /api/trains?source=&destination=
func (h *TrainHandler) ListTrains(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	source := strings.TrimSpace(query.Get("source"))
	destination := strings.TrimSpace(query.Get("destination"))

	var (
		trains []response.TrainResponse
		err    error
	)
	if source == "" && destination == "" {
		trains, err = h.trains.ListTrains(r.Context())
	} else {
		trains, err = h.trains.SearchTrains(r.Context(), source, destination)
	}
	if err != nil {
		respondServiceError(w, h.log, err, "list trains")
		return
	}

	utils.ResponseSuccess(w, "success", trains)
}

// GetTrain handles GET /api/trains/{id}
func (h *TrainHandler) GetTrain(w http.ResponseWriter, r *http.Request) {
	trainID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	train, err := h.trains.GetTrain(r.Context(), trainID)
	if err != nil {
		respondServiceError(w, h.log, err, "get train")
		return
	}

	utils.ResponseSuccess(w, "success", train)
}

// GetAvailability handles GET /api/trains/{id}/availability?date=YYYY-MM-DD
func (h *TrainHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	trainID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"date": "This field is required"})
		return
	}

	availability, err := h.bookings.GetAvailableSeats(r.Context(), trainID, date)
	if err != nil {
		respondServiceError(w, h.log, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", response.AvailabilityToResponse(availability))
}
