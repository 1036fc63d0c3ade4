package wire

import (
	"railway-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireTrain exposes the read-only catalog. Availability is public, like the timetable.
func wireTrain(r chi.Router, trainHandler *adaptor.TrainHandler) {
	r.Route("/api/trains", func(r chi.Router) {
		r.Get("/", trainHandler.ListTrains)
		r.Get("/{id}", trainHandler.GetTrain)
		r.Get("/{id}/availability", trainHandler.GetAvailability)
	})
}
