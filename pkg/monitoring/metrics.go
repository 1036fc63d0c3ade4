package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ReservationReserved     = "reserved"
	ReservationInsufficient = "insufficient"
	ReservationError        = "error"

	ReleaseCancel       = "cancel"
	ReleaseCompensation = "compensation"
)

var (
	seatReservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_reservations_total",
			Help: "Seat reservation attempts by outcome",
		},
		[]string{"result"},
	)

	seatReleases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_releases_total",
			Help: "Seats returned to inventory by reason",
		},
		[]string{"reason", "status"},
	)

	bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Booking lifecycle events by resulting status",
		},
		[]string{"status"},
	)

	reservationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seat_reservation_duration_seconds",
			Help:    "Latency of ledger reservation calls",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"result"},
	)
)

// TrackReservation records one TryReserve call
func TrackReservation(result string, started time.Time) {
	seatReservations.WithLabelValues(result).Inc()
	reservationDuration.WithLabelValues(result).Observe(time.Since(started).Seconds())
}

// TrackRelease records a release attempt; ok=false means the ledger call failed
func TrackRelease(reason string, ok bool) {
	status := "success"
	if !ok {
		status = "failed"
	}
	seatReleases.WithLabelValues(reason, status).Inc()
}

func TrackBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
