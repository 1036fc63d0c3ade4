package wire

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"railway-booking/internal/data/repository"
	"railway-booking/internal/fare"
	"railway-booking/internal/ledger"
	"railway-booking/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestApp(metrics bool) *App {
	config := &utils.Config{
		App:     utils.AppConfig{MetricsEnabled: metrics, CORSOrigins: []string{"http://localhost:3000"}},
		Booking: utils.BookingConfig{SeatLabelPrefix: "A"},
	}
	return Wiring(&repository.Repository{}, ledger.NewMemory(), fare.Flat{BaseFarePerSeat: decimal.NewFromInt(50)}, config, zap.NewNop())
}

func TestRoutes(t *testing.T) {
	app := newTestApp(true)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/bookings", http.StatusUnauthorized},
		{http.MethodGet, "/api/bookings", http.StatusUnauthorized},
		{http.MethodPost, "/api/logout", http.StatusUnauthorized},
		{http.MethodGet, "/api/me", http.StatusUnauthorized},
		{http.MethodPut, "/api/me", http.StatusUnauthorized},
		{http.MethodPut, "/api/me/password", http.StatusUnauthorized},
		{http.MethodPut, "/api/admin/bookings/00000000-0000-0000-0000-000000000000/cancel", http.StatusUnauthorized},
		{http.MethodGet, "/api/trains/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPreflight(t *testing.T) {
	app := newTestApp(false)

	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsDisabled(t *testing.T) {
	app := newTestApp(false)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
