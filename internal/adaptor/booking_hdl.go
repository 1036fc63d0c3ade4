package adaptor

import (
	"context"
	"net/http"

	"railway-booking/internal/data/entity"
	"railway-booking/internal/dto/request"
	"railway-booking/internal/dto/response"
	"railway-booking/internal/usecase"
	"railway-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "create booking")
		return
	}

	if booking.Status == entity.BookingStatusWaiting {
		utils.ResponseAccepted(w, "Train is full, booking added to the waitlist", response.BookingToResponse(booking))
		return
	}
	utils.ResponseCreated(w, "Booking confirmed", response.BookingToResponse(booking))
}

// GetUserBookings handles GET /api/bookings?page=&per_page= (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	bookings, total, err := h.service.GetUserBookings(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, h.log, err, "get user bookings")
		return
	}

	data := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		data[i] = response.BookingToResponse(b)
	}

	utils.ResponseSuccess(w, "success", response.NewPaginatedResponse(data, req.Page, req.PerPage, total))
}

// GetBooking handles GET /api/bookings/{id} (owner) and GET /api/admin/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.authorize(r.Context(), bookingID)
	if err != nil {
		respondServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", response.BookingToResponse(booking))
}

// CancelBooking handles POST /api/bookings/{id}/cancel (owner) and PUT /api/admin/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.authorize(r.Context(), bookingID); err != nil {
		respondServiceError(w, h.log, err, "cancel booking")
		return
	}

	if _, err := h.service.CancelBooking(r.Context(), bookingID); err != nil {
		respondServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", response.CancelResponse{
		BookingID: bookingID.String(),
		Status:    entity.BookingStatusCancelled,
	})
}

// ProcessPayment handles POST /api/bookings/{id}/pay (owner)
func (h *BookingHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req request.ProcessPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authorize(r.Context(), bookingID); err != nil {
		respondServiceError(w, h.log, err, "process payment")
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), bookingID, &req)
	if err != nil {
		respondServiceError(w, h.log, err, "process payment")
		return
	}

	utils.ResponseSuccess(w, "Payment recorded", response.PaymentToResponse(payment))
}

// authorize loads the booking and checks that the caller owns it or is an admin
func (h *BookingHandler) authorize(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, usecase.ErrForbidden
	}

	booking, err := h.service.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userID && !utils.IsAdmin(ctx) {
		h.log.Warn("Booking access denied",
			zap.String("booking_id", bookingID.String()),
			zap.String("user_id", userID.String()))
		return nil, usecase.ErrForbidden
	}

	return booking, nil
}
