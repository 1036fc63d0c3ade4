package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"railway-booking/internal/usecase"
	"railway-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondServiceError maps the usecase error taxonomy onto HTTP statuses
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		invalid      *usecase.InvalidRequestError
		insufficient *usecase.InsufficientSeatsError
		transition   *usecase.InvalidTransitionError
		persistence  *usecase.PersistenceError
	)

	switch {
	case errors.As(err, &invalid):
		log.Warn(operation+" validation failed", zap.Any("errors", invalid.Fields))
		utils.ResponseBadRequest(w, "Validation failed", invalid.Fields)

	case errors.As(err, &insufficient):
		log.Info(operation+" rejected - insufficient seats",
			zap.Int("requested", insufficient.Requested),
			zap.Int("available", insufficient.Available))
		utils.ResponseConflict(w, err.Error(), map[string]int{
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})

	case errors.As(err, &transition):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), map[string]string{
			"status":         string(transition.Status),
			"payment_status": string(transition.PaymentStatus),
		})

	case errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrTrainNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrUsernameTaken):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrWrongPassword):
		log.Warn(operation+" failed - wrong password", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), map[string]string{"old_password": err.Error()})

	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrAccountDeactivated):
		log.Warn(operation+" failed - account deactivated", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.As(err, &persistence):
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("op", persistence.Op))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable, please retry")

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// uuidParam reads a UUID path parameter, answering 400 when it is malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name, map[string]string{name: "Must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
