package wire

import (
	"net/http"

	"railway-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, auth func(http.Handler) http.Handler) {
	r.With(auth).Get("/api/me", userHandler.GetProfile)
	r.With(auth).Put("/api/me", userHandler.UpdateProfile)
	r.With(auth).Put("/api/me/password", userHandler.ChangePassword)
}
