package wire

import (
	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/repository"
	"tour-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC / GUEST ROUTES ====================
	// Checkout works for guests; a valid token attaches the booking to
	// the account instead.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(repo.Session, repo.User, log))

		r.Post("/api/bookings", bookingHandler.CreateBooking)
	})

	r.Get("/api/bookings/lookup", bookingHandler.LookupBooking)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
		r.Get("/api/my-bookings", bookingHandler.MyBookings)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Get("/", bookingHandler.ListBookings)
		r.Post("/{id}/complete", bookingHandler.MarkTourCompleted)
	})
}
