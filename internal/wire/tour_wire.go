package wire

import (
	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/repository"
	"tour-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTour(
	r chi.Router,
	tourHandler *adaptor.TourHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/tours", tourHandler.ListTours)
	r.Get("/api/tours/featured", tourHandler.FeaturedTours)
	r.Get("/api/tours/{id}", tourHandler.GetTour)
	r.Get("/api/tours/{id}/schedules", tourHandler.GetSchedules)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/tours", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Post("/", tourHandler.CreateTour)
		r.Put("/{id}", tourHandler.UpdateTour)
		r.Delete("/{id}", tourHandler.DeleteTour)
		r.Post("/{id}/images", tourHandler.UploadImage)
		r.Post("/{id}/schedules", tourHandler.CreateSchedule)
	})

	r.Route("/api/admin/schedules", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Put("/{id}", tourHandler.UpdateSchedule)
		r.Patch("/{id}/seats", tourHandler.DeductSeats)
		r.Delete("/{id}", tourHandler.DeleteSchedule)
	})
}
