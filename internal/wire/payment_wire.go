package wire

import (
	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/repository"
	"tour-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== GATEWAY CALLBACKS ====================
	// Authenticated by signature, not by session.
	r.Post("/api/webhooks/stripe", paymentHandler.StripeWebhook)
	r.Post("/api/webhooks/momo", paymentHandler.MoMoIPN)

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Patch("/api/admin/bookings/{id}/payment", paymentHandler.UpdatePaymentStatus)
	})
}
