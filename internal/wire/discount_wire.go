package wire

import (
	"tour-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireDiscount(r chi.Router, discountHandler *adaptor.DiscountHandler) {
	// Code validation is public so the checkout form can check inline
	r.Post("/api/discounts/validate", discountHandler.Validate)
}
