package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/gateway"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxWebhookBytes bounds gateway callback payloads.
const maxWebhookBytes = 1 << 20

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// StripeWebhook handles POST /api/webhooks/stripe. The body must stay raw
// for signature verification. Only a bad signature is refused; once the
// event is verified the gateway always gets a 2xx, otherwise Stripe keeps
// redelivering an event we cannot process.
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		utils.ResponseBadRequest(w, "Failed to read payload", nil)
		return
	}

	if err := h.service.HandleStripeWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		if errors.Is(err, usecase.ErrInvalidSignature) {
			h.log.Warn("Stripe webhook rejected", zap.Error(err))
			utils.ResponseBadRequest(w, "Webhook rejected", nil)
			return
		}
		h.log.Error("Stripe webhook processing failed", zap.Error(err))
	}

	utils.ResponseSuccess(w, "received", map[string]bool{"received": true})
}

// MoMoIPN handles POST /api/webhooks/momo. MoMo expects a 2xx regardless
// of processing outcome; failed deliveries are retried by the gateway.
func (h *PaymentHandler) MoMoIPN(w http.ResponseWriter, r *http.Request) {
	var callback gateway.MoMoIPNRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBytes)).Decode(&callback); err != nil {
		utils.ResponseBadRequest(w, "Invalid callback body", nil)
		return
	}

	if err := h.service.HandleMoMoIPN(r.Context(), callback); err != nil {
		h.log.Warn("MoMo callback failed",
			zap.Error(err), zap.String("order_id", callback.OrderID))
	}

	utils.ResponseSuccess(w, "received", map[string]bool{"received": true})
}

// ==================== ADMIN METHODS ====================

// UpdatePaymentStatus handles PATCH /api/admin/bookings/{id}/payment (admin)
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	var req request.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.UpdatePaymentStatus(r.Context(), bookingID, entity.PaymentStatus(req.PaymentStatus)); err != nil {
		handleServiceError(h.log, w, err, "update payment status")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
