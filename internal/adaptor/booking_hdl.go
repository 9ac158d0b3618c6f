package adaptor

import (
	"encoding/json"
	"net/http"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
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

// requester returns the optional authenticated user and admin flag.
func requester(r *http.Request) (*uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return &userID, role == string(entity.RoleAdmin)
}

// CreateBooking handles POST /api/bookings. Works for both guests and
// logged-in customers; with a valid session the booking is attached to
// the account.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	customerID, _ := requester(r)

	checkout, err := h.service.CreateBooking(r.Context(), customerID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", checkout)
}

// GetBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	requesterID, isAdmin := requester(r)

	booking, err := h.service.GetBooking(r.Context(), bookingID, requesterID, isAdmin)
	if err != nil {
		handleServiceError(h.log, w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// LookupBooking handles GET /api/bookings/lookup?order_id=..&email=..
// Guest-facing booking lookup.
func (h *BookingHandler) LookupBooking(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	booking, err := h.service.LookupByOrder(r.Context(), query.Get("order_id"), query.Get("email"))
	if err != nil {
		handleServiceError(h.log, w, err, "lookup booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// MyBookings handles GET /api/my-bookings (protected)
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.MyBookings(r.Context(), userID, parsePagination(r))
	if err != nil {
		handleServiceError(h.log, w, err, "my bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// CancelBooking handles POST /api/bookings/{id}/cancel (protected)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	requesterID, isAdmin := requester(r)

	if err := h.service.CancelBooking(r.Context(), bookingID, requesterID, isAdmin); err != nil {
		handleServiceError(h.log, w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ==================== ADMIN METHODS ====================

// ListBookings handles GET /api/admin/bookings (admin)
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context(), parsePagination(r))
	if err != nil {
		handleServiceError(h.log, w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// MarkTourCompleted handles POST /api/admin/bookings/{id}/complete (admin)
func (h *BookingHandler) MarkTourCompleted(w http.ResponseWriter, r *http.Request) {
	bookingID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	if err := h.service.MarkTourCompleted(r.Context(), bookingID); err != nil {
		handleServiceError(h.log, w, err, "complete booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
