package adaptor

import (
	"encoding/json"
	"net/http"

	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxImageUploadBytes caps multipart image uploads at 10 MB.
const maxImageUploadBytes = 10 << 20

type TourHandler struct {
	service usecase.TourService
	log     *zap.Logger
}

func NewTourHandler(service usecase.TourService, log *zap.Logger) *TourHandler {
	return &TourHandler{
		service: service,
		log:     log.With(zap.String("handler", "tour")),
	}
}

// ListTours handles GET /api/tours
func (h *TourHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.service.ListTours(r.Context(), parsePagination(r))
	if err != nil {
		handleServiceError(h.log, w, err, "list tours")
		return
	}

	utils.ResponseSuccess(w, "success", tours)
}

// FeaturedTours handles GET /api/tours/featured
func (h *TourHandler) FeaturedTours(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 8)

	tours, err := h.service.FeaturedTours(r.Context(), limit)
	if err != nil {
		handleServiceError(h.log, w, err, "featured tours")
		return
	}

	utils.ResponseSuccess(w, "success", tours)
}

// GetTour handles GET /api/tours/{id}
func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid tour ID", nil)
		return
	}

	tour, err := h.service.GetTour(r.Context(), tourID)
	if err != nil {
		handleServiceError(h.log, w, err, "get tour")
		return
	}

	utils.ResponseSuccess(w, "success", tour)
}

// GetSchedules handles GET /api/tours/{id}/schedules
func (h *TourHandler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	tourID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid tour ID", nil)
		return
	}

	schedules, err := h.service.GetSchedules(r.Context(), tourID)
	if err != nil {
		handleServiceError(h.log, w, err, "get schedules")
		return
	}

	utils.ResponseSuccess(w, "success", schedules)
}

// ==================== ADMIN METHODS ====================

// CreateTour handles POST /api/admin/tours (admin)
func (h *TourHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var req request.TourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	tour, err := h.service.CreateTour(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create tour")
		return
	}

	utils.ResponseCreated(w, "success", tour)
}

// UpdateTour handles PUT /api/admin/tours/{id} (admin)
func (h *TourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid tour ID", nil)
		return
	}

	var req request.TourUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	tour, err := h.service.UpdateTour(r.Context(), tourID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update tour")
		return
	}

	utils.ResponseSuccess(w, "success", tour)
}

// DeleteTour handles DELETE /api/admin/tours/{id} (admin)
func (h *TourHandler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid tour ID", nil)
		return
	}

	if err := h.service.DeleteTour(r.Context(), tourID); err != nil {
		handleServiceError(h.log, w, err, "delete tour")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// UploadImage handles POST /api/admin/tours/{id}/images (admin, multipart)
func (h *TourHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	tourID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid tour ID", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		utils.ResponseBadRequest(w, "Invalid multipart form or file too large", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.ResponseBadRequest(w, "Missing image file", nil)
		return
	}
	defer file.Close()

	url, err := h.service.UploadTourImage(r.Context(), tourID, file, header.Filename)
	if err != nil {
		handleServiceError(h.log, w, err, "upload tour image")
		return
	}

	utils.ResponseCreated(w, "success", map[string]string{"url": url})
}

// CreateSchedule handles POST /api/admin/tours/{id}/schedules (admin)
func (h *TourHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	tourID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid tour ID", nil)
		return
	}

	var req request.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), tourID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create schedule")
		return
	}

	utils.ResponseCreated(w, "success", schedule)
}

// UpdateSchedule handles PUT /api/admin/schedules/{id} (admin)
func (h *TourHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	var req request.ScheduleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	schedule, err := h.service.UpdateSchedule(r.Context(), scheduleID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update schedule")
		return
	}

	utils.ResponseSuccess(w, "success", schedule)
}

// DeductSeats handles PATCH /api/admin/schedules/{id}/seats (admin)
func (h *TourHandler) DeductSeats(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	var req request.DeductSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	schedule, err := h.service.DeductSeats(r.Context(), scheduleID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "deduct seats")
		return
	}

	utils.ResponseSuccess(w, "success", schedule)
}

// DeleteSchedule handles DELETE /api/admin/schedules/{id} (admin)
func (h *TourHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	if err := h.service.DeleteSchedule(r.Context(), scheduleID); err != nil {
		handleServiceError(h.log, w, err, "delete schedule")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
