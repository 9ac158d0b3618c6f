package adaptor

import (
	"encoding/json"
	"net/http"

	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

type DiscountHandler struct {
	service usecase.DiscountService
	log     *zap.Logger
}

func NewDiscountHandler(service usecase.DiscountService, log *zap.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: service,
		log:     log.With(zap.String("handler", "discount")),
	}
}

// Validate handles POST /api/discounts/validate
func (h *DiscountHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Validate(r.Context(), req.Code)
	if err != nil {
		handleServiceError(h.log, w, err, "validate discount")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}
