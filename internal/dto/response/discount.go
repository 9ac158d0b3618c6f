package response

import (
	"tour-booking/internal/data/entity"
)

type DiscountResponse struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
	ValidFrom  string  `json:"valid_from"`
	ValidUntil string  `json:"valid_until"`
	IsActive   bool    `json:"is_active"`
}

type DiscountValidationResponse struct {
	Valid      bool    `json:"valid"`
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage,omitempty"`
}

func DiscountToResponse(d *entity.Discount) DiscountResponse {
	return DiscountResponse{
		ID:         d.ID.String(),
		Code:       d.Code,
		Percentage: d.Percentage,
		ValidFrom:  d.ValidFrom.Format("2006-01-02"),
		ValidUntil: d.ValidUntil.Format("2006-01-02"),
		IsActive:   d.IsActive,
	}
}
