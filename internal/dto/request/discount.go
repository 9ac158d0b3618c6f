package request

type DiscountRequest struct {
	Code       string  `json:"code" validate:"required,min=3,max=50"`
	Percentage float64 `json:"percentage" validate:"required,gt=0,lte=100"`
	ValidFrom  string  `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidUntil string  `json:"valid_until" validate:"required,datetime=2006-01-02"`
	IsActive   bool    `json:"is_active"`
}

type ValidateDiscountRequest struct {
	Code string `json:"code" validate:"required,min=3,max=50"`
}
