package request

type CreateBookingRequest struct {
	TourID         string  `json:"tour_id" validate:"required,uuid4"`
	ScheduleID     string  `json:"schedule_id" validate:"required,uuid4"`
	CustomerName   string  `json:"customer_name" validate:"required,min=1,max=100"`
	CustomerEmail  string  `json:"customer_email" validate:"required,email"`
	CustomerPhone  string  `json:"customer_phone" validate:"required,min=8,max=15"`
	Adults         int     `json:"adults" validate:"required,gte=1,lte=50"`
	Children       int     `json:"children" validate:"gte=0,lte=50"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod  string  `json:"payment_method" validate:"required,oneof=stripe momo"`
	DiscountCode   *string `json:"discount_code,omitempty" validate:"omitempty,max=50"`
	AgreedToPolicy bool    `json:"agreed_to_policy" validate:"required,eq=true"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=processing completed cancelled"`
}
