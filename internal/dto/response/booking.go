package response

import (
	"time"

	"tour-booking/internal/data/entity"
)

type BookingResponse struct {
	ID             string               `json:"id"`
	OrderID        string               `json:"order_id"`
	TourID         string               `json:"tour_id"`
	ScheduleID     string               `json:"schedule_id"`
	CustomerID     *string              `json:"customer_id,omitempty"`
	CustomerName   string               `json:"customer_name"`
	CustomerEmail  string               `json:"customer_email"`
	CustomerPhone  string               `json:"customer_phone"`
	Adults         int                  `json:"adults"`
	Children       int                  `json:"children"`
	Notes          *string              `json:"notes,omitempty"`
	PaymentMethod  entity.PaymentMethod `json:"payment_method"`
	TourName       string               `json:"tour_name"`
	DepartureDate  string               `json:"departure_date"`
	DepartureTime  string               `json:"departure_time"`
	ReturnDate     string               `json:"return_date"`
	ReturnTime     string               `json:"return_time"`
	Transportation string               `json:"transportation"`
	DiscountCode   *string              `json:"discount_code,omitempty"`
	TotalPrice     float64              `json:"total_price"`
	TourStatus     entity.TourStatus    `json:"tour_status"`
	PaymentStatus  entity.PaymentStatus `json:"payment_status"`
	CreatedAt      time.Time            `json:"created_at"`
}

// CheckoutResponse carries the booking plus the gateway redirect URL the
// customer must visit to pay.
type CheckoutResponse struct {
	Booking    BookingResponse `json:"booking"`
	PaymentURL string          `json:"payment_url,omitempty"`
}

// Helper converters
func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID.String(),
		OrderID:        b.OrderID,
		TourID:         b.TourID.String(),
		ScheduleID:     b.ScheduleID.String(),
		CustomerName:   b.CustomerName,
		CustomerEmail:  b.CustomerEmail,
		CustomerPhone:  b.CustomerPhone,
		Adults:         b.Adults,
		Children:       b.Children,
		Notes:          b.Notes,
		PaymentMethod:  b.PaymentMethod,
		TourName:       b.TourName,
		DepartureDate:  b.DepartureDate.Format("2006-01-02"),
		DepartureTime:  b.DepartureTime,
		ReturnDate:     b.ReturnDate.Format("2006-01-02"),
		ReturnTime:     b.ReturnTime,
		Transportation: b.Transportation,
		DiscountCode:   b.DiscountCode,
		TotalPrice:     b.TotalPrice,
		TourStatus:     b.TourStatus,
		PaymentStatus:  b.PaymentStatus,
		CreatedAt:      b.CreatedAt,
	}

	if b.CustomerID != nil {
		id := b.CustomerID.String()
		resp.CustomerID = &id
	}

	return resp
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b))
	}
	return out
}
