// Package queue publishes and consumes booking domain events over RabbitMQ.
// Payment completion only enqueues an event; email delivery happens in the
// background consumer so a slow SMTP server never blocks a webhook reply.
package queue

const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is emitted exactly once per booking, when its
// payment transitions to completed.
type BookingConfirmedEvent struct {
	BookingID     string  `json:"booking_id"`
	OrderID       string  `json:"order_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	TourName      string  `json:"tour_name"`
	DepartureDate string  `json:"departure_date"`
	TotalPrice    float64 `json:"total_price"`
	ConfirmedAt   string  `json:"confirmed_at"`
}
