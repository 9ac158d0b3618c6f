package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodMoMo   PaymentMethod = "momo"
)

// PaymentStatus tracks the monetary transaction backing a booking.
// completed and cancelled are terminal.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// TourStatus tracks fulfillment of the booked tour itself, independent of
// payment but forced by terminal payment transitions.
type TourStatus string

const (
	TourStatusPending   TourStatus = "pending"
	TourStatusPaid      TourStatus = "paid"
	TourStatusCompleted TourStatus = "completed"
	TourStatusCancelled TourStatus = "cancelled"
)

// paymentPredecessors encodes the payment state machine:
// pending -> processing -> completed, or pending/processing -> cancelled.
// A transition is applied only when the current status is a listed
// predecessor, which makes duplicate gateway deliveries no-ops.
var paymentPredecessors = map[PaymentStatus][]PaymentStatus{
	PaymentStatusProcessing: {PaymentStatusPending},
	PaymentStatusCompleted:  {PaymentStatusPending, PaymentStatusProcessing},
	PaymentStatusCancelled:  {PaymentStatusPending, PaymentStatusProcessing},
}

// PaymentPredecessors returns the statuses allowed to precede target.
// The returned slice is empty for unreachable targets (e.g. back to pending).
func PaymentPredecessors(target PaymentStatus) []PaymentStatus {
	return paymentPredecessors[target]
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, p := range paymentPredecessors[to] {
		if p == from {
			return true
		}
	}
	return false
}

// TourStatusFor returns the fulfillment status forced by a payment
// transition, keeping the two fields from ever disagreeing.
func TourStatusFor(to PaymentStatus, current TourStatus) TourStatus {
	switch to {
	case PaymentStatusCompleted:
		return TourStatusPaid
	case PaymentStatusCancelled:
		return TourStatusCancelled
	default:
		return current
	}
}

type Booking struct {
	Base
	OrderID    string     `db:"order_id"`
	TourID     uuid.UUID  `db:"tour_id"`
	ScheduleID uuid.UUID  `db:"schedule_id"`
	CustomerID *uuid.UUID `db:"customer_id"` // nil for guest bookings

	// Contact snapshot, authoritative regardless of authentication state.
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
	CustomerPhone string `db:"customer_phone"`

	Adults         int           `db:"adults"`
	Children       int           `db:"children"`
	Notes          *string       `db:"notes"`
	PaymentMethod  PaymentMethod `db:"payment_method"`
	AgreedToPolicy bool          `db:"agreed_to_policy"`

	// Schedule snapshot taken at booking time so historical bookings stay
	// stable when the tour is edited later.
	TourName       string    `db:"tour_name"`
	DepartureDate  time.Time `db:"departure_date"`
	DepartureTime  string    `db:"departure_time"`
	ReturnDate     time.Time `db:"return_date"`
	ReturnTime     string    `db:"return_time"`
	Transportation string    `db:"transportation"`

	DiscountCode  *string       `db:"discount_code"`
	TotalPrice    float64       `db:"total_price"`
	TourStatus    TourStatus    `db:"tour_status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
}

// Seats returns the number of seats this booking claims against its schedule.
func (b *Booking) Seats() int {
	return b.Adults + b.Children
}
