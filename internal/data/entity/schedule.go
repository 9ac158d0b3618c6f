package entity

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is a departure offering owned by a Tour. AvailableSeats is the
// authoritative capacity counter and must never go below zero; it is only
// mutated through the conditional updates in ScheduleRepository.
type Schedule struct {
	Base
	TourID         uuid.UUID `db:"tour_id"`
	DepartureDate  time.Time `db:"departure_date"`
	DepartureTime  string    `db:"departure_time"` // "08:30"
	ReturnDate     time.Time `db:"return_date"`
	ReturnTime     string    `db:"return_time"`
	Transportation string    `db:"transportation"`
	AvailableSeats int       `db:"available_seats"`
	PriceOverride  *float64  `db:"price_override"`
}
