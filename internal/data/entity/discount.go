package entity

import "time"

type Discount struct {
	Base
	Code       string    `db:"code"`
	Percentage float64   `db:"percentage"` // 0-100
	ValidFrom  time.Time `db:"valid_from"`
	ValidUntil time.Time `db:"valid_until"`
	IsActive   bool      `db:"is_active"`
}

// ValidAt reports whether the code can be applied at the given instant.
func (d *Discount) ValidAt(t time.Time) bool {
	return d.IsActive && !t.Before(d.ValidFrom) && !t.After(d.ValidUntil)
}
