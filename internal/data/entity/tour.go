package entity

type Tour struct {
	Base
	Name              string   `db:"name"`
	Description       string   `db:"description"`
	Price             float64  `db:"price"` // per adult; children pay 80%
	Images            []string `db:"images"`
	Duration          string   `db:"duration"` // e.g. "3 days 2 nights"
	Destination       string   `db:"destination"`
	DepartureLocation string   `db:"departure_location"`
	Featured          bool     `db:"featured"`
	RatingAverage     float64  `db:"rating_average"`
	RatingCount       int      `db:"rating_count"`
}

// EffectivePrice returns the per-adult price for a schedule, honoring the
// schedule's price override when set.
func (t *Tour) EffectivePrice(s *Schedule) float64 {
	if s != nil && s.PriceOverride != nil {
		return *s.PriceOverride
	}
	return t.Price
}
