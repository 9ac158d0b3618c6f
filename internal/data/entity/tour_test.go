package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	tour := &Tour{Price: 120}

	assert.Equal(t, 120.0, tour.EffectivePrice(nil))
	assert.Equal(t, 120.0, tour.EffectivePrice(&Schedule{}))

	override := 95.0
	assert.Equal(t, 95.0, tour.EffectivePrice(&Schedule{PriceOverride: &override}))
}

func TestDiscountValidAt(t *testing.T) {
	now := time.Now()
	d := &Discount{
		Code:       "TET2026",
		Percentage: 15,
		ValidFrom:  now.AddDate(0, 0, -1),
		ValidUntil: now.AddDate(0, 0, 1),
		IsActive:   true,
	}

	assert.True(t, d.ValidAt(now))
	assert.True(t, d.ValidAt(d.ValidFrom), "window is inclusive")
	assert.True(t, d.ValidAt(d.ValidUntil), "window is inclusive")
	assert.False(t, d.ValidAt(d.ValidFrom.Add(-time.Second)))
	assert.False(t, d.ValidAt(d.ValidUntil.Add(time.Second)))

	d.IsActive = false
	assert.False(t, d.ValidAt(now), "deactivated codes never apply")
}
