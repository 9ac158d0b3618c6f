package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("5", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("0", 10))
	assert.Equal(t, 10, ParseInt("-3", 10))
}

func TestCalculateBookingPrice(t *testing.T) {
	// 2 adults at 100 + 1 child at 80
	assert.InDelta(t, 280, CalculateBookingPrice(2, 1, 100), 0.001)
	assert.InDelta(t, 100, CalculateBookingPrice(1, 0, 100), 0.001)
	assert.InDelta(t, 80, CalculateBookingPrice(0, 1, 100), 0.001)
	assert.InDelta(t, 0, CalculateBookingPrice(0, 0, 100), 0.001)
}

func TestApplyDiscount(t *testing.T) {
	assert.InDelta(t, 90, ApplyDiscount(100, 10), 0.001)
	assert.InDelta(t, 100, ApplyDiscount(100, 0), 0.001)
	assert.InDelta(t, 100, ApplyDiscount(100, -5), 0.001)
	// Clamped at 100%
	assert.InDelta(t, 0, ApplyDiscount(100, 150), 0.001)
}
