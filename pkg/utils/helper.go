package utils

import (
	"strconv"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// CalculateBookingPrice computes the seat subtotal for a booking:
// adults pay the full per-adult price, children pay 80% of it.
func CalculateBookingPrice(adults, children int, pricePerAdult float64) float64 {
	adultTotal := pricePerAdult * float64(adults)
	childTotal := pricePerAdult * 0.8 * float64(children)
	return adultTotal + childTotal
}

// ApplyDiscount reduces subtotal by the given percentage (0-100).
func ApplyDiscount(subtotal, percentage float64) float64 {
	if percentage <= 0 {
		return subtotal
	}
	if percentage > 100 {
		percentage = 100
	}
	return subtotal * (1 - percentage/100)
}
