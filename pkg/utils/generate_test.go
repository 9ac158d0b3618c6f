package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderID(t *testing.T) {
	orderID := GenerateOrderID()

	parts := strings.Split(orderID, "-")
	require.Len(t, parts, 4)
	assert.Equal(t, "TOUR", parts[0])
	assert.Len(t, parts[1], 8) // YYYYMMDD
	assert.Len(t, parts[2], 6) // HHMMSS
	assert.Len(t, parts[3], 4)
}

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP(6)
	require.Len(t, otp, 6)
	for _, c := range otp {
		assert.True(t, c >= '0' && c <= '9', "OTP must be numeric, got %q", otp)
	}

	// Invalid length falls back to 6
	assert.Len(t, GenerateOTP(0), 6)
	assert.Len(t, GenerateOTP(-1), 6)
	assert.Len(t, GenerateOTP(4), 4)
}
