package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0 days, 0 hours, 0 minutes, 0 seconds", FormatUptime(0))
	assert.Equal(t, "0 days, 0 hours, 1 minutes, 5 seconds", FormatUptime(65*time.Second))
	assert.Equal(t, "2 days, 3 hours, 4 minutes, 5 seconds",
		FormatUptime(2*24*time.Hour+3*time.Hour+4*time.Minute+5*time.Second))
}
