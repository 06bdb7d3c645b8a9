package utils

import (
	"fmt"
	"time"
)

// FormatUptime renders a duration in the "d days, h hours, m minutes,
// s seconds" form used by the status command.
func FormatUptime(d time.Duration) string {
	seconds := int64(d.Seconds())
	days := seconds / (24 * 60 * 60)
	seconds %= 24 * 60 * 60
	hours := seconds / (60 * 60)
	seconds %= 60 * 60
	minutes := seconds / 60
	seconds %= 60
	return fmt.Sprintf("%d days, %d hours, %d minutes, %d seconds", days, hours, minutes, seconds)
}
