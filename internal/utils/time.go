package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseClock parses a time of day such as "7:30" or "07:30"
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatClock formats a time of day as HH:MM
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
