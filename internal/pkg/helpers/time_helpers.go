package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Wire formats for schedule dates and clock times
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses a YYYY-MM-DD calendar day into midnight UTC.
func ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must use the YYYY-MM-DD format")
	}
	return date, nil
}

// ParseClock parses an HH:MM (or HH:MM:SS) clock value onto the 1970-01-01 UTC epoch date.
func ParseClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.ParseInLocation(ClockLayout, value, time.UTC)
	if err != nil {
		parsed, err = time.ParseInLocation(time.TimeOnly, value, time.UTC)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("time must use the HH:MM format")
	}
	return ClockOf(parsed), nil
}

// DateOf truncates t to midnight UTC of its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockOf keeps only the UTC clock value of t, layered on 1970-01-01.
func ClockOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(1970, time.January, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// CombineDateClock joins a normalized date and clock into one UTC instant.
func CombineDateClock(date, clock time.Time) time.Time {
	y, m, d := date.UTC().Date()
	c := clock.UTC()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
}

// FormatDate renders a stored date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatClock renders a stored clock value as HH:MM.
func FormatClock(t time.Time) string {
	return t.UTC().Format(ClockLayout)
}
