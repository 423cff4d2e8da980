package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "2025-03-14", FormatDate(date))

	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	clock, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1970, 1, 1, 9, 30, 0, 0, time.UTC), clock)
	assert.Equal(t, "09:30", FormatClock(clock))

	clock, err = ParseClock("19:05:00")
	require.NoError(t, err)
	assert.Equal(t, "19:05", FormatClock(clock))

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestDateOf_UsesUTCCalendarDay(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*3600)
	local := time.Date(2025, 3, 14, 22, 0, 0, 0, saoPaulo)

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), DateOf(local))
}

func TestCombineDateClock(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	clock := time.Date(1970, 1, 1, 18, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 14, 18, 45, 0, 0, time.UTC), CombineDateClock(date, clock))
}

func TestPgTimeRoundTrip(t *testing.T) {
	clock := time.Date(1970, 1, 1, 7, 15, 30, 0, time.UTC)

	assert.Equal(t, clock, FromPgTime(ToPgTime(clock)))
	assert.Equal(t, time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), FromPgDate(ToPgDate(time.Date(2025, 12, 24, 10, 0, 0, 0, time.UTC))))
}
