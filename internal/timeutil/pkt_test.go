package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDayUsesPKTCalendar(t *testing.T) {
	// 23:30 UTC on March 1 is already 04:30 on March 2 in Karachi.
	utc := time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)

	start := StartOfDay(utc)
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 2, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, PKT, start.Location())
}

func TestEndOfDayIsLastInstant(t *testing.T) {
	d := time.Date(2025, time.March, 2, 10, 0, 0, 0, PKT)
	end := EndOfDay(d)
	assert.Equal(t, 23, end.Hour())
	assert.True(t, end.After(d))
	assert.True(t, SameDay(d, end))
	// One nanosecond later is the next day.
	assert.False(t, SameDay(d, end.Add(time.Nanosecond)))
}

func TestSameDayAcrossZones(t *testing.T) {
	// Both instants land on March 2 in PKT even though one is March 1 UTC.
	a := time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.March, 2, 12, 0, 0, 0, PKT)
	assert.True(t, SameDay(a, b))

	c := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	assert.False(t, SameDay(a, c))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, PKT, d.Location())
	assert.Equal(t, "2025-03-02", FormatDate(d))

	_, err = ParseDate("02/03/2025")
	assert.Error(t, err)
}

func TestFormatDateConvertsToPKT(t *testing.T) {
	utc := time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-02", FormatDate(utc))
}
