package cycle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleRange(t *testing.T) {
	start, end, err := CycleRange("2025-11")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-26", start.String())
	assert.Equal(t, "2025-11-25", end.String())
}

func TestCycleRangeYearBoundary(t *testing.T) {
	start, end, err := CycleRange("2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-26", start.String())
	assert.Equal(t, "2025-01-25", end.String())
}

func TestDaysInCycle(t *testing.T) {
	n, err := DaysInCycle("2025-11")
	require.NoError(t, err)
	assert.Equal(t, 31, n) // Oct 26 - Nov 25 = 31 days
}

func TestDaysInCycleFebruary(t *testing.T) {
	n, err := DaysInCycle("2025-02")
	require.NoError(t, err)
	assert.Equal(t, 31, n) // Jan 26 - Feb 25 = 31 days
}

func TestCyclePartitionInvariant(t *testing.T) {
	// Every date belongs to exactly one cycle.
	d := MustParseLocalDate("2025-10-26")
	assert.Equal(t, "2025-11", Label(d))

	d = MustParseLocalDate("2025-11-25")
	assert.Equal(t, "2025-11", Label(d))

	d = MustParseLocalDate("2025-10-25")
	assert.Equal(t, "2025-10", Label(d))
}

func TestParsePunchTimestampNoZoneConversion(t *testing.T) {
	dt, err := ParsePunchTimestamp("2025-11-01T00:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 0, dt.Hour())
	assert.Equal(t, "2025-11-01", dt.Date().String())

	dt2, err := ParsePunchTimestamp("2025-11-01T09:15:30.123")
	require.NoError(t, err)
	assert.Equal(t, 9, dt2.Hour())
}

func TestCyclesBetween(t *testing.T) {
	n, err := CyclesBetween("2020-01", "2020-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = CyclesBetween("2020-01", "2020-12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = CyclesBetween("2020-01", "2025-11")
	require.NoError(t, err)
	assert.Equal(t, 71, n)
}

func TestLocalDateJSONRoundTrip(t *testing.T) {
	d := MustParseLocalDate("2025-11-02")
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-11-02"`, string(raw))

	var back LocalDate
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, d.Equal(back))
}

func TestLocalDateTimeJSONRoundTrip(t *testing.T) {
	dt, err := ParsePunchTimestamp("2025-11-02T09:15:30")
	require.NoError(t, err)
	raw, err := json.Marshal(dt)
	require.NoError(t, err)
	assert.Equal(t, `"2025-11-02T09:15:30"`, string(raw))

	var back LocalDateTime
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, dt, back)
}

func TestDayOfWeekSundayIsZero(t *testing.T) {
	// 2025-11-02 is a Sunday.
	d := MustParseLocalDate("2025-11-02")
	assert.Equal(t, 0, int(DayOfWeek(d)))
}
