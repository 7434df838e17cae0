package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/shift"
)

func punch(ts string) PunchLog {
	dt, err := cycle.ParsePunchTimestamp(ts)
	if err != nil {
		panic(err)
	}
	return PunchLog{EmployeeCode: "E1", LogTimestamp: dt}
}

func TestClassifyDayAbsentNoPunches(t *testing.T) {
	d := ClassifyDay(nil, shift.SystemDefault)
	assert.Equal(t, StatusAbsent, d.Status)
	assert.Equal(t, 0.0, d.TotalHours)
}

func TestClassifyDaySinglePunchLateHourCheckoutOnly(t *testing.T) {
	d := ClassifyDay([]PunchLog{punch("2025-11-10T18:30:00")}, shift.SystemDefault)
	require.Nil(t, d.FirstEntry)
	require.NotNil(t, d.LastExit)
}

func TestClassifyDaySinglePunchEarlyHourCheckinOnly(t *testing.T) {
	d := ClassifyDay([]PunchLog{punch("2025-11-10T10:05:00")}, shift.SystemDefault)
	require.NotNil(t, d.FirstEntry)
	require.Nil(t, d.LastExit)
	assert.True(t, d.IsEarlyExit) // no exit recorded
}

func TestClassifyDayFullDay(t *testing.T) {
	punches := []PunchLog{
		punch("2025-11-10T10:05:00"),
		punch("2025-11-10T19:10:00"),
	}
	d := ClassifyDay(punches, shift.SystemDefault)
	assert.Equal(t, StatusFullDay, d.Status)
	assert.False(t, d.IsLate) // 5 min late, within 12-min grace
}

func TestClassifyDayHalfDay(t *testing.T) {
	punches := []PunchLog{
		punch("2025-11-10T10:00:00"),
		punch("2025-11-10T14:30:00"),
	}
	d := ClassifyDay(punches, shift.SystemDefault)
	assert.Equal(t, StatusHalfDay, d.Status)
}

func TestClassifySplitShift(t *testing.T) {
	// Split shift 09:00-13:00 / 17:00-21:00.
	timing := shift.Timing{
		WorkHours:            8,
		LateThresholdMinutes: 12,
		IsSplitShift:         true,
		Slot1Start:           shift.TimeOfDay{Hour: 9, Minute: 0},
		Slot1End:             shift.TimeOfDay{Hour: 13, Minute: 0},
		Slot2Start:           shift.TimeOfDay{Hour: 17, Minute: 0},
		Slot2End:             shift.TimeOfDay{Hour: 21, Minute: 0},
	}
	punches := []PunchLog{
		punch("2025-11-10T09:05:00"),
		punch("2025-11-10T13:02:00"),
		punch("2025-11-10T17:10:00"),
		punch("2025-11-10T21:00:00"),
	}
	d := ClassifyDay(punches, timing)
	assert.InDelta(t, 7.78, d.TotalHours, 0.05)
	assert.Equal(t, StatusFullDay, d.Status)
	assert.False(t, d.IsLate)
	assert.False(t, d.IsEarlyExit)
}

func TestGroupByWorkdayMidnightCrossover(t *testing.T) {
	punches := []PunchLog{
		punch("2025-11-01T00:30:00"), // belongs to 2025-10-31
		punch("2025-11-01T09:00:00"), // belongs to 2025-11-01
	}
	groups := GroupByWorkday(punches)
	assert.Len(t, groups["2025-10-31"], 1)
	assert.Len(t, groups["2025-11-01"], 1)
}
