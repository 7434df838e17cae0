package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iris-hr/biopayroll/internal/attendance"
	"github.com/iris-hr/biopayroll/internal/models"
)

func baseInput(employeeCode string, baseSalary float64, att *attendance.MonthlyAttendance) Input {
	return Input{
		Employee: models.Employee{
			EmployeeCode: employeeCode,
			BasicSalary:  baseSalary,
		},
		Month:      "2025-11",
		Attendance: att,
	}
}

// TestCalculateFullMonthWithPaidSundays: 21 full days, 5 paid Sundays,
// no leaves, no adjustments, basicSalary=30000. Professional Tax applies
// (gross>12000 and baseSalary>=15000), so net = gross - 200.
func TestCalculateFullMonthWithPaidSundays(t *testing.T) {
	att := &attendance.MonthlyAttendance{
		FullDays: 21,
		DailyBreakdown: []attendance.DailyBreakdown{
			{Status: attendance.StatusWeekoff, WeekoffType: "paid"},
			{Status: attendance.StatusWeekoff, WeekoffType: "paid"},
			{Status: attendance.StatusWeekoff, WeekoffType: "paid"},
			{Status: attendance.StatusWeekoff, WeekoffType: "paid"},
			{Status: attendance.StatusWeekoff, WeekoffType: "paid"},
		},
	}

	out, err := Calculate(baseInput("E1", 30000, att))
	require.NoError(t, err)

	assert.InDelta(t, 967.74, out.PerDayRate, 0.01)
	assert.Equal(t, 5, out.PayableSundays)
	assert.InDelta(t, 26.0, out.PayableDays, 0.001)
	assert.InDelta(t, 25161.29, out.GrossSalary, 0.01)
	assert.InDelta(t, 200.0, out.ProfessionalTax, 0.01)
	assert.Equal(t, 0.0, out.TDSDeduction)
	assert.Equal(t, int64(24961), out.NetSalary)
}

// TestCalculatePTThresholdWithHalfDay: 20 full + 1 half + 4
// absent days, baseSalary=20000. Half-day counts as 0.5 payable. PT=200
// since gross>12000 and baseSalary>=15000; TDS=0 since baseSalary is not
// below 15000 regardless of cumulative salary.
func TestCalculatePTThresholdWithHalfDay(t *testing.T) {
	att := &attendance.MonthlyAttendance{
		FullDays:   20,
		HalfDays:   1,
		AbsentDays: 4,
	}

	out, err := Calculate(baseInput("E2", 20000, att))
	require.NoError(t, err)

	assert.InDelta(t, 20.5, out.PayableDays, 0.001)
	assert.InDelta(t, 200.0, out.ProfessionalTax, 0.01)
	assert.Equal(t, 0.0, out.TDSDeduction)
	assert.Equal(t, int64(13026), out.NetSalary)
}

// TestCalculateOvertimeToggleOff: hours in excess of the shift are
// computed but never paid while the monthly toggle is off.
func TestCalculateOvertimeToggleOff(t *testing.T) {
	att := &attendance.MonthlyAttendance{
		FullDays: 2,
		DailyBreakdown: []attendance.DailyBreakdown{
			{Status: attendance.StatusFullDay, TotalHours: 11},
			{Status: attendance.StatusFullDay, TotalHours: 11},
		},
	}

	in := baseInput("E5", 20000, att)
	in.OvertimeEnabled = false
	in.ShiftWorkHours = 9

	out, err := Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, 0, out.OvertimeHours)
	assert.Equal(t, 0.0, out.OvertimeAmount)
}

// TestCalculateOvertimeToggleOn: same two 11-hour days, but
// the toggle is on, so each day's 2h excess (> the 1h threshold) counts in
// full: overtimeHours = floor((11-9)+(11-9)) = 4.
func TestCalculateOvertimeToggleOn(t *testing.T) {
	att := &attendance.MonthlyAttendance{
		FullDays: 2,
		DailyBreakdown: []attendance.DailyBreakdown{
			{Status: attendance.StatusFullDay, TotalHours: 11},
			{Status: attendance.StatusFullDay, TotalHours: 11},
		},
	}

	in := baseInput("E5", 20000, att)
	in.OvertimeEnabled = true
	in.ShiftWorkHours = 9

	out, err := Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, 4, out.OvertimeHours)
	// Overtime uses the unrounded hourly rate 20000/(31*9), not the
	// 2-place HourlyRate reported on the result.
	assert.InDelta(t, float64(out.OvertimeHours)*20000.0/(31*9), out.OvertimeAmount, 0.01)
}

// TestCalculateTDSRequiresAllThreeConditions exercises the AND of the three
// TDS eligibility conditions: low base salary, cumulative-cycle threshold,
// and non-exempt department/designation.
func TestCalculateTDSRequiresAllThreeConditions(t *testing.T) {
	att := &attendance.MonthlyAttendance{FullDays: 26}

	in := baseInput("E6", 10000, att)
	in.Employee.Department = "Housekeeping"
	in.Employee.Designation = "Cleaner"
	in.JoinMonth = "2020-01" // far more than enough cycles to cross 50000 cumulative

	out, err := Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.TDSDeduction) // CLEAN designation exempts regardless of cumulative salary

	in.Employee.Designation = "Assembler"
	out2, err := Calculate(in)
	require.NoError(t, err)
	assert.Greater(t, out2.TDSDeduction, 0.0)
}

// TestCalculateHoldSurfacesReason confirms a held employee's calculation
// still completes, carrying the hold flag and reason rather than erroring.
func TestCalculateHoldSurfacesReason(t *testing.T) {
	att := &attendance.MonthlyAttendance{FullDays: 26}
	in := baseInput("E7", 20000, att)
	in.Hold = &SalaryHold{EmployeeCode: "E7", Month: "2025-11", HoldType: HoldTypeManual, Reason: "pending document verification"}

	out, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, out.IsHeld)
	assert.Equal(t, "pending document verification", out.HoldReason)
}

// TestCalculateMissingBaseSalaryUsesFallback confirms a zero BasicSalary
// falls back to the configured default and records a warning rather than
// silently computing a zero salary.
func TestCalculateMissingBaseSalaryUsesFallback(t *testing.T) {
	att := &attendance.MonthlyAttendance{FullDays: 26}
	in := baseInput("E8", 0, att)
	in.FallbackBaseSalary = 15000

	out, err := Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, out.BaseSalary)
	assert.NotEmpty(t, out.Warnings)
}
