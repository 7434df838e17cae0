/*
Package payroll - Salary Calculator

==============================================================================
FILE: internal/payroll/calculator.go
==============================================================================

DESCRIPTION:
    Consumes one employee's MonthlyAttendance plus base salary, adjustments,
    hold status, overtime toggle, and leave entitlement, and produces a
    SalaryCalculation: gross, deductions, net, and every intermediate
    component needed to explain the result. Monetary arithmetic runs on
    decimal.Decimal internally so repeated recomputation of the same inputs
    is bit-reproducible; float64 only appears at the struct boundary, where
    the snapshot store and PDF renderer consume it.

DEVELOPER GUIDELINES:
    CAUTION: step order matters - gross must be finalized before
    Professional Tax and TDS are evaluated, both of which read gross.
    DO NOT round intermediate values: every step computes on the unrounded
    rates and amounts. Only TDS (2 places) and Net (whole rupees) are
    rounded inside the calculation; each float64 field of SalaryCalculation
    is a 2-place rounding of its internal value, for reporting only.

==============================================================================
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/iris-hr/biopayroll/internal/attendance"
	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/leave"
	"github.com/iris-hr/biopayroll/internal/models"
)

const (
	professionalTaxAmount    = 200
	professionalTaxThreshold = 12000
	professionalTaxMinBase   = 15000
	tdsRate                  = 0.10
	tdsMaxBaseSalary         = 15000
	tdsCumulativeThreshold   = 50000
	overtimeExcessThreshold  = 1.0
)

// Input bundles everything the calculator needs for one (employee, cycle).
type Input struct {
	Employee   models.Employee
	Month      string
	Attendance *attendance.MonthlyAttendance

	JoinMonth string // cycle label of the employee's joining month, for TDS cumulative-cycle counting

	// ShiftWorkHours is the work hours (W) of the shift the caller resolved
	// for the employee, used for the hourly rate and overtime steps. Falls back
	// to the system default (9h) when unset.
	ShiftWorkHours float64

	Adjustments      []SalaryAdjustment
	Hold             *SalaryHold // unreleased hold, if any
	LeaveEntitlement *leave.LeaveEntitlement
	OvertimeEnabled  bool

	// FallbackBaseSalary is used, with a warning, when Employee.BasicSalary
	// is zero - a missing base salary must never silently resolve to zero.
	FallbackBaseSalary float64
}

// SalaryCalculation is the calculator's output - every monetary component
// is kept even when zero-valued so a snapshot consumer can distinguish
// "zero" from "not applicable."
type SalaryCalculation struct {
	EmployeeCode string
	Month        string

	BaseSalary float64
	PerDayRate float64
	HourlyRate float64

	PayableSundays      int
	ApprovedLeaveCredit float64
	LOPDays             float64
	PayableDays         float64
	AttendancePay       float64

	OvertimeHours  int
	OvertimeAmount float64

	IncentiveAmount      float64
	OtherAdditions       float64
	AdjustmentDeductions float64

	GrossSalary float64

	ProfessionalTax float64
	TDSDeduction    float64

	NetSalary int64

	IsHeld     bool
	HoldReason string

	Warnings []string
}

// Calculate runs steps 1-12 of the salary calculation (step 13, snapshot
// persistence, belongs to the snapshot package). Returns a fully populated
// SalaryCalculation even when held: a held employee still gets every
// component computed so the hold is auditable, it just isn't paid out by
// the caller.
func Calculate(in Input) (*SalaryCalculation, error) {
	out := &SalaryCalculation{
		EmployeeCode: in.Employee.EmployeeCode,
		Month:        in.Month,
	}

	baseSalary := in.Employee.BasicSalary
	if baseSalary == 0 {
		baseSalary = in.FallbackBaseSalary
		out.Warnings = append(out.Warnings, "basic salary missing, using configured fallback")
	}
	out.BaseSalary = baseSalary
	base := decimal.NewFromFloat(baseSalary)

	fullCycleDays, err := cycle.DaysInCycle(in.Month)
	if err != nil {
		return nil, err
	}
	fullCycleDaysDec := decimal.NewFromInt(int64(fullCycleDays))

	// Step 1: rates.
	workHours := in.ShiftWorkHours
	if workHours == 0 {
		workHours = 9 // system-default W, per shift.SystemDefault
	}
	shiftWorkHours := decimal.NewFromFloat(workHours)

	perDayRate := base.Div(fullCycleDaysDec)
	hourlyRate := base.Div(fullCycleDaysDec.Mul(shiftWorkHours))
	out.PerDayRate = roundTo(perDayRate, 2)
	out.HourlyRate = roundTo(hourlyRate, 2)

	att := in.Attendance

	// Step 2: payable Sundays.
	payableSundays := 0
	for _, day := range att.DailyBreakdown {
		if day.Status == attendance.StatusWeekoff && day.WeekoffType == "paid" {
			payableSundays++
		}
	}
	out.PayableSundays = payableSundays

	// Step 3: approved leave credit.
	leaveCredit := decimal.Zero
	for _, day := range att.DailyBreakdown {
		if day.Status == attendance.StatusPaidLeave || day.Status == attendance.StatusCasualLeave {
			leaveCredit = leaveCredit.Add(decimal.NewFromFloat(day.LeaveValue))
		}
	}
	out.ApprovedLeaveCredit = roundTo(leaveCredit, 2)

	// Step 4: loss-of-pay days from annual entitlement.
	lopDays := decimal.Zero
	if in.LeaveEntitlement != nil {
		lopDays = decimal.NewFromFloat(in.LeaveEntitlement.LOPDays())
	}
	out.LOPDays = roundTo(lopDays, 2)

	// Step 5: payable days.
	fullDays := decimal.NewFromInt(int64(att.FullDays))
	halfDays := decimal.NewFromInt(int64(att.HalfDays))
	payableDays := fullDays.
		Add(halfDays.Mul(decimal.NewFromFloat(0.5))).
		Add(decimal.NewFromInt(int64(payableSundays))).
		Add(leaveCredit)
	out.PayableDays = roundTo(payableDays, 2)

	// Step 6: attendance pay.
	attendancePay := perDayRate.Mul(payableDays).Sub(perDayRate.Mul(lopDays))
	out.AttendancePay = roundTo(attendancePay, 2)

	// Step 7: overtime.
	overtimeHours := 0
	if in.OvertimeEnabled {
		excessTotal := 0.0
		for _, day := range att.DailyBreakdown {
			if day.Status == attendance.StatusAbsent || day.Status == attendance.StatusNotActive {
				continue
			}
			excess := day.TotalHours - shiftWorkHours.InexactFloat64()
			if excess > overtimeExcessThreshold {
				excessTotal += excess
			}
		}
		overtimeHours = int(excessTotal) // floor to whole hours
	}
	out.OvertimeHours = overtimeHours
	overtimeAmount := hourlyRate.Mul(decimal.NewFromInt(int64(overtimeHours)))
	out.OvertimeAmount = roundTo(overtimeAmount, 2)

	// Step 8: adjustments.
	incentiveAmount := decimal.Zero
	otherAdditions := decimal.Zero
	adjustmentDeductions := decimal.Zero
	for _, adj := range in.Adjustments {
		amount := decimal.NewFromFloat(adj.Amount)
		switch {
		case adj.IsIncentive():
			incentiveAmount = incentiveAmount.Add(amount)
		case adj.Type == AdjustmentAddition:
			otherAdditions = otherAdditions.Add(amount)
		case adj.Type == AdjustmentDeduction:
			adjustmentDeductions = adjustmentDeductions.Add(amount)
		}
	}
	out.IncentiveAmount = roundTo(incentiveAmount, 2)
	out.OtherAdditions = roundTo(otherAdditions, 2)
	out.AdjustmentDeductions = roundTo(adjustmentDeductions, 2)

	// Step 9: gross, with incentive.
	gross := attendancePay.Add(overtimeAmount).Add(incentiveAmount)
	out.GrossSalary = roundTo(gross, 2)

	// Step 10: Professional Tax.
	professionalTax := decimal.Zero
	if gross.GreaterThan(decimal.NewFromInt(professionalTaxThreshold)) && base.GreaterThanOrEqual(decimal.NewFromInt(professionalTaxMinBase)) {
		professionalTax = decimal.NewFromInt(professionalTaxAmount)
	}
	out.ProfessionalTax = roundTo(professionalTax, 2)

	// Step 11: TDS.
	tds := decimal.Zero
	if in.JoinMonth != "" {
		cycles, err := cycle.CyclesBetween(in.JoinMonth, in.Month)
		if err != nil {
			return nil, err
		}
		// Cumulative salary since joining is approximated as baseSalary
		// times whole payroll cycles elapsed (inclusive), not a running
		// sum of prior snapshots; see DESIGN.md.
		cumulativeSalary := base.Mul(decimal.NewFromInt(int64(cycles)))
		eligible := base.LessThan(decimal.NewFromInt(tdsMaxBaseSalary)) &&
			cumulativeSalary.GreaterThanOrEqual(decimal.NewFromInt(tdsCumulativeThreshold)) &&
			!in.Employee.IsTDSExemptRole()
		if eligible {
			tds = roundDecimal(gross.Mul(decimal.NewFromFloat(tdsRate)), 2)
		}
	}
	out.TDSDeduction = roundTo(tds, 2)

	// Step 12: net.
	net := gross.Sub(tds).Sub(professionalTax).Sub(adjustmentDeductions).Add(otherAdditions)
	out.NetSalary = net.Round(0).IntPart()

	if in.Hold != nil && !in.Hold.IsReleased {
		out.IsHeld = true
		out.HoldReason = in.Hold.Reason
	}

	return out, nil
}

func roundDecimal(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

func roundTo(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
