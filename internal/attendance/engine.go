/*
Package attendance - Monthly Attendance Engine

==============================================================================
FILE: internal/attendance/engine.go
==============================================================================

DESCRIPTION:
    The multi-pass pipeline that turns one employee's raw punches for one
    payroll cycle into a DailyBreakdown plus aggregate counters. Passes run
    in the fixed order 0-5; each pass is modeled as a function that takes
    the previous pass's breakdown and returns the next - the contract is
    the state after each pass, not an in-place update.

DEVELOPER GUIDELINES:
    DO NOT reorder passes. Regularization (2) must run before the Sunday-
    rule snapshot (3); the snapshot must run before leave application (4);
    leave application must run before Sunday marking (5).
    The sandwich rule in Pass 5 is a documented, disabled extension point -
    do not re-enable without product sign-off.

==============================================================================
*/
package attendance

import (
	"fmt"

	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/leave"
	"github.com/iris-hr/biopayroll/internal/models"
	"github.com/iris-hr/biopayroll/internal/shift"
)

// sandwichRuleEnabled gates the (disabled) rule that would mark a Sunday
// unpaid when both the preceding Saturday and following Monday are unpaid
// absences. Preserved as a documented extension point only; flipping this
// without product sign-off changes every Sunday-pay determination.
const sandwichRuleEnabled = false

// DailyBreakdown is one day's final classification after all five passes.
type DailyBreakdown struct {
	Date              cycle.LocalDate
	FirstEntry        *cycle.LocalDateTime
	LastExit          *cycle.LocalDateTime
	TotalHours        float64
	IsLate            bool
	IsLateBy30Minutes bool
	MinutesLate       *int
	IsEarlyExit       bool
	Status            Status
	LogCount          int

	IsRegularized  bool
	OriginalStatus Status

	LeaveValue float64 // sum of paid+casual leave credit for this day

	WeekoffType string // "paid" | "unpaid", set only when Status == StatusWeekoff
}

// MonthlyAttendance is the engine's output for one (employee, cycle).
type MonthlyAttendance struct {
	EmployeeCode string
	Month        string

	DailyBreakdown []DailyBreakdown

	FullDays                  int
	HalfDays                  int
	AbsentDays                int
	LateDays                  int
	LateBy30MinutesDays       int
	EarlyExits                int
	TotalWorkedHours          float64
	TotalDaysInEffectiveCycle int

	// OriginalLopForSundayRule is the Pass-3 frozen input that Pass 5 used
	// to mark Sundays, exposed for tests that assert the Sunday-rule-freeze
	// invariant. The salary calculator reads each Sunday's WeekoffType, not
	// this value.
	OriginalLopForSundayRule float64
}

// Input bundles everything the engine needs for one (employee, cycle) run.
// Punches must already cover the full cycle; Regularizations should be
// pre-filtered to APPROVED rows touching the cycle (the engine re-checks
// IsApproved defensively).
type Input struct {
	EmployeeCode string
	Month        string
	JoinDate     *cycle.LocalDate
	ExitDate     *cycle.LocalDate

	// PaidLeaves/CasualLeaves: when both are nil, both are fetched from the
	// leave store via LeaveFetcher. If either is non-nil (even empty), both
	// are used as given and no fetch happens.
	PaidLeaves   []leave.Date
	CasualLeaves []leave.Date

	Punches         []PunchLog
	Resolver        *shift.Resolver
	Regularizations []models.Regularization
}

// LeaveFetcher loads a month's approved leave dates when Input didn't
// supply them inline. Kept as an injected function so the engine itself
// stays free of persistence concerns.
type LeaveFetcher func(employeeCode, month string) (paid, casual []leave.Date, err error)

// Run executes all five passes and returns the monthly attendance result.
func Run(in Input, fetchLeaves LeaveFetcher) (*MonthlyAttendance, error) {
	cycleStart, cycleEnd, err := cycle.CycleRange(in.Month)
	if err != nil {
		return nil, err
	}

	effectiveStart := cycleStart
	if in.JoinDate != nil && in.JoinDate.After(effectiveStart) {
		effectiveStart = *in.JoinDate
	}
	effectiveEnd := cycleEnd
	if in.ExitDate != nil && in.ExitDate.Before(effectiveEnd) {
		effectiveEnd = *in.ExitDate
	}

	punchGroups := GroupByWorkday(in.Punches)

	breakdown, counters := pass1RawClassification(in, cycleStart, cycleEnd, effectiveStart, effectiveEnd, punchGroups)
	breakdown, counters = pass2ApplyRegularizations(breakdown, counters, in.Regularizations, effectiveStart, effectiveEnd)

	originalLop := pass3SnapshotSundayRuleInputs(breakdown, in.JoinDate, in.ExitDate, effectiveStart, effectiveEnd)

	paidLeaves, casualLeaves := in.PaidLeaves, in.CasualLeaves
	if paidLeaves == nil && casualLeaves == nil {
		if fetchLeaves == nil {
			return nil, fmt.Errorf("attendance: no leave dates supplied and no LeaveFetcher configured")
		}
		var err error
		paidLeaves, casualLeaves, err = fetchLeaves(in.EmployeeCode, in.Month)
		if err != nil {
			return nil, err
		}
	}
	breakdown, counters = pass4ApplyLeaves(breakdown, counters, paidLeaves, casualLeaves)

	// An employee is only a new-joiner/exiting case for this cycle when the
	// join or exit date actually truncates it; a join date years in the past
	// must not route the employee through the week-qualifying rule.
	isEdgeCycle := effectiveStart.After(cycleStart) || effectiveEnd.Before(cycleEnd)

	breakdown, counters = pass5MarkSundays(breakdown, counters, originalLop, isEdgeCycle, effectiveStart, effectiveEnd)

	return &MonthlyAttendance{
		EmployeeCode:              in.EmployeeCode,
		Month:                     in.Month,
		DailyBreakdown:            breakdown,
		FullDays:                  counters.fullDays,
		HalfDays:                  counters.halfDays,
		AbsentDays:                counters.absentDays,
		LateDays:                  counters.lateDays,
		LateBy30MinutesDays:       counters.lateBy30MinutesDays,
		EarlyExits:                counters.earlyExits,
		TotalWorkedHours:          counters.totalWorkedHours,
		TotalDaysInEffectiveCycle: daysBetweenInclusive(effectiveStart, effectiveEnd),
		OriginalLopForSundayRule:  originalLop,
	}, nil
}

type counters struct {
	fullDays            int
	halfDays            int
	absentDays          int
	lateDays            int
	lateBy30MinutesDays int
	earlyExits          int
	totalWorkedHours    float64
}

// pass1RawClassification classifies every day of the full cycle, forcing
// not-active outside the effective range.
func pass1RawClassification(in Input, cycleStart, cycleEnd, effectiveStart, effectiveEnd cycle.LocalDate, punchGroups map[string][]PunchLog) ([]DailyBreakdown, counters) {
	var out []DailyBreakdown
	var c counters

	for d := cycleStart; !d.After(cycleEnd); d = d.AddDays(1) {
		timing := in.Resolver.Resolve(in.EmployeeCode, d)
		dayPunches := punchGroups[d.String()]
		dh := ClassifyDay(dayPunches, timing)

		status := dh.Status
		inEffectiveRange := !d.Before(effectiveStart) && !d.After(effectiveEnd)
		if !inEffectiveRange {
			status = StatusNotActive
		}

		out = append(out, DailyBreakdown{
			Date:              d,
			FirstEntry:        dh.FirstEntry,
			LastExit:          dh.LastExit,
			TotalHours:        dh.TotalHours,
			IsLate:            dh.IsLate,
			IsLateBy30Minutes: dh.IsLateBy30Minutes,
			MinutesLate:       dh.MinutesLate,
			IsEarlyExit:       dh.IsEarlyExit,
			Status:            status,
			LogCount:          dh.LogCount,
		})

		if !inEffectiveRange {
			continue
		}

		switch status {
		case StatusFullDay:
			c.fullDays++
			if dh.IsLate {
				c.lateDays++
			}
			if dh.IsLateBy30Minutes {
				c.lateBy30MinutesDays++
			}
		case StatusHalfDay:
			c.halfDays++
			if dh.IsLate {
				c.lateDays++
			}
		case StatusAbsent:
			c.absentDays++
		}
		if dh.IsEarlyExit && (status == StatusFullDay || status == StatusHalfDay) {
			c.earlyExits++
		}
		c.totalWorkedHours += dh.TotalHours
	}

	return out, c
}

// pass2ApplyRegularizations upgrades absent/half-day entries per APPROVED
// regularization rows, adjusting counters to match.
func pass2ApplyRegularizations(breakdown []DailyBreakdown, c counters, regularizations []models.Regularization, effectiveStart, effectiveEnd cycle.LocalDate) ([]DailyBreakdown, counters) {
	index := indexByDate(breakdown)

	for _, r := range regularizations {
		if !r.IsApproved() {
			continue
		}
		d := cycle.NewLocalDate(r.Date.Year(), r.Date.Month(), r.Date.Day())
		if d.Before(effectiveStart) || d.After(effectiveEnd) {
			continue
		}
		i, ok := index[d.String()]
		if !ok {
			continue
		}
		day := breakdown[i]
		original := day.Status

		switch original {
		case StatusAbsent:
			c.absentDays--
		case StatusHalfDay:
			c.halfDays--
			if day.IsLate {
				c.lateDays--
			}
		default:
			continue // only absent/half-day are eligible for regularization
		}

		day.IsRegularized = true
		day.OriginalStatus = original
		day.Status = Status(r.RegularizedStatus)

		switch day.Status {
		case StatusFullDay:
			c.fullDays++
		case StatusHalfDay:
			c.halfDays++
		}

		breakdown[i] = day
	}

	return breakdown, c
}

// pass3SnapshotSundayRuleInputs freezes the LOP count the 5-day Sunday rule
// consults, before leave application can change day statuses.
func pass3SnapshotSundayRuleInputs(breakdown []DailyBreakdown, joinDate, exitDate *cycle.LocalDate, effectiveStart, effectiveEnd cycle.LocalDate) float64 {
	var lop float64
	for _, day := range breakdown {
		if day.Date.Before(effectiveStart) || day.Date.After(effectiveEnd) {
			continue
		}
		if cycle.DayOfWeek(day.Date) == 0 { // Sunday
			continue
		}
		if day.Status == StatusNotActive {
			continue
		}
		if joinDate != nil && day.Date.Equal(*joinDate) {
			continue // strictly after joinDate
		}
		if exitDate != nil && day.Date.Equal(*exitDate) {
			continue // strictly before exitDate
		}

		switch day.Status {
		case StatusAbsent:
			lop += 1.0
		case StatusHalfDay:
			lop += 0.5
		}
	}
	return lop
}

// pass4ApplyLeaves folds approved paid/casual leave into day statuses. A
// leave date only ever moves a day away from absent/half-day; a full-day is
// already paid via attendance and ineligible for credit. Whether the
// original absent/half-day counter is decremented depends on leave type and
// value, per the documented asymmetry between paid and casual leave.
func pass4ApplyLeaves(breakdown []DailyBreakdown, c counters, paidLeaves, casualLeaves []leave.Date) ([]DailyBreakdown, counters) {
	index := indexByDate(breakdown)

	applyOne := func(entry leave.Date, isPaid bool) {
		i, ok := index[entry.Date.String()]
		if !ok {
			return
		}
		day := breakdown[i]
		original := day.Status
		if original != StatusAbsent && original != StatusHalfDay {
			return // full-day and others are ineligible for leave credit
		}

		day.LeaveValue += entry.Value
		if isPaid {
			day.Status = StatusPaidLeave
			if entry.Value == 1.0 {
				decrementAbsentOrHalf(&c, original)
			}
		} else {
			day.Status = StatusCasualLeave
			if original == StatusAbsent && entry.Value == 1.0 {
				decrementAbsentOrHalf(&c, original)
			}
			// Casual leave on an originally half-day never decrements: the
			// worked 0.5 remains and the 0.5 casual credit is counted
			// separately.
		}

		breakdown[i] = day
	}

	for _, d := range paidLeaves {
		applyOne(d, true)
	}
	for _, d := range casualLeaves {
		applyOne(d, false)
	}

	return breakdown, c
}

func decrementAbsentOrHalf(c *counters, original Status) {
	switch original {
	case StatusAbsent:
		c.absentDays--
	case StatusHalfDay:
		c.halfDays--
	}
}

// pass5MarkSundays sets every Sunday's status to weekoff and determines its
// weekoffType. Counters that were accumulated for the Sunday's prior
// classification are rolled back so they always sum against the breakdown's
// final statuses.
func pass5MarkSundays(breakdown []DailyBreakdown, c counters, originalLop float64, isEdgeCycle bool, effectiveStart, effectiveEnd cycle.LocalDate) ([]DailyBreakdown, counters) {
	index := indexByDate(breakdown)

	for i, day := range breakdown {
		if day.Date.Before(effectiveStart) || day.Date.After(effectiveEnd) {
			continue
		}
		if cycle.DayOfWeek(day.Date) != 0 {
			continue
		}

		if day.IsEarlyExit && (day.Status == StatusFullDay || day.Status == StatusHalfDay) {
			c.earlyExits--
		}
		switch day.Status {
		case StatusFullDay:
			c.fullDays--
			if day.IsLate {
				c.lateDays--
			}
			if day.IsLateBy30Minutes {
				c.lateBy30MinutesDays--
			}
		case StatusHalfDay:
			c.halfDays--
			if day.IsLate {
				c.lateDays--
			}
		case StatusAbsent:
			c.absentDays--
		}

		day.Status = StatusWeekoff

		switch {
		case originalLop >= 5:
			day.WeekoffType = "unpaid"
		case isEdgeCycle:
			if weekHasQualifyingDay(breakdown, index, day.Date, effectiveStart, effectiveEnd) {
				day.WeekoffType = "paid"
			} else {
				day.WeekoffType = "unpaid"
			}
		default:
			day.WeekoffType = "paid"
		}

		if sandwichRuleEnabled {
			day.WeekoffType = applySandwichRule(breakdown, index, day)
		}

		breakdown[i] = day
	}

	return breakdown, c
}

// applySandwichRule would mark a Sunday unpaid when both the preceding
// Saturday and following Monday are unpaid absences. Disabled per
// sandwichRuleEnabled; preserved so re-enabling it is a one-line change.
func applySandwichRule(breakdown []DailyBreakdown, index map[string]int, day DailyBreakdown) string {
	sat, hasSat := index[day.Date.AddDays(-1).String()]
	mon, hasMon := index[day.Date.AddDays(1).String()]
	if hasSat && hasMon &&
		breakdown[sat].Status == StatusAbsent &&
		breakdown[mon].Status == StatusAbsent {
		return "unpaid"
	}
	return day.WeekoffType
}

// weekHasQualifyingDay reports whether the Mon-Sun calendar week containing
// d has any day, within the effective range, whose status is not absent
// and not not-active (paid/casual leave counts as qualifying).
func weekHasQualifyingDay(breakdown []DailyBreakdown, index map[string]int, d cycle.LocalDate, effectiveStart, effectiveEnd cycle.LocalDate) bool {
	monday := mondayOfWeek(d)
	for offset := 0; offset < 7; offset++ {
		wd := monday.AddDays(offset)
		if wd.Equal(d) {
			continue
		}
		if wd.Before(effectiveStart) || wd.After(effectiveEnd) {
			continue
		}
		i, ok := index[wd.String()]
		if !ok {
			continue
		}
		status := breakdown[i].Status
		if status != StatusAbsent && status != StatusNotActive {
			return true
		}
	}
	return false
}

func mondayOfWeek(d cycle.LocalDate) cycle.LocalDate {
	weekday := int(cycle.DayOfWeek(d)) // Sunday=0
	daysSinceMonday := (weekday + 6) % 7
	return d.AddDays(-daysSinceMonday)
}

func indexByDate(breakdown []DailyBreakdown) map[string]int {
	index := make(map[string]int, len(breakdown))
	for i, d := range breakdown {
		index[d.Date.String()] = i
	}
	return index
}

func daysBetweenInclusive(start, end cycle.LocalDate) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		n++
	}
	return n
}
