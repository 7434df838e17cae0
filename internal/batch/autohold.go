/*
Package batch - Auto-Hold Detection

==============================================================================
FILE: internal/batch/autohold.go
==============================================================================

DESCRIPTION:
    Before calculating an employee's salary for a cycle, the batch driver
    peeks one month ahead: if any one of the first days of next month shows
    no non-absent attendance, an AUTO SalaryHold is raised
    pre-emptively so payroll doesn't run unattended on a likely-exited
    employee. The check is deliberately narrow - dates 1-5, excluding
    Sunday - and idempotent: no hold is created when any unreleased hold
    (MANUAL or AUTO) already exists for that (employee, month).

==============================================================================
*/
package batch

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/payroll"
)

// NonAbsentCheckFunc reports whether an employee has at least one punch on
// the given calendar date that produced a non-absent classification.
type NonAbsentCheckFunc func(employeeCode string, date cycle.LocalDate) (bool, error)

// nextCalendarMonth returns the "YYYY-MM" calendar-month label (not a
// payroll cycle label) following the calendar month that cycle month's end
// date (the 25th) falls in, e.g. payroll month "2025-11" ends 2025-11-25,
// so the next calendar month to inspect is December.
func nextCalendarMonth(month string) (string, error) {
	_, end, err := cycle.CycleRange(month)
	if err != nil {
		return "", err
	}
	first := time.Date(end.Time().Year(), end.Time().Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	return fmt.Sprintf("%04d-%02d", next.Year(), next.Month()), nil
}

// CheckAndCreateAutoHold runs the auto-hold check for one employee against
// payroll month's following calendar month: if any of that month's dates
// 1-5, excluding Sunday, shows no non-absent classification, an AUTO
// SalaryHold is created for that next month - unless an unreleased hold
// already exists for it.
func CheckAndCreateAutoHold(db *gorm.DB, employeeCode, month string, hasNonAbsent NonAbsentCheckFunc) error {
	nextMonth, err := nextCalendarMonth(month)
	if err != nil {
		return err
	}
	y, m, err := splitMonthLabel(nextMonth)
	if err != nil {
		return err
	}

	triggered := false
	for day := 1; day <= 5; day++ {
		date := cycle.NewLocalDate(y, m, day)
		if cycle.DayOfWeek(date) == time.Sunday {
			continue
		}
		ok, err := hasNonAbsent(employeeCode, date)
		if err != nil {
			return errors.Wrap(err, errors.ErrDatabaseOperation)
		}
		if !ok {
			triggered = true
			break
		}
	}
	if !triggered {
		return nil
	}

	var existing payroll.SalaryHold
	err = db.Where("employee_code = ? AND month = ? AND is_released = ?", employeeCode, nextMonth, false).
		First(&existing).Error
	if err == nil {
		return nil // already held, idempotent no-op
	}
	if err != gorm.ErrRecordNotFound {
		return errors.Wrap(err, errors.ErrDatabaseOperation)
	}

	hold := payroll.SalaryHold{
		EmployeeCode: employeeCode,
		Month:        nextMonth,
		HoldType:     payroll.HoldTypeAuto,
		Reason:       "no attendance activity detected in the first five days of the month",
	}
	if err := db.Create(&hold).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return nil
}

func splitMonthLabel(month string) (int, time.Month, error) {
	var y, m int
	if _, err := fmt.Sscanf(month, "%04d-%02d", &y, &m); err != nil {
		return 0, 0, fmt.Errorf("batch: invalid month label %q: %w", month, err)
	}
	return y, time.Month(m), nil
}
