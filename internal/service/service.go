/*
Package service - Payroll Engine Orchestration Service

==============================================================================
FILE: internal/service/service.go
==============================================================================

DESCRIPTION:
    The single place that wires the pure calculation packages (attendance,
    payroll, snapshot, batch) to the database: one struct holding *gorm.DB
    plus *logrus.Logger, with one method per public-contract operation -
    CalculateSalary, CalculateMonthlyHours, BatchCalculate, FinalizeSalary,
    FinalizeAllSalaries. internal/api's handlers are thin adapters over
    this struct; this struct itself holds no HTTP concerns.

DEVELOPER GUIDELINES:
    OK to modify: Add new orchestration methods
    CAUTION: this is the only place allowed to mix persistence with the
    pure attendance/payroll packages - keep those packages themselves
    database-free.

==============================================================================
*/
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/iris-hr/biopayroll/internal/attendance"
	"github.com/iris-hr/biopayroll/internal/batch"
	"github.com/iris-hr/biopayroll/internal/config"
	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/leave"
	"github.com/iris-hr/biopayroll/internal/logger"
	"github.com/iris-hr/biopayroll/internal/models"
	"github.com/iris-hr/biopayroll/internal/payroll"
	"github.com/iris-hr/biopayroll/internal/shift"
	"github.com/iris-hr/biopayroll/internal/snapshot"
)

// PayrollService orchestrates one (employee, month) calculation end to end,
// and exposes the batch driver over the same DB handle.
type PayrollService struct {
	db  *gorm.DB
	cfg *config.AppConfig
	log *logrus.Logger
}

// NewPayrollService builds a PayrollService over an established connection.
func NewPayrollService(db *gorm.DB, cfg *config.AppConfig, log *logrus.Logger) *PayrollService {
	return &PayrollService{db: db, cfg: cfg, log: log}
}

// CalculateMonthlyHours runs the attendance engine for one employee/month,
// pulling punches, shift data, regularizations, and leave dates from the
// database, and returns the raw MonthlyAttendance without touching payroll.
func (s *PayrollService) CalculateMonthlyHours(ctx context.Context, employeeCode, month string) (*attendance.MonthlyAttendance, error) {
	emp, err := s.loadEmployee(employeeCode)
	if err != nil {
		return nil, err
	}

	resolver, err := s.loadResolver(employeeCode, month)
	if err != nil {
		return nil, err
	}

	punches, err := s.loadPunches(employeeCode, month)
	if err != nil {
		return nil, err
	}

	regularizations, err := s.loadRegularizations(employeeCode, month)
	if err != nil {
		return nil, err
	}

	var joinDate, exitDate *cycle.LocalDate
	jd := cycle.NewLocalDate(emp.JoiningDate.Year(), emp.JoiningDate.Month(), emp.JoiningDate.Day())
	joinDate = &jd
	if emp.ExitDate != nil {
		ed := cycle.NewLocalDate(emp.ExitDate.Year(), emp.ExitDate.Month(), emp.ExitDate.Day())
		exitDate = &ed
	}

	in := attendance.Input{
		EmployeeCode:    employeeCode,
		Month:           month,
		JoinDate:        joinDate,
		ExitDate:        exitDate,
		Punches:         punches,
		Resolver:        resolver,
		Regularizations: regularizations,
	}

	return attendance.Run(in, s.fetchLeaves)
}

// CalculateSalary runs the attendance engine then the salary calculator for
// one employee/month, persisting nothing - callers that want the snapshot
// written call CalculateAndSnapshot instead (batchCalculate does both).
func (s *PayrollService) CalculateSalary(ctx context.Context, employeeCode, month string) (*payroll.SalaryCalculation, error) {
	att, err := s.CalculateMonthlyHours(ctx, employeeCode, month)
	if err != nil {
		return nil, err
	}
	return s.calculateSalaryFromAttendance(employeeCode, month, att)
}

func (s *PayrollService) calculateSalaryFromAttendance(employeeCode, month string, att *attendance.MonthlyAttendance) (*payroll.SalaryCalculation, error) {
	emp, err := s.loadEmployee(employeeCode)
	if err != nil {
		return nil, err
	}

	resolver, err := s.loadResolver(employeeCode, month)
	if err != nil {
		return nil, err
	}
	cycleStart, _, err := cycle.CycleRange(month)
	if err != nil {
		return nil, err
	}
	timing := resolver.Resolve(employeeCode, cycleStart)

	adjustments, err := s.loadAdjustments(employeeCode, month)
	if err != nil {
		return nil, err
	}

	hold, err := s.loadUnreleasedHold(employeeCode, month)
	if err != nil {
		return nil, err
	}

	entitlement, err := s.loadLeaveEntitlement(employeeCode, cycleStart.Time().Year())
	if err != nil {
		return nil, err
	}

	overtimeEnabled, err := s.loadOvertimeToggle(employeeCode, month)
	if err != nil {
		return nil, err
	}

	in := payroll.Input{
		Employee:           emp,
		Month:              month,
		Attendance:         att,
		JoinMonth:          cycle.Label(cycle.NewLocalDate(emp.JoiningDate.Year(), emp.JoiningDate.Month(), emp.JoiningDate.Day())),
		ShiftWorkHours:     timing.WorkHours,
		Adjustments:        adjustments,
		Hold:               hold,
		LeaveEntitlement:   entitlement,
		OvertimeEnabled:    overtimeEnabled,
		FallbackBaseSalary: s.cfg.FallbackBaseSalary,
	}

	calc, err := payroll.Calculate(in)
	if err != nil {
		return nil, err
	}
	for _, w := range calc.Warnings {
		logger.WithCycle(s.log, employeeCode, month).Warn(w)
	}
	return calc, nil
}

// CalculateAndSnapshot runs CalculateSalary and immediately upserts the
// resulting row, returning the persisted snapshot.
func (s *PayrollService) CalculateAndSnapshot(ctx context.Context, employeeCode, month, actor string) (*snapshot.MonthlySalary, error) {
	att, err := s.CalculateMonthlyHours(ctx, employeeCode, month)
	if err != nil {
		return nil, err
	}
	calc, err := s.calculateSalaryFromAttendance(employeeCode, month, att)
	if err != nil {
		return nil, err
	}

	paidLeaves, casualLeaves, err := s.fetchLeaves(employeeCode, month)
	if err != nil {
		return nil, err
	}
	regularizations, err := s.loadRegularizations(employeeCode, month)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.loadAdjustments(employeeCode, month)
	if err != nil {
		return nil, err
	}

	breakdown := snapshot.Breakdown{
		DailyBreakdown:   att.DailyBreakdown,
		PaidLeaveDates:   paidLeaves,
		CasualLeaveDates: casualLeaves,
		Regularizations:  regularizations,
		Adjustments:      adjustments,
		Calculation:      *calc,
	}

	row, err := snapshot.BuildRow(*calc, breakdown, actor, time.Now())
	if err != nil {
		return nil, err
	}
	if err := snapshot.UpsertSalary(s.db, row); err != nil {
		return nil, err
	}
	return row, nil
}

// BatchCalculate runs the chunked batch driver for every active employee in
// month.
func (s *PayrollService) BatchCalculate(ctx context.Context, month string, chunkSize int) (*batch.Result, error) {
	cycleStart, cycleEnd, err := cycle.CycleRange(month)
	if err != nil {
		return nil, err
	}

	codes, err := batch.LoadActiveEmployeeCodes(s.db, cycleStart.String(), cycleEnd.String())
	if err != nil {
		return nil, err
	}

	if chunkSize <= 0 {
		chunkSize = s.cfg.BatchChunkSize
	}
	opts := batch.Options{
		Month:           month,
		ChunkSize:       chunkSize,
		EmployeeTimeout: time.Duration(s.cfg.BatchEmployeeTimeoutSeconds) * time.Second,
		ChunkYield:      time.Duration(s.cfg.BatchChunkYieldMillis) * time.Millisecond,
		Log:             s.log,
		CheckHold: func(employeeCode string) (bool, string, error) {
			hold, err := s.loadUnreleasedHold(employeeCode, month)
			if err != nil {
				return false, "", err
			}
			if hold == nil {
				return false, "", nil
			}
			return true, hold.Reason, nil
		},
		RunAutoHoldCheck: func(employeeCode string) error {
			return batch.CheckAndCreateAutoHold(s.db, employeeCode, month, s.hasNonAbsentPunch)
		},
		Calculate: func(ctx context.Context, employeeCode string) (*payroll.SalaryCalculation, error) {
			row, err := s.CalculateAndSnapshot(ctx, employeeCode, month, "batch")
			if err != nil {
				return nil, err
			}
			return &payroll.SalaryCalculation{
				EmployeeCode: row.EmployeeCode,
				Month:        row.Month,
				GrossSalary:  row.GrossSalary,
				NetSalary:    int64(row.NetSalary),
			}, nil
		},
	}

	return batch.Run(ctx, codes, opts)
}

// FinalizeSalary latches one employee/month's snapshot to FINALIZED.
func (s *PayrollService) FinalizeSalary(employeeCode, month, actor string) error {
	return snapshot.FinalizeSalary(s.db, employeeCode, month, actor)
}

// FinalizeAllSalaries latches every DRAFT snapshot in month to FINALIZED.
func (s *PayrollService) FinalizeAllSalaries(month, actor string) (int64, error) {
	return snapshot.FinalizeAllSalariesForMonth(s.db, month, actor)
}

func (s *PayrollService) loadEmployee(employeeCode string) (models.Employee, error) {
	var emp models.Employee
	err := s.db.Where("employee_code = ?", employeeCode).First(&emp).Error
	if err == gorm.ErrRecordNotFound {
		return emp, errors.Wrap(err, errors.ErrEmployeeNotFound)
	}
	if err != nil {
		return emp, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return emp, nil
}

func (s *PayrollService) loadResolver(employeeCode, month string) (*shift.Resolver, error) {
	start, end, err := cycle.CycleRange(month)
	if err != nil {
		return nil, err
	}
	return s.loadResolverForRange(employeeCode, start, end)
}

// loadResolverForRange builds a Resolver from the assignments overlapping
// [start, end] - the full cycle for a monthly run, or a single date for
// the auto-hold check's day classification.
func (s *PayrollService) loadResolverForRange(employeeCode string, start, end cycle.LocalDate) (*shift.Resolver, error) {
	var assignments []shift.ShiftAssignment
	if err := s.db.Where("employee_code = ? AND from_date <= ? AND to_date >= ?", employeeCode, end.Time(), start.Time()).
		Find(&assignments).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}

	var shifts []shift.Shift
	if err := s.db.Find(&shifts).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}

	var emp models.Employee
	defaults := map[string]string{}
	if err := s.db.Where("employee_code = ?", employeeCode).First(&emp).Error; err == nil {
		defaults[employeeCode] = emp.ShiftName
	}

	return shift.NewResolver(assignments, shifts, defaults), nil
}

// devicelogsTable returns the device-sync partition table name
// ("devicelogs_MM_YYYY") for the calendar month a cycle date falls in.
func devicelogsTable(d cycle.LocalDate) string {
	return fmt.Sprintf("devicelogs_%02d_%04d", int(d.Time().Month()), d.Time().Year())
}

func (s *PayrollService) loadPunches(employeeCode, month string) ([]attendance.PunchLog, error) {
	start, end, err := cycle.CycleRange(month)
	if err != nil {
		return nil, err
	}

	var punches []attendance.PunchLog
	seen := map[string]bool{}
	for d := start; !d.After(end); d = d.AddDays(1) {
		table := devicelogsTable(d)
		if seen[table] {
			continue
		}
		seen[table] = true

		var rows []struct {
			UserID    string    `gorm:"column:userid"`
			LogDate   time.Time `gorm:"column:logdate"`
			Direction string    `gorm:"column:direction"`
		}
		err := s.db.Table(table).
			Where("userid = ?", employeeCode).
			Find(&rows).Error
		if err != nil {
			// A missing monthly device-log table is an expected gap (no
			// punches recorded yet that month), not a fatal error.
			continue
		}
		for _, r := range rows {
			punches = append(punches, attendance.PunchLog{
				EmployeeCode: employeeCode,
				LogTimestamp: toLocalDateTime(r.LogDate),
				Direction:    r.Direction,
			})
		}
	}
	return punches, nil
}

func toLocalDateTime(t time.Time) cycle.LocalDateTime {
	dt, _ := cycle.ParsePunchTimestamp(t.Format("2006-01-02T15:04:05"))
	return dt
}

func (s *PayrollService) loadRegularizations(employeeCode, month string) ([]models.Regularization, error) {
	start, end, err := cycle.CycleRange(month)
	if err != nil {
		return nil, err
	}
	var regs []models.Regularization
	err = s.db.Where("employee_code = ? AND date BETWEEN ? AND ? AND status = ?",
		employeeCode, start.Time(), end.Time(), "APPROVED").Find(&regs).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return regs, nil
}

func (s *PayrollService) fetchLeaves(employeeCode, month string) ([]leave.Date, []leave.Date, error) {
	var usage leave.MonthlyLeaveUsage
	err := s.db.Where("employee_code = ? AND month = ?", employeeCode, month).First(&usage).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	paid, err := usage.PaidLeaveDates()
	if err != nil {
		return nil, nil, err
	}
	casual, err := usage.CasualLeaveDates()
	if err != nil {
		return nil, nil, err
	}
	return paid, casual, nil
}

func (s *PayrollService) loadAdjustments(employeeCode, month string) ([]payroll.SalaryAdjustment, error) {
	var adjustments []payroll.SalaryAdjustment
	err := s.db.Where("employee_code = ? AND month = ?", employeeCode, month).Find(&adjustments).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return adjustments, nil
}

func (s *PayrollService) loadUnreleasedHold(employeeCode, month string) (*payroll.SalaryHold, error) {
	var hold payroll.SalaryHold
	err := s.db.Where("employee_code = ? AND month = ? AND is_released = ?", employeeCode, month, false).
		First(&hold).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return &hold, nil
}

func (s *PayrollService) loadLeaveEntitlement(employeeCode string, year int) (*leave.LeaveEntitlement, error) {
	var entitlement leave.LeaveEntitlement
	err := s.db.Where("employee_code = ? AND year = ?", employeeCode, year).First(&entitlement).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return &entitlement, nil
}

func (s *PayrollService) loadOvertimeToggle(employeeCode, month string) (bool, error) {
	var toggle models.OvertimeToggle
	err := s.db.Where("employee_code = ? AND month = ?", employeeCode, month).First(&toggle).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return toggle.IsOvertimeEnabled, nil
}

// hasNonAbsentPunch reports whether employeeCode's punches on workday d
// classify as anything other than absent under the shift in force that
// day - used by the auto-hold check. A stray punch row alone is not
// activity: a lone check-in, or a pair worth less than half the shift's
// work hours, still classifies absent and must still trigger the hold.
func (s *PayrollService) hasNonAbsentPunch(employeeCode string, d cycle.LocalDate) (bool, error) {
	punches, err := s.loadPunchesForWorkday(employeeCode, d)
	if err != nil {
		return false, err
	}
	if len(punches) == 0 {
		return false, nil
	}

	resolver, err := s.loadResolverForRange(employeeCode, d, d)
	if err != nil {
		return false, err
	}
	day := attendance.ClassifyDay(punches, resolver.Resolve(employeeCode, d))
	return day.Status != attendance.StatusAbsent, nil
}

// loadPunchesForWorkday fetches the punches belonging to workday d: rows
// dated d, plus rows dated d+1 whose early-morning hours the crossover
// rule folds back onto d.
func (s *PayrollService) loadPunchesForWorkday(employeeCode string, d cycle.LocalDate) ([]attendance.PunchLog, error) {
	next := d.AddDays(1)

	var punches []attendance.PunchLog
	seen := map[string]bool{}
	for _, cd := range []cycle.LocalDate{d, next} {
		table := devicelogsTable(cd)
		if seen[table] {
			continue
		}
		seen[table] = true

		var rows []struct {
			UserID    string    `gorm:"column:userid"`
			LogDate   time.Time `gorm:"column:logdate"`
			Direction string    `gorm:"column:direction"`
		}
		err := s.db.Table(table).
			Where("userid = ? AND DATE(logdate) IN (?, ?)", employeeCode, d.String(), next.String()).
			Find(&rows).Error
		if err != nil {
			// A missing monthly device-log table is an expected gap, not
			// a fatal error.
			continue
		}
		for _, r := range rows {
			punches = append(punches, attendance.PunchLog{
				EmployeeCode: employeeCode,
				LogTimestamp: toLocalDateTime(r.LogDate),
				Direction:    r.Direction,
			})
		}
	}

	groups := attendance.GroupByWorkday(punches)
	return groups[d.String()], nil
}
