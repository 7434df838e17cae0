/*
Package snapshot - Monthly Salary Snapshot Store

==============================================================================
FILE: internal/snapshot/snapshot.go
==============================================================================

DESCRIPTION:
    MonthlySalary is the persistent, self-contained record of one
    (employee, month) salary calculation: every numeric component plus a
    JSON blob carrying the full daily breakdown, leave dates, and
    regularization list, sufficient for a read-only consumer (an employee
    portal, a PDF renderer) to reproduce the same document without
    recomputing anything. Once FINALIZED, a row is immutable to routine
    recomputation - upsertSalary preserves FINALIZED status unconditionally.

DEVELOPER GUIDELINES:
    OK to modify: Add new breakdown fields to Breakdown
    CAUTION: FinalizeSalary is the only path that may set status=FINALIZED;
    UpsertSalary must never downgrade FINALIZED back to DRAFT.

==============================================================================
*/
package snapshot

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iris-hr/biopayroll/internal/attendance"
	"github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/leave"
	"github.com/iris-hr/biopayroll/internal/models"
	"github.com/iris-hr/biopayroll/internal/payroll"
)

const (
	StatusDraft     = 0
	StatusFinalized = 1
)

// Breakdown is the full, self-contained payload stored in MonthlySalary's
// BreakdownJSON column - everything a read-only consumer needs to
// reproduce the salary document without recomputation.
type Breakdown struct {
	DailyBreakdown   []attendance.DailyBreakdown `json:"daily_breakdown"`
	PaidLeaveDates   []leave.Date                `json:"paid_leave_dates"`
	CasualLeaveDates []leave.Date                `json:"casual_leave_dates"`
	Regularizations  []models.Regularization     `json:"regularizations"`
	Adjustments      []payroll.SalaryAdjustment  `json:"adjustments"`
	Calculation      payroll.SalaryCalculation   `json:"calculation"`
}

// MonthlySalary is the upserted-per-(employeeCode, month) snapshot row.
type MonthlySalary struct {
	models.BaseModel

	EmployeeCode string `gorm:"type:varchar(50);uniqueIndex:idx_monthly_salary_emp_month;not null" json:"employee_code"`
	Month        string `gorm:"type:varchar(7);uniqueIndex:idx_monthly_salary_emp_month;not null" json:"month"`

	GrossSalary      float64 `json:"gross_salary"`
	NetSalary        float64 `json:"net_salary"`
	BaseSalary       float64 `json:"base_salary"`
	PerDayRate       float64 `json:"per_day_rate"`
	PaidDays         float64 `json:"paid_days"`
	AbsentDays       float64 `json:"absent_days"`
	LeaveDays        float64 `json:"leave_days"`
	TotalDeductions  float64 `json:"total_deductions"`
	TotalAdditions   float64 `json:"total_additions"`
	TotalWorkedHours float64 `json:"total_worked_hours"`
	OvertimeHours    int     `json:"overtime_hours"`
	OvertimeAmount   float64 `json:"overtime_amount"`
	TDSDeduction     float64 `json:"tds_deduction"`
	ProfessionalTax  float64 `json:"professional_tax"`
	IncentiveAmount  float64 `json:"incentive_amount"`

	IsHeld     bool   `json:"is_held"`
	HoldReason string `gorm:"type:text" json:"hold_reason,omitempty"`

	BreakdownJSON datatypes.JSON `gorm:"column:breakdownjson" json:"breakdown_json"`

	Status       int       `gorm:"default:0" json:"status"` // 0=DRAFT, 1=FINALIZED
	CalculatedAt time.Time `json:"calculated_at"`
	CalculatedBy string    `gorm:"type:varchar(100)" json:"calculated_by,omitempty"`
}

func (MonthlySalary) TableName() string { return "monthlysalary" }

// IsFinalized reports whether routine recomputation must preserve this row
// as-is rather than overwrite its contents.
func (m MonthlySalary) IsFinalized() bool { return m.Status == StatusFinalized }

// BuildRow maps a SalaryCalculation plus its supporting breakdown into the
// row shape persisted by UpsertSalary.
func BuildRow(calc payroll.SalaryCalculation, breakdown Breakdown, calculatedBy string, now time.Time) (*MonthlySalary, error) {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	var absentDays, totalWorkedHours float64
	for _, day := range breakdown.DailyBreakdown {
		if day.Status == attendance.StatusAbsent {
			absentDays++
		}
		totalWorkedHours += day.TotalHours
	}

	return &MonthlySalary{
		EmployeeCode:     calc.EmployeeCode,
		Month:            calc.Month,
		GrossSalary:      calc.GrossSalary,
		NetSalary:        float64(calc.NetSalary),
		BaseSalary:       calc.BaseSalary,
		PerDayRate:       calc.PerDayRate,
		PaidDays:         calc.PayableDays,
		AbsentDays:       absentDays,
		LeaveDays:        calc.ApprovedLeaveCredit,
		TotalDeductions:  calc.TDSDeduction + calc.ProfessionalTax + calc.AdjustmentDeductions,
		TotalAdditions:   calc.OtherAdditions + calc.IncentiveAmount,
		TotalWorkedHours: totalWorkedHours,
		OvertimeHours:    calc.OvertimeHours,
		OvertimeAmount:   calc.OvertimeAmount,
		TDSDeduction:     calc.TDSDeduction,
		ProfessionalTax:  calc.ProfessionalTax,
		IncentiveAmount:  calc.IncentiveAmount,
		IsHeld:           calc.IsHeld,
		HoldReason:       calc.HoldReason,
		BreakdownJSON:    datatypes.JSON(raw),
		Status:           StatusDraft,
		CalculatedAt:     now,
		CalculatedBy:     calculatedBy,
	}, nil
}

// UpsertSalary inserts or updates the (employeeCode, month) row. If an
// existing row is FINALIZED, its status and breakdown are preserved - the
// recompute is treated as a discarded "shadow" refresh; everything else
// about row's existing identity stays put.
func UpsertSalary(db *gorm.DB, row *MonthlySalary) error {
	var existing MonthlySalary
	err := db.Where("employee_code = ? AND month = ?", row.EmployeeCode, row.Month).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return wrapDBError(db.Create(row).Error)
	case err != nil:
		return wrapDBError(err)
	}

	if existing.IsFinalized() {
		return nil
	}

	row.BaseModel = existing.BaseModel
	row.Status = existing.Status
	return wrapDBError(db.Save(row).Error)
}

// wrapDBError wraps a non-nil gorm error as a transient AppError, passing
// nil through unchanged - errors.Wrap always allocates a non-nil *AppError,
// which would otherwise turn a successful operation into a reported error.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrDatabaseOperation)
}

// GetSalary fetches one (employeeCode, month) row, optionally restricted to
// FINALIZED rows only - the mode employee-facing reads must use.
func GetSalary(db *gorm.DB, employeeCode, month string, finalizedOnly bool) (*MonthlySalary, error) {
	q := db.Where("employee_code = ? AND month = ?", employeeCode, month)
	if finalizedOnly {
		q = q.Where("status = ?", StatusFinalized)
	}
	var row MonthlySalary
	if err := q.First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Wrap(err, errors.ErrSalarySnapshotNotFound)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return &row, nil
}

// GetLatestSalary returns the most recent month's row for an employee.
func GetLatestSalary(db *gorm.DB, employeeCode string, finalizedOnly bool) (*MonthlySalary, error) {
	q := db.Where("employee_code = ?", employeeCode)
	if finalizedOnly {
		q = q.Where("status = ?", StatusFinalized)
	}
	var row MonthlySalary
	if err := q.Order("month DESC").First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Wrap(err, errors.ErrSalarySnapshotNotFound)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	return &row, nil
}

// FinalizeSalary latches status DRAFT->FINALIZED. No-op if already
// FINALIZED; errors if the row is missing.
func FinalizeSalary(db *gorm.DB, employeeCode, month, actor string) error {
	var row MonthlySalary
	err := db.Where("employee_code = ? AND month = ?", employeeCode, month).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return errors.Wrap(err, errors.ErrSalarySnapshotNotFound)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseOperation)
	}
	if row.IsFinalized() {
		return nil
	}
	row.Status = StatusFinalized
	row.CalculatedBy = actor
	return wrapDBError(db.Save(&row).Error)
}

// FinalizeAllSalariesForMonth finalizes every DRAFT row for a month and
// returns the count updated.
func FinalizeAllSalariesForMonth(db *gorm.DB, month, actor string) (int64, error) {
	result := db.Model(&MonthlySalary{}).
		Where("month = ? AND status = ?", month, StatusDraft).
		Updates(map[string]interface{}{"status": StatusFinalized, "calculated_by": actor})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrDatabaseOperation)
	}
	return result.RowsAffected, nil
}
