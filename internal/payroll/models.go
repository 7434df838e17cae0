/*
Package payroll - Salary Adjustments and Holds

==============================================================================
FILE: internal/payroll/models.go
==============================================================================

DESCRIPTION:
    SalaryAdjustment is a free-form addition or deduction applied to one
    employee's month; the reserved category INCENTIVE routes to gross
    rather than net. An unreleased SalaryHold excludes an (employee, month)
    from batch runs and marks a direct calculation as held; at most one
    unreleased hold may exist per key.

==============================================================================
*/
package payroll

import (
	"time"

	"github.com/iris-hr/biopayroll/internal/models"
)

const (
	AdjustmentDeduction = "DEDUCTION"
	AdjustmentAddition  = "ADDITION"

	CategoryIncentive = "INCENTIVE"

	HoldTypeManual = "MANUAL"
	HoldTypeAuto   = "AUTO"
)

// SalaryAdjustment is upserted per (employee, month, type, category).
type SalaryAdjustment struct {
	models.BaseModel

	EmployeeCode string  `gorm:"type:varchar(50);uniqueIndex:idx_adjustment_key;not null" json:"employee_code"`
	Month        string  `gorm:"type:varchar(7);uniqueIndex:idx_adjustment_key;not null" json:"month"`
	Type         string  `gorm:"type:varchar(20);uniqueIndex:idx_adjustment_key;not null" json:"type"`
	Category     string  `gorm:"type:varchar(100);uniqueIndex:idx_adjustment_key;not null" json:"category"`
	Amount       float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description  string  `gorm:"type:text" json:"description,omitempty"`
}

func (SalaryAdjustment) TableName() string { return "salaryadjustments" }

// IsIncentive reports whether this addition routes to gross rather than net.
func (a SalaryAdjustment) IsIncentive() bool {
	return a.Type == AdjustmentAddition && a.Category == CategoryIncentive
}

// SalaryHold, while unreleased, excludes (employee, month) from batch runs;
// a direct Calculate still computes every component and sets IsHeld. The
// exclusivity invariant - at most one unreleased hold per key - is enforced
// at write time by a partial unique index over (employee_code, month)
// restricted to unreleased rows; concurrent attempts to create a second
// unreleased hold fail with a duplicate-key conflict.
type SalaryHold struct {
	models.BaseModel

	EmployeeCode string     `gorm:"type:varchar(50);uniqueIndex:idx_hold_active;not null" json:"employee_code"`
	Month        string     `gorm:"type:varchar(7);uniqueIndex:idx_hold_active,where:is_released = false;not null" json:"month"`
	HoldType     string     `gorm:"type:varchar(20);not null" json:"hold_type"`
	Reason       string     `gorm:"type:text" json:"reason,omitempty"`
	IsReleased   bool       `gorm:"default:false" json:"is_released"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
}

func (SalaryHold) TableName() string { return "salaryholds" }
