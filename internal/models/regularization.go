package models

import "time"

// Regularization is an admin-approved upgrade of a day's classification.
// Only APPROVED rows affect computation.
type Regularization struct {
	BaseModel

	EmployeeCode      string    `gorm:"type:varchar(50);uniqueIndex:idx_regularization_emp_date;not null" json:"employee_code"`
	Date              time.Time `gorm:"type:date;uniqueIndex:idx_regularization_emp_date;not null" json:"date"`
	OriginalStatus    string    `gorm:"type:varchar(20);not null" json:"original_status"`
	RegularizedStatus string    `gorm:"type:varchar(20);not null" json:"regularized_status"` // half-day or full-day
	Reason            string    `gorm:"type:text" json:"reason,omitempty"`
	ApprovedBy        string    `gorm:"type:varchar(100)" json:"approved_by,omitempty"`
	Status            string    `gorm:"type:varchar(20);default:PENDING" json:"status"`
}

func (Regularization) TableName() string { return "attendanceregularization" }

// IsApproved reports whether this regularization should affect computation.
func (r Regularization) IsApproved() bool { return r.Status == "APPROVED" }

// Holiday is read-only reference data, soft-deleted via IsActive.
type Holiday struct {
	BaseModel

	Date     time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Name     string    `gorm:"type:varchar(200)" json:"name,omitempty"`
	IsActive bool      `gorm:"default:true" json:"is_active"`
}

func (Holiday) TableName() string { return "holidays" }

// OvertimeToggle controls whether overtime is paid for an employee in a
// given month. Default false when absent.
type OvertimeToggle struct {
	BaseModel

	EmployeeCode      string `gorm:"type:varchar(50);uniqueIndex:idx_ot_toggle_emp_month;not null" json:"employee_code"`
	Month             string `gorm:"type:varchar(7);uniqueIndex:idx_ot_toggle_emp_month;not null" json:"month"`
	IsOvertimeEnabled bool   `json:"is_overtime_enabled"`
}

func (OvertimeToggle) TableName() string { return "monthly_ot_toggle" }
