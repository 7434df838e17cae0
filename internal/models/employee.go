/*
Package models - Payroll Engine Data Models

==============================================================================
FILE: internal/models/employee.go
==============================================================================

DESCRIPTION:
    Defines the Employee model - the core entity the attendance and payroll
    pipeline keys off of. The business identifier is EmployeeCode (what
    biometric devices, shift assignments, leave rows, and salary snapshots
    all reference) rather than the surrogate UUID primary key.

USER PERSPECTIVE:
    - Stores employee join/exit dates, default shift, base salary
    - ExitDate is a one-way latch: once set, the employee is inactive
    - Department/Designation feed the TDS "CLEAN" exemption check

DEVELOPER GUIDELINES:
    OK to modify: Add new fields (keep EmployeeCode as the natural key)
    CAUTION: ExitDate transition is one-way; do not allow clearing it
    DO NOT modify: EmployeeCode uniqueness

==============================================================================
*/
package models

import (
	"strings"
	"time"
)

// Employee is the central entity the attendance and payroll pipeline reads.
type Employee struct {
	BaseModel

	EmployeeCode string `gorm:"type:varchar(50);uniqueIndex;not null" json:"employee_code"`
	Name         string `gorm:"type:varchar(200);not null" json:"name"`

	JoiningDate time.Time  `gorm:"type:date;not null" json:"joining_date"`
	ExitDate    *time.Time `gorm:"type:date" json:"exit_date,omitempty"`

	Department  string `gorm:"type:varchar(100)" json:"department,omitempty"`
	Designation string `gorm:"type:varchar(100)" json:"designation,omitempty"`

	BasicSalary float64 `gorm:"type:decimal(12,2);not null" json:"basic_salary"`

	ShiftName string `gorm:"type:varchar(100)" json:"shift_name,omitempty"`

	PhoneNumber   string `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	BankAccountNo string `gorm:"type:varchar(50)" json:"bank_account_no,omitempty"`
	IFSCCode      string `gorm:"type:varchar(20)" json:"ifsc_code,omitempty"`
}

func (Employee) TableName() string {
	return "employeedetails"
}

// IsActive reports whether the employee has not yet exited as of date d.
func (e *Employee) IsActive(d time.Time) bool {
	if e.ExitDate == nil {
		return true
	}
	return !d.After(*e.ExitDate)
}

// IsTDSExemptRole reports whether the employee's department or designation
// marks them as cleaning staff, exempting them from TDS regardless of
// cumulative salary.
func (e *Employee) IsTDSExemptRole() bool {
	dep := strings.ToUpper(e.Department)
	des := strings.ToUpper(e.Designation)
	return strings.Contains(dep, "CLEAN") || strings.Contains(des, "CLEAN")
}
