/*
Package leave - Leave Dates, Entitlements, and Monthly Usage

==============================================================================
FILE: internal/leave/leave.go
==============================================================================

DESCRIPTION:
    A leave date carries a value restricted to {0.5, 1.0}. The canonical
    wire format is a JSON array of {date, value}; a legacy comma-separated
    date list is also accepted on read, with a default value applied per
    leave type (paid leave defaults to 1.0, casual leave to 0.5).

DEVELOPER GUIDELINES:
    DO NOT accept a leave value outside {0.5, 1.0} - ValidateValue rejects
    anything else before it can reach a stored row.

==============================================================================
*/
package leave

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/models"
)

// Date is a single leave entry: a calendar date and its credit value.
type Date struct {
	Date  cycle.LocalDate `json:"date"`
	Value float64         `json:"value"`
}

// dateJSON mirrors Date for JSON (de)serialization, since LocalDate has no
// exported fields for encoding/json to reflect over.
type dateJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MarshalJSON renders a Date as {"date":"YYYY-MM-DD","value":N}.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateJSON{Date: d.Date.String(), Value: d.Value})
}

// UnmarshalJSON parses {"date":"YYYY-MM-DD","value":N} into a Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw dateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := cycle.ParseLocalDate(raw.Date)
	if err != nil {
		return err
	}
	d.Date = parsed
	d.Value = raw.Value
	return nil
}

// ValidateValue rejects any leave value outside {0.5, 1.0}.
func ValidateValue(v float64) error {
	if v != 0.5 && v != 1.0 {
		return errors.Wrap(fmt.Errorf("leave value %v not in {0.5, 1.0}", v), errors.ErrValidationFailed)
	}
	return nil
}

// ParseJSON parses the canonical `[{"date":"...","value":...}, ...]` format.
func ParseJSON(raw string) ([]Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var dates []Date
	if err := json.Unmarshal([]byte(raw), &dates); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidationFailed)
	}
	for _, d := range dates {
		if err := ValidateValue(d.Value); err != nil {
			return nil, err
		}
	}
	return dates, nil
}

// ParseLegacyCommaSeparated parses the legacy "YYYY-MM-DD,YYYY-MM-DD" format,
// applying defaultValue (1.0 for paid leave, 0.5 for casual leave) to every
// entry.
func ParseLegacyCommaSeparated(raw string, defaultValue float64) ([]Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	dates := make([]Date, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := cycle.ParseLocalDate(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrValidationFailed)
		}
		dates = append(dates, Date{Date: d, Value: defaultValue})
	}
	return dates, nil
}

// ParseDates parses either the canonical JSON array format or, if raw does
// not look like JSON, the legacy comma-separated format.
func ParseDates(raw string, legacyDefaultValue float64) ([]Date, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		return ParseJSON(trimmed)
	}
	return ParseLegacyCommaSeparated(trimmed, legacyDefaultValue)
}

// MonthlyLeaveUsage is upserted as a single idempotent unit per
// (employee, month).
type MonthlyLeaveUsage struct {
	models.BaseModel

	EmployeeCode         string `gorm:"type:varchar(50);uniqueIndex:idx_leave_usage_emp_month;not null" json:"employee_code"`
	Month                string `gorm:"type:varchar(7);uniqueIndex:idx_leave_usage_emp_month;not null" json:"month"`
	PaidLeaveDatesJSON   string `gorm:"type:text;column:paidleavedates" json:"paid_leave_dates_json"`
	CasualLeaveDatesJSON string `gorm:"type:text;column:casualleavedates" json:"casual_leave_dates_json"`
	UpdatedBy            string `gorm:"type:varchar(100)" json:"updated_by,omitempty"`
}

func (MonthlyLeaveUsage) TableName() string { return "monthlyleaveusage" }

// PaidLeaveDates parses the stored JSON into a Date slice.
func (m MonthlyLeaveUsage) PaidLeaveDates() ([]Date, error) {
	return ParseDates(m.PaidLeaveDatesJSON, 1.0)
}

// CasualLeaveDates parses the stored JSON into a Date slice.
func (m MonthlyLeaveUsage) CasualLeaveDates() ([]Date, error) {
	return ParseDates(m.CasualLeaveDatesJSON, 0.5)
}

// LeaveEntitlement tracks annual allowance and usage, one row per
// (employee, year).
type LeaveEntitlement struct {
	models.BaseModel

	EmployeeCode     string  `gorm:"type:varchar(50);uniqueIndex:idx_entitlement_emp_year;not null" json:"employee_code"`
	Year             int     `gorm:"uniqueIndex:idx_entitlement_emp_year;not null" json:"year"`
	AllowedLeaves    float64 `json:"allowed_leaves"`
	UsedPaidLeaves   float64 `json:"used_paid_leaves"`
	UsedCasualLeaves float64 `json:"used_casual_leaves"`
}

func (LeaveEntitlement) TableName() string { return "employeeleaves" }

// LOPDays returns the loss-of-pay days for the year: used-over-allowed,
// floored at zero.
func (e LeaveEntitlement) LOPDays() float64 {
	used := e.UsedPaidLeaves + e.UsedCasualLeaves
	if used > e.AllowedLeaves {
		return used - e.AllowedLeaves
	}
	return 0
}
