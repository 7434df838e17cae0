/*
Package shift - Shift Definitions and Resolution

==============================================================================
FILE: internal/shift/shift.go
==============================================================================

DESCRIPTION:
    Shifts describe expected work hours for a day: a single window, or two
    disjoint windows for a split shift. ShiftAssignment lets an employee be
    moved onto a non-default shift for a date range. Resolve answers "what
    shift applies to employee E on date D" by consulting, in order: an
    overlapping date-ranged assignment, the employee's default shift, then
    a system default.

DEVELOPER GUIDELINES:
    OK to modify: Add new shift fields (keep startH/endH semantics)
    CAUTION: resolution order is load-bearing - assignment beats default
    beats system fallback. Changing it changes every downstream calculation.

==============================================================================
*/
package shift

import (
	"time"

	"github.com/google/uuid"

	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/models"
)

// Shift is reference data: a named work schedule.
type Shift struct {
	models.BaseModel

	Name                 string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	StartHour            int     `json:"start_hour"`
	StartMinute          int     `json:"start_minute"`
	EndHour              int     `json:"end_hour"`
	EndMinute            int     `json:"end_minute"`
	WorkHours            float64 `json:"work_hours"`
	LateThresholdMinutes int     `json:"late_threshold_minutes"`
	IsSplitShift         bool    `json:"is_split_shift"`

	Slot1StartHour   int `json:"slot1_start_hour,omitempty"`
	Slot1StartMinute int `json:"slot1_start_minute,omitempty"`
	Slot1EndHour     int `json:"slot1_end_hour,omitempty"`
	Slot1EndMinute   int `json:"slot1_end_minute,omitempty"`

	Slot2StartHour   int `json:"slot2_start_hour,omitempty"`
	Slot2StartMinute int `json:"slot2_start_minute,omitempty"`
	Slot2EndHour     int `json:"slot2_end_hour,omitempty"`
	Slot2EndMinute   int `json:"slot2_end_minute,omitempty"`
}

func (Shift) TableName() string { return "shifts" }

// ShiftAssignment overrides an employee's default shift for a date range.
type ShiftAssignment struct {
	models.BaseModel

	EmployeeCode string    `gorm:"type:varchar(50);index;not null" json:"employee_code"`
	ShiftName    string    `gorm:"type:varchar(100);not null" json:"shift_name"`
	FromDate     time.Time `gorm:"type:date;not null" json:"from_date"`
	ToDate       time.Time `gorm:"type:date;not null" json:"to_date"`
}

func (ShiftAssignment) TableName() string { return "employee_shift_assignments" }

// Overlaps reports whether d falls within [FromDate, ToDate] inclusive.
func (a ShiftAssignment) Overlaps(d cycle.LocalDate) bool {
	from := cycle.NewLocalDate(a.FromDate.Year(), a.FromDate.Month(), a.FromDate.Day())
	to := cycle.NewLocalDate(a.ToDate.Year(), a.ToDate.Month(), a.ToDate.Day())
	return !d.Before(from) && !d.After(to)
}

// Timing is the structured shift shape the classifier consumes.
type Timing struct {
	Name                 string
	StartHour, StartMin  int
	EndHour, EndMin      int
	WorkHours            float64
	LateThresholdMinutes int
	IsSplitShift         bool
	Slot1Start, Slot1End TimeOfDay
	Slot2Start, Slot2End TimeOfDay
}

// TimeOfDay is an hour:minute pair with no date or zone attached.
type TimeOfDay struct {
	Hour, Minute int
}

// SystemDefault is the fallback shift used when no assignment or employee
// default shift can be resolved: 10:00-19:00, 9h, 12-minute grace, not split.
var SystemDefault = Timing{
	Name:                 "SYSTEM_DEFAULT",
	StartHour:            10,
	StartMin:             0,
	EndHour:              19,
	EndMin:               0,
	WorkHours:            9,
	LateThresholdMinutes: 12,
	IsSplitShift:         false,
}

func fromModel(s Shift) Timing {
	return Timing{
		Name:                 s.Name,
		StartHour:            s.StartHour,
		StartMin:             s.StartMinute,
		EndHour:              s.EndHour,
		EndMin:               s.EndMinute,
		WorkHours:            s.WorkHours,
		LateThresholdMinutes: s.LateThresholdMinutes,
		IsSplitShift:         s.IsSplitShift,
		Slot1Start:           TimeOfDay{s.Slot1StartHour, s.Slot1StartMinute},
		Slot1End:             TimeOfDay{s.Slot1EndHour, s.Slot1EndMinute},
		Slot2Start:           TimeOfDay{s.Slot2StartHour, s.Slot2StartMinute},
		Slot2End:             TimeOfDay{s.Slot2EndHour, s.Slot2EndMinute},
	}
}

// Resolver resolves shift timing for an employee and date from a pre-loaded
// set of assignments and shifts, avoiding a query per day of a cycle.
type Resolver struct {
	// Assignments overlapping the cycle under evaluation, any employee.
	Assignments []ShiftAssignment
	// Shifts indexed by name.
	ShiftsByName map[string]Shift
	// EmployeeDefaultShift maps employeeCode to its default shift name.
	EmployeeDefaultShift map[string]string
}

// NewResolver builds a Resolver from the raw rows a cycle's computation needs.
func NewResolver(assignments []ShiftAssignment, shifts []Shift, employeeDefaultShift map[string]string) *Resolver {
	byName := make(map[string]Shift, len(shifts))
	for _, s := range shifts {
		byName[s.Name] = s
	}
	return &Resolver{
		Assignments:          assignments,
		ShiftsByName:         byName,
		EmployeeDefaultShift: employeeDefaultShift,
	}
}

// Resolve answers "what shift applies to employeeCode on date d" per the
// three-tier rule: overlapping assignment (most recently created wins on conflict),
// else employee default shift, else system default. Never fails.
func (r *Resolver) Resolve(employeeCode string, d cycle.LocalDate) Timing {
	var best *ShiftAssignment
	for i := range r.Assignments {
		a := r.Assignments[i]
		if a.EmployeeCode != employeeCode || !a.Overlaps(d) {
			continue
		}
		if best == nil || isLaterAssignment(a, *best) {
			best = &r.Assignments[i]
		}
	}
	if best != nil {
		if s, ok := r.ShiftsByName[best.ShiftName]; ok {
			return fromModel(s)
		}
	}

	if name, ok := r.EmployeeDefaultShift[employeeCode]; ok && name != "" {
		if s, ok := r.ShiftsByName[name]; ok {
			return fromModel(s)
		}
	}

	return SystemDefault
}

// isLaterAssignment implements last-write-wins for overlapping assignments.
// The surrogate key is a random UUID, which carries no insertion order, so
// CreatedAt decides which assignment is later, and the raw id breaks ties
// for a stable order when two rows share a timestamp.
func isLaterAssignment(a, b ShiftAssignment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytesGreater(a.ID, b.ID)
}

func bytesGreater(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
