/*
Package attendance - Punch Grouping and Daily Classification

==============================================================================
FILE: internal/attendance/day.go
==============================================================================

DESCRIPTION:
    Groups raw biometric punches into workdays (applying the midnight-
    crossover rule) and classifies a single day's punches against a
    resolved shift into a DayHours record: first entry, last exit, worked
    hours, lateness, early exit, and a status in the documented enum.

DEVELOPER GUIDELINES:
    OK to modify: Add new DayHours fields
    CAUTION: status thresholds are relative to the shift's WorkHours (W),
    not a fixed constant - do not hardcode 8/9 hour assumptions.

==============================================================================
*/
package attendance

import (
	"sort"

	"github.com/iris-hr/biopayroll/internal/cycle"
	"github.com/iris-hr/biopayroll/internal/shift"
)

// Status is the day classification enum.
type Status string

const (
	StatusFullDay     Status = "full-day"
	StatusHalfDay     Status = "half-day"
	StatusAbsent      Status = "absent"
	StatusWeekoff     Status = "weekoff"
	StatusNotActive   Status = "not-active"
	StatusPaidLeave   Status = "paid-leave"
	StatusCasualLeave Status = "casual-leave"
)

// PunchLog is a single raw biometric punch. Append-only, immutable.
type PunchLog struct {
	EmployeeCode string
	LogTimestamp cycle.LocalDateTime
	Direction    string // "IN", "OUT", or "" when the device doesn't report one
	DeviceID     string
}

// DayHours is the result of classifying one day's punches against a shift.
type DayHours struct {
	FirstEntry        *cycle.LocalDateTime
	LastExit          *cycle.LocalDateTime
	TotalHours        float64
	IsLate            bool
	IsLateBy30Minutes bool
	MinutesLate       *int
	IsEarlyExit       bool
	Status            Status
	LogCount          int
}

// GroupByWorkday sorts punches ascending and groups them by the workday
// they belong to: a punch with local hour in [0,5) belongs to the previous
// calendar date, per the midnight-crossover rule.
func GroupByWorkday(punches []PunchLog) map[string][]PunchLog {
	sorted := make([]PunchLog, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LogTimestamp.Before(sorted[j].LogTimestamp)
	})

	groups := make(map[string][]PunchLog)
	for _, p := range sorted {
		d := p.LogTimestamp.Date()
		if p.LogTimestamp.Hour() < 5 {
			d = d.AddDays(-1)
		}
		key := d.String()
		groups[key] = append(groups[key], p)
	}
	return groups
}

// ClassifyDay computes the DayHours for one day's punches against the
// resolved shift timing.
func ClassifyDay(dayPunches []PunchLog, timing shift.Timing) DayHours {
	sorted := make([]PunchLog, len(dayPunches))
	copy(sorted, dayPunches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LogTimestamp.Before(sorted[j].LogTimestamp)
	})

	if timing.IsSplitShift {
		return classifySplitShift(sorted, timing)
	}
	return classifyNormalShift(sorted, timing)
}

func classifyNormalShift(punches []PunchLog, timing shift.Timing) DayHours {
	result := DayHours{LogCount: len(punches)}

	if len(punches) == 0 {
		result.Status = StatusAbsent
		return result
	}

	switch {
	case len(punches) == 1:
		p := punches[0].LogTimestamp
		if p.Hour() >= 14 {
			result.LastExit = &p
		} else {
			result.FirstEntry = &p
		}
	default:
		first := punches[0].LogTimestamp
		last := punches[len(punches)-1].LogTimestamp
		result.FirstEntry = &first
		result.LastExit = &last
	}

	if result.FirstEntry != nil && result.LastExit != nil {
		hours := result.LastExit.Sub(*result.FirstEntry).Hours()
		result.TotalHours = clamp(hours, 0, 24)
	}

	shiftStartMinutes := timing.StartHour*60 + timing.StartMin
	shiftEndMinutes := timing.EndHour*60 + timing.EndMin

	switch {
	case result.FirstEntry != nil:
		entryMinutes := result.FirstEntry.Hour()*60 + result.FirstEntry.Time().Minute()
		lateBy := entryMinutes - shiftStartMinutes
		if lateBy > timing.LateThresholdMinutes {
			result.IsLate = true
			minutes := lateBy
			result.MinutesLate = &minutes
		}
		if lateBy > 30 {
			result.IsLateBy30Minutes = true
		}
	case result.LastExit != nil:
		// Only an exit punch exists - treat as late with no known minutesLate.
		result.IsLate = true
		result.IsLateBy30Minutes = true
	}

	switch {
	case result.LastExit != nil:
		exitMinutes := result.LastExit.Hour()*60 + result.LastExit.Time().Minute()
		if exitMinutes < shiftEndMinutes-30 {
			result.IsEarlyExit = true
		}
	default:
		// Only a check-in exists - no exit recorded.
		result.IsEarlyExit = true
	}

	result.Status = classifyStatus(result.TotalHours, timing.WorkHours)
	return result
}

// classifySplitShift partitions punches around the midpoint between the
// two slots and evaluates each slot independently.
func classifySplitShift(punches []PunchLog, timing shift.Timing) DayHours {
	result := DayHours{LogCount: len(punches)}

	if len(punches) == 0 {
		result.Status = StatusAbsent
		return result
	}

	midpointMinutes := (timing.Slot1End.Hour*60 + timing.Slot1End.Minute +
		timing.Slot2Start.Hour*60 + timing.Slot2Start.Minute) / 2

	var slot1, slot2 []PunchLog
	for _, p := range punches {
		minutes := p.LogTimestamp.Hour()*60 + p.LogTimestamp.Time().Minute()
		if minutes < midpointMinutes {
			slot1 = append(slot1, p)
		} else {
			slot2 = append(slot2, p)
		}
	}

	s1 := evaluateSlot(slot1, timing.Slot1Start, timing.Slot1End, timing.LateThresholdMinutes)
	s2 := evaluateSlot(slot2, timing.Slot2Start, timing.Slot2End, timing.LateThresholdMinutes)

	result.TotalHours = clamp(s1.hours+s2.hours, 0, 24)
	result.FirstEntry = s1.firstIn
	if s2.lastOut != nil {
		result.LastExit = s2.lastOut
	} else {
		result.LastExit = s1.lastOut
	}
	result.IsLate = s1.isLate || s2.isLate

	switch {
	case len(slot1) > 0:
		result.IsLateBy30Minutes = s1.isLateBy30
	case len(slot2) > 0:
		result.IsLateBy30Minutes = s2.isLateBy30
	default:
		result.IsLateBy30Minutes = true
	}

	result.IsEarlyExit = s1.isEarlyExit || s2.isEarlyExit
	result.Status = classifyStatus(result.TotalHours, timing.WorkHours)
	return result
}

type slotResult struct {
	firstIn, lastOut   *cycle.LocalDateTime
	hours              float64
	isLate, isLateBy30 bool
	isEarlyExit        bool
}

func evaluateSlot(punches []PunchLog, start, end shift.TimeOfDay, lateThresholdMinutes int) slotResult {
	var r slotResult
	if len(punches) == 0 {
		return r
	}

	first := punches[0].LogTimestamp
	last := punches[len(punches)-1].LogTimestamp
	r.firstIn = &first
	r.lastOut = &last

	slotDurationHours := float64(end.Hour*60+end.Minute-(start.Hour*60+start.Minute)) / 60.0
	if len(punches) >= 2 {
		hours := last.Sub(first).Hours()
		r.hours = clamp(hours, 0, slotDurationHours+1)
	}

	startMinutes := start.Hour*60 + start.Minute
	entryMinutes := first.Hour()*60 + first.Time().Minute()
	lateBy := entryMinutes - startMinutes
	if lateBy >= -60 && lateBy <= 60 {
		r.isLate = lateBy > lateThresholdMinutes
		r.isLateBy30 = lateBy > 30
	}

	endMinutes := end.Hour*60 + end.Minute
	exitMinutes := last.Hour()*60 + last.Time().Minute()
	if len(punches) >= 2 && exitMinutes < endMinutes-30 {
		r.isEarlyExit = true
	}

	return r
}

func classifyStatus(workedHours, shiftWorkHours float64) Status {
	switch {
	case workedHours < shiftWorkHours/2:
		return StatusAbsent
	case workedHours >= 0.97*shiftWorkHours:
		return StatusFullDay
	default:
		return StatusHalfDay
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
