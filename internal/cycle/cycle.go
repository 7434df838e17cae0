/*
Package cycle - Payroll Cycle & Wall-Clock Time Utilities

==============================================================================
FILE: internal/cycle/cycle.go
==============================================================================

DESCRIPTION:
    Defines the payroll cycle (the window [26th of month M-1, 25th of
    month M], both ends inclusive, labelled "YYYY-MM" by M) and the
    wall-clock types the rest of the engine builds on. Biometric devices
    record local wall-clock time with no timezone information; every type
    here is a "stored local time, no zone" value, never an instant.

USER PERSPECTIVE:
    - A payroll month "2025-11" always means 2025-10-26 through 2025-11-25
    - A punch at 00:30 on the 1st belongs to the last day of the previous
      month, not the 1st - the midnight-crossover rule

DEVELOPER GUIDELINES:
    DO NOT introduce time.Now() or any local-zone conversion here.
    LocalDate/LocalDateTime must never call .In(loc) with a non-UTC
    location; UTC is used purely as a zone-free storage sentinel.

==============================================================================
*/
package cycle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LocalDate is a calendar date with no time-of-day and no timezone meaning.
// It is always stored pinned to time.UTC as a zone-free sentinel.
type LocalDate struct {
	t time.Time
}

// NewLocalDate builds a LocalDate from calendar components.
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// LocalDateTime is a wall-clock date-time with no timezone meaning.
type LocalDateTime struct {
	t time.Time
}

// Time exposes the underlying UTC-pinned time.Time for arithmetic.
func (d LocalDate) Time() time.Time { return d.t }

// Time exposes the underlying UTC-pinned time.Time for arithmetic.
func (dt LocalDateTime) Time() time.Time { return dt.t }

// Date truncates a LocalDateTime to its LocalDate.
func (dt LocalDateTime) Date() LocalDate {
	return NewLocalDate(dt.t.Year(), dt.t.Month(), dt.t.Day())
}

// Hour returns the wall-clock hour component, in [0,23].
func (dt LocalDateTime) Hour() int { return dt.t.Hour() }

// Before reports whether d is strictly earlier than other.
func (d LocalDate) Before(other LocalDate) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d LocalDate) After(other LocalDate) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same calendar date.
func (d LocalDate) Equal(other LocalDate) bool { return d.t.Equal(other.t) }

// AddDays returns the date n days after d (n may be negative).
func (d LocalDate) AddDays(n int) LocalDate { return LocalDate{t: d.t.AddDate(0, 0, n)} }

// String renders the date as YYYY-MM-DD.
func (d LocalDate) String() string { return d.t.Format("2006-01-02") }

// String renders the date-time as YYYY-MM-DDTHH:MM:SS.
func (dt LocalDateTime) String() string { return dt.t.Format("2006-01-02T15:04:05") }

// MarshalJSON renders a LocalDate as its "YYYY-MM-DD" string. Both types
// round-trip through JSON by their wall-clock string form so a persisted
// breakdown blob stays readable without knowing the wrapper's internals.
func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a "YYYY-MM-DD" string back into a LocalDate.
func (d *LocalDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseLocalDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON renders a LocalDateTime as its "YYYY-MM-DDTHH:MM:SS" string.
func (dt LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

// UnmarshalJSON parses a wall-clock timestamp string back into a
// LocalDateTime, accepting the same shapes ParsePunchTimestamp does.
func (dt *LocalDateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePunchTimestamp(raw)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// Before reports whether dt is strictly earlier than other.
func (dt LocalDateTime) Before(other LocalDateTime) bool { return dt.t.Before(other.t) }

// Sub returns dt-other as a duration, treating both as zone-free instants.
func (dt LocalDateTime) Sub(other LocalDateTime) time.Duration { return dt.t.Sub(other.t) }

// ParseLocalDate parses a YYYY-MM-DD string into a LocalDate.
func ParseLocalDate(raw string) (LocalDate, error) {
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return LocalDate{}, fmt.Errorf("cycle: invalid date %q: %w", raw, err)
	}
	return LocalDate{t: t}, nil
}

// MustParseLocalDate panics on a malformed date; reserved for literals in tests.
func MustParseLocalDate(raw string) LocalDate {
	d, err := ParseLocalDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// ParsePunchTimestamp parses a biometric device timestamp. Accepted shapes:
// "YYYY-MM-DDTHH:MM:SS", "YYYY-MM-DDTHH:MM:SS.fff", either with an optional
// trailing "Z" inherited from the source database. The trailing Z is
// stripped before parsing - it is never treated as UTC and never triggers a
// timezone conversion; the returned LocalDateTime's components equal those
// in raw, verbatim.
func ParsePunchTimestamp(raw string) (LocalDateTime, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "Z")

	layouts := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}

	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return LocalDateTime{t: t}, nil
		}
		lastErr = err
	}
	return LocalDateTime{}, fmt.Errorf("cycle: invalid punch timestamp %q: %w", raw, lastErr)
}

// Label returns the "YYYY-MM" cycle label to which d belongs: dates on or
// after the 26th belong to next calendar month's cycle, dates on or before
// the 25th belong to the current calendar month's cycle.
func Label(d LocalDate) string {
	y, m := d.t.Year(), d.t.Month()
	if d.t.Day() >= 26 {
		y, m = addMonth(y, m, 1)
	}
	return fmt.Sprintf("%04d-%02d", y, m)
}

// CycleRange returns the inclusive [start,end] date range for cycle label
// "YYYY-MM": start is the 26th of the previous calendar month, end is the
// 25th of the named month.
func CycleRange(month string) (start, end LocalDate, err error) {
	y, m, err := parseMonthLabel(month)
	if err != nil {
		return LocalDate{}, LocalDate{}, err
	}
	py, pm := addMonth(y, m, -1)
	start = NewLocalDate(py, pm, 26)
	end = NewLocalDate(y, m, 25)
	return start, end, nil
}

// DaysInCycle returns the number of calendar dates in cycle "YYYY-MM".
func DaysInCycle(month string) (int, error) {
	start, end, err := CycleRange(month)
	if err != nil {
		return 0, err
	}
	days := int(end.t.Sub(start.t).Hours()/24) + 1
	return days, nil
}

// DayOfWeek returns the weekday of d, with Sunday = 0 matching time.Sunday.
func DayOfWeek(d LocalDate) time.Weekday { return d.t.Weekday() }

// CyclesBetween returns the number of whole payroll cycles from the cycle
// labeled joinMonth through the cycle labeled asOfMonth, inclusive. Used to
// answer "has this employee had N cumulative payroll cycles since joining."
func CyclesBetween(joinMonth, asOfMonth string) (int, error) {
	jy, jm, err := parseMonthLabel(joinMonth)
	if err != nil {
		return 0, err
	}
	ay, am, err := parseMonthLabel(asOfMonth)
	if err != nil {
		return 0, err
	}
	months := (ay-jy)*12 + int(am-jm) + 1
	if months < 0 {
		months = 0
	}
	return months, nil
}

func parseMonthLabel(month string) (int, time.Month, error) {
	parts := strings.SplitN(month, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("cycle: invalid month label %q, expected YYYY-MM", month)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("cycle: invalid month label %q: %w", month, err)
	}
	mi, err := strconv.Atoi(parts[1])
	if err != nil || mi < 1 || mi > 12 {
		return 0, 0, fmt.Errorf("cycle: invalid month label %q", month)
	}
	return y, time.Month(mi), nil
}

func addMonth(y int, m time.Month, n int) (int, time.Month) {
	total := int(m) - 1 + n
	y += total / 12
	mi := total % 12
	if mi < 0 {
		mi += 12
		y--
	}
	return y, time.Month(mi + 1)
}
