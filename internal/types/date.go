package types

import (
	"fmt"
	"time"
)

// DateOnly truncates a timestamp to a calendar date at UTC midnight. All
// due-date and grace-period arithmetic is calendar based, not elapsed-seconds
// based.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NthDueDate returns the due date of the i-th installment (0-based) for a
// schedule anchored at start. Every date is derived from the original start
// date, so a clamped month does not drift the following ones: a plan starting
// Jan 31 is due Jan 31, Feb 28/29, Mar 31, Apr 30 and so on.
func NthDueDate(start time.Time, i int, dueDateType DueDateType) (time.Time, error) {
	if i < 0 {
		return start, fmt.Errorf("installment index must be non-negative, got %d", i)
	}

	months, err := dueDateType.MonthsPerPeriod()
	if err != nil {
		return start, err
	}
	if months == 0 {
		// One-time plans fall due on the start date.
		return DateOnly(start), nil
	}
	return AddClampedDate(DateOnly(start), 0, i*months, 0), nil
}

// AddClampedDate adds years, months and days to t, clamping the day of month
// to the last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
// time.AddDate is unsuitable here because it normalizes overflow into the
// next month instead of clamping.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// Moving past December adjusts into the following years; same backwards.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month.
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if newD > lastDay {
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
}
