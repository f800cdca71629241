// Package timecalc holds the calendar arithmetic shared by the services and
// the calendar view-models. All dates are day-granular UTC midnights.
package timecalc

import (
	"math"
	"time"
)

// DateOf truncates t to its calendar date at UTC midnight, keeping the
// wall-clock date of t's own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the first and last calendar dates of the month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := MonthStart(year, month)
	return first, first.AddDate(0, 1, -1)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MondayOffset is how many days the Monday-first week has run before d.
func MondayOffset(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd - 1
}

// GridStart returns the Monday on or before the first of the month.
func GridStart(year int, month time.Month) time.Time {
	first := MonthStart(year, month)
	return first.AddDate(0, 0, -MondayOffset(first))
}

// GridRows is the number of Monday-first weeks needed to show the month.
func GridRows(year int, month time.Month) int {
	offset := MondayOffset(MonthStart(year, month))
	return int(math.Ceil(float64(offset+DaysInMonth(year, month)) / 7))
}

func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func IsWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

var WeekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// RoundUpHalfHour rounds minutes up to the next multiple of 30 and returns
// hours. Tiny float noise from summing fractional hours is ignored.
func RoundUpHalfHour(minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	m := math.Round(minutes*1000) / 1000
	return math.Ceil(m/30) * 30 / 60
}
