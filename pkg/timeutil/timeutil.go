// Package timeutil provides timezone utilities for the Paris timezone.
// École Directe serves French schools, so every date exchanged with the
// provider (homework due dates, timetable ranges, school years) is
// interpreted in Europe/Paris local time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the date format the provider expects in URLs and payloads.
const DateLayout = "2006-01-02"

// ParisTZ is the Paris timezone (CET/CEST, with DST).
var ParisTZ = loadParis()

func loadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		// Containers without tzdata fall back to CET without DST.
		return time.FixedZone("CET", 1*60*60)
	}
	return loc
}

// Now returns the current time in Paris timezone.
func Now() time.Time {
	return time.Now().In(ParisTZ)
}

// ToParis converts a time to Paris timezone.
func ToParis(t time.Time) time.Time {
	return t.In(ParisTZ)
}

// Date creates a time in Paris timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, ParisTZ)
}

// FormatDate renders a time as a provider date string (YYYY-MM-DD) in Paris time.
func FormatDate(t time.Time) string {
	return ToParis(t).Format(DateLayout)
}

// ParseDate parses a provider date string (YYYY-MM-DD) in Paris time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, ParisTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: parse date %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay returns the start of the day (00:00:00) in Paris timezone.
func StartOfDay(t time.Time) time.Time {
	paris := ToParis(t)
	return time.Date(paris.Year(), paris.Month(), paris.Day(), 0, 0, 0, 0, ParisTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Paris timezone.
func EndOfDay(t time.Time) time.Time {
	paris := ToParis(t)
	return time.Date(paris.Year(), paris.Month(), paris.Day(), 23, 59, 59, 999999999, ParisTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Paris timezone.
func StartOfWeek(t time.Time) time.Time {
	paris := ToParis(t)
	weekday := int(paris.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(paris.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in Paris timezone.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// IsToday checks if the given time is today in Paris timezone.
func IsToday(t time.Time) bool {
	now := Now()
	paris := ToParis(t)
	return paris.Year() == now.Year() &&
		paris.Month() == now.Month() &&
		paris.Day() == now.Day()
}

// IsWeekend checks if the given time is on a weekend.
func IsWeekend(t time.Time) bool {
	weekday := ToParis(t).Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay checks if two times are on the same day in Paris timezone.
func IsSameDay(t1, t2 time.Time) bool {
	p1, p2 := ToParis(t1), ToParis(t2)
	return p1.Year() == p2.Year() && p1.YearDay() == p2.YearDay()
}

// SchoolYearStartMonth is the month the French school year rolls over.
const SchoolYearStartMonth = time.September

// SchoolYear returns the provider's school-year label for the given time,
// e.g. "2024-2025" for any date from September 2024 through August 2025.
func SchoolYear(t time.Time) string {
	paris := ToParis(t)
	year := paris.Year()
	if paris.Month() < SchoolYearStartMonth {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

// CurrentSchoolYear returns the school-year label for the current date.
func CurrentSchoolYear() string {
	return SchoolYear(Now())
}

// SchoolYearBounds returns the first and last instant of the school year
// containing the given time (September 1st through August 31st).
func SchoolYearBounds(t time.Time) (start, end time.Time) {
	paris := ToParis(t)
	year := paris.Year()
	if paris.Month() < SchoolYearStartMonth {
		year--
	}
	start = Date(year, int(SchoolYearStartMonth), 1)
	end = EndOfDay(start.AddDate(1, 0, -1))
	return start, end
}
