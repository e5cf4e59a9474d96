package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	d := Date(2024, 9, 2)
	assert.Equal(t, "2024-09-02", FormatDate(d))
}

func TestFormatDate_ConvertsToParis(t *testing.T) {
	// 23:30 UTC on the 1st is already the 2nd in Paris (CEST, UTC+2).
	utc := time.Date(2024, 9, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-09-02", FormatDate(utc))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	assert.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 14, d.Day())

	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)
}

func TestSchoolYear(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"september start", Date(2024, 9, 1), "2024-2025"},
		{"mid year", Date(2025, 1, 15), "2024-2025"},
		{"last day of august", Date(2025, 8, 31), "2024-2025"},
		{"next september", Date(2025, 9, 1), "2025-2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SchoolYear(tt.date))
		})
	}
}

func TestSchoolYearBounds(t *testing.T) {
	start, end := SchoolYearBounds(Date(2025, 1, 15))
	assert.Equal(t, "2024-09-01", FormatDate(start))
	assert.Equal(t, "2025-08-31", FormatDate(end))
	assert.True(t, end.After(start))
}

func TestStartOfWeek(t *testing.T) {
	// 2024-09-04 is a Wednesday.
	wed := Date(2024, 9, 4)
	monday := StartOfWeek(wed)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, "2024-09-02", FormatDate(monday))

	sunday := EndOfWeek(wed)
	assert.Equal(t, time.Sunday, sunday.Weekday())
	assert.Equal(t, "2024-09-08", FormatDate(sunday))
}

func TestStartOfWeek_OnSunday(t *testing.T) {
	// 2024-09-08 is a Sunday; the week began the previous Monday.
	sunday := Date(2024, 9, 8)
	assert.Equal(t, "2024-09-02", FormatDate(StartOfWeek(sunday)))
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(Date(2024, 9, 7)))  // Saturday
	assert.True(t, IsWeekend(Date(2024, 9, 8)))  // Sunday
	assert.False(t, IsWeekend(Date(2024, 9, 9))) // Monday
}

func TestIsSameDay(t *testing.T) {
	morning := time.Date(2024, 9, 2, 7, 0, 0, 0, ParisTZ)
	evening := time.Date(2024, 9, 2, 22, 0, 0, 0, ParisTZ)
	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsSameDay(morning, evening.AddDate(0, 0, 1)))
}
