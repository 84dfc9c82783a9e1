package report

import (
	"time"

	"attackreport/internal/source"
)

// Weekday numbering follows the configuration convention: 0=Monday .. 6=Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekWindow returns the 7-day window ending on the most recent occurrence of
// weekEndDay at or before ref. A reference date that already falls on the
// week-end day terminates its own window.
func WeekWindow(ref time.Time, weekEndDay int) (time.Time, time.Time) {
	day := midnight(ref)
	back := (weekdayIndex(day) - weekEndDay + 7) % 7
	end := day.AddDate(0, 0, -back)
	return end.AddDate(0, 0, -6), end
}

// TrailingWeeks returns the weeksNo most recent complete windows, oldest
// first. The last entry is the window WeekWindow would return for ref.
func TrailingWeeks(ref time.Time, weeksNo, weekEndDay int) [][2]time.Time {
	if weeksNo <= 0 {
		return nil
	}
	out := make([][2]time.Time, weeksNo)
	for i := 0; i < weeksNo; i++ {
		start, end := WeekWindow(ref.AddDate(0, 0, -7*i), weekEndDay)
		out[weeksNo-1-i] = [2]time.Time{start, end}
	}
	return out
}

// MonthsTouched lists the distinct calendar months covered by [start, end],
// in chronological order.
func MonthsTouched(start, end time.Time) []source.Month {
	var out []source.Month
	seen := make(map[source.Month]bool)
	for day := midnight(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		m := source.MonthOf(day)
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
