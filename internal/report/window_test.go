package report

import (
	"testing"
	"time"

	"attackreport/internal/source"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekWindowReferenceOnWeekEndDay(t *testing.T) {
	// 2025-09-28 is a Sunday
	start, end := WeekWindow(date(2025, time.September, 28), 6)
	if !end.Equal(date(2025, time.September, 28)) {
		t.Fatalf("end: %s", end)
	}
	if !start.Equal(date(2025, time.September, 22)) {
		t.Fatalf("start: %s", start)
	}
}

func TestWeekWindowMidweekReference(t *testing.T) {
	// 2025-10-01 is a Wednesday; most recent Sunday is 2025-09-28
	start, end := WeekWindow(date(2025, time.October, 1), 6)
	if !end.Equal(date(2025, time.September, 28)) {
		t.Fatalf("end: %s", end)
	}
	if !start.Equal(date(2025, time.September, 22)) {
		t.Fatalf("start: %s", start)
	}
}

func TestWeekWindowMondayEnd(t *testing.T) {
	// week_end_day 0 = Monday; 2025-10-01 Wednesday -> Monday 2025-09-29
	start, end := WeekWindow(date(2025, time.October, 1), 0)
	if !end.Equal(date(2025, time.September, 29)) {
		t.Fatalf("end: %s", end)
	}
	if !start.Equal(date(2025, time.September, 23)) {
		t.Fatalf("start: %s", start)
	}
}

func TestWeekWindowIgnoresTimeOfDay(t *testing.T) {
	ref := time.Date(2025, time.September, 28, 23, 59, 59, 0, time.UTC)
	_, end := WeekWindow(ref, 6)
	if !end.Equal(date(2025, time.September, 28)) {
		t.Fatalf("end: %s", end)
	}
}

func TestTrailingWeeks(t *testing.T) {
	weeks := TrailingWeeks(date(2025, time.September, 28), 3, 6)
	if len(weeks) != 3 {
		t.Fatalf("weeks: %d", len(weeks))
	}
	wantEnds := []time.Time{
		date(2025, time.September, 14),
		date(2025, time.September, 21),
		date(2025, time.September, 28),
	}
	for i, w := range weeks {
		if !w[1].Equal(wantEnds[i]) {
			t.Fatalf("week %d end: %s", i, w[1])
		}
		if !w[0].Equal(w[1].AddDate(0, 0, -6)) {
			t.Fatalf("week %d start: %s", i, w[0])
		}
	}
}

func TestMonthsTouchedSingle(t *testing.T) {
	months := MonthsTouched(date(2025, time.September, 22), date(2025, time.September, 28))
	if len(months) != 1 || months[0] != (source.Month{Year: 2025, Month: time.September}) {
		t.Fatalf("months: %v", months)
	}
}

func TestMonthsTouchedCrossMonth(t *testing.T) {
	months := MonthsTouched(date(2025, time.September, 29), date(2025, time.October, 5))
	if len(months) != 2 {
		t.Fatalf("months: %v", months)
	}
	if months[0] != (source.Month{Year: 2025, Month: time.September}) ||
		months[1] != (source.Month{Year: 2025, Month: time.October}) {
		t.Fatalf("months: %v", months)
	}
}

func TestMonthsTouchedCrossYear(t *testing.T) {
	months := MonthsTouched(date(2025, time.December, 29), date(2026, time.January, 4))
	if len(months) != 2 {
		t.Fatalf("months: %v", months)
	}
	if months[1] != (source.Month{Year: 2026, Month: time.January}) {
		t.Fatalf("months: %v", months)
	}
}
