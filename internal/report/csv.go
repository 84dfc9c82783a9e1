package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"attackreport/internal/model"
)

var dailyHeader = []string{"Day", "Date", "Attack_Count", "Attack_Annotation"}

func WriteDailyCSV(path string, days []model.DailyCount) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(dailyHeader); err != nil {
		return err
	}
	for _, d := range days {
		row := []string{
			d.Day,
			d.Date.Format("2006-01-02"),
			strconv.FormatInt(d.Count, 10),
			d.Annotation,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type TrendRow struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Count     int64
}

var trendsHeader = []string{"week_start", "week_end", "attacks_count"}

func ReadTrends(path string) ([]TrendRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	var rows []TrendRow
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("%s: malformed row %d", path, i+1)
		}
		start, err := time.ParseInLocation("2006-01-02", rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		end, err := time.ParseInLocation("2006-01-02", rec[1], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		count, err := strconv.ParseInt(rec[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		rows = append(rows, TrendRow{WeekStart: start, WeekEnd: end, Count: count})
	}
	return rows, nil
}

func WriteTrends(path string, rows []TrendRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(trendsHeader); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.WeekStart.Format("2006-01-02"),
			row.WeekEnd.Format("2006-01-02"),
			strconv.FormatInt(row.Count, 10),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// UpsertTrend replaces the row with the same window, or appends, keeping the
// series sorted by week start.
func UpsertTrend(rows []TrendRow, row TrendRow) []TrendRow {
	replaced := false
	for i := range rows {
		if rows[i].WeekStart.Equal(row.WeekStart) && rows[i].WeekEnd.Equal(row.WeekEnd) {
			rows[i] = row
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].WeekStart.Before(rows[j].WeekStart)
	})
	return rows
}

// TrimTrends keeps the most recent n rows of a sorted series.
func TrimTrends(rows []TrendRow, n int) []TrendRow {
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return rows
}
