package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"attackreport/internal/model"
	"attackreport/internal/source"
)

type Aggregator struct {
	provider source.Provider
	logger   *slog.Logger
}

func NewAggregator(provider source.Provider, logger *slog.Logger) *Aggregator {
	return &Aggregator{provider: provider, logger: logger}
}

// Aggregate computes the daily attack series for the 7-day window ending on
// the most recent weekEndDay at or before ref, plus a weekly total computed
// independently through a single range query, and cross-checks the two.
// A mismatch or a missing monthly source degrades to a warning, never an
// error.
func (a *Aggregator) Aggregate(ctx context.Context, customer string, ref time.Time, weekEndDay, topN int) (*model.ReportResult, error) {
	start, end := WeekWindow(ref, weekEndDay)

	result := &model.ReportResult{
		Customer: customer,
		Week:     model.WeeklyWindow{Start: start, End: end},
	}

	sources := make(map[source.Month]source.Source)
	missing := make(map[source.Month]string)
	var order []source.Month
	for _, m := range MonthsTouched(start, end) {
		src, ok, err := a.provider.Open(ctx, customer, m)
		if err != nil {
			closeSources(sources)
			return nil, err
		}
		order = append(order, m)
		if !ok {
			name := a.provider.Name(customer, m)
			missing[m] = name
			result.Warnings = append(result.Warnings, "missing data source: "+name)
			a.warn("monthly database missing, counting zero", "customer", customer, "month", m.String(), "path", name)
			continue
		}
		sources[m] = src
	}
	defer closeSources(sources)

	for _, m := range order {
		src, ok := sources[m]
		if !ok {
			continue
		}
		malformed, err := src.MalformedCount(ctx)
		if err != nil {
			return nil, err
		}
		if malformed > 0 {
			warning := fmt.Sprintf("%d records with unparseable startDate excluded from %s", malformed, a.provider.Name(customer, m))
			result.Warnings = append(result.Warnings, warning)
			a.warn("unparseable timestamps excluded", "customer", customer, "month", m.String(), "records", malformed)
		}
	}

	// Daily pass: one count per calendar day, summed into the weekly total.
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		m := source.MonthOf(day)
		entry := model.DailyCount{
			Day:  day.Weekday().String(),
			Date: day,
		}
		if src, ok := sources[m]; ok {
			count, err := src.CountDay(ctx, day)
			if err != nil {
				return nil, err
			}
			entry.Count = count
		} else {
			entry.Annotation = "partial data: missing " + missing[m]
		}
		result.DailySum += entry.Count
		result.Days = append(result.Days, entry)
	}

	// Independent weekly pass: a single range query per source. The
	// duplication against the daily pass is the integrity check.
	for _, m := range order {
		src, ok := sources[m]
		if !ok {
			continue
		}
		count, err := src.CountRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		result.Week.Total += count
	}

	result.Matches = result.DailySum == result.Week.Total
	if !result.Matches {
		warning := fmt.Sprintf("weekly total mismatch: daily sum %d, range total %d", result.DailySum, result.Week.Total)
		result.Warnings = append(result.Warnings, warning)
		a.warn("weekly total mismatch", "customer", customer, "daily_sum", result.DailySum, "range_total", result.Week.Total)
	}

	if topN > 0 {
		top, err := a.topSources(ctx, sources, order, start, end, topN)
		if err != nil {
			return nil, err
		}
		result.Top = top
	}
	return result, nil
}

// WeekTotal computes a single week's attack count through one range query per
// monthly source, the same way the independent weekly pass does. Missing
// sources contribute zero and a warning.
func (a *Aggregator) WeekTotal(ctx context.Context, customer string, start, end time.Time) (int64, []string, error) {
	var total int64
	var warnings []string
	for _, m := range MonthsTouched(start, end) {
		src, ok, err := a.provider.Open(ctx, customer, m)
		if err != nil {
			return 0, warnings, err
		}
		if !ok {
			warnings = append(warnings, "missing data source: "+a.provider.Name(customer, m))
			continue
		}
		count, err := src.CountRange(ctx, start, end)
		src.Close()
		if err != nil {
			return 0, warnings, err
		}
		total += count
	}
	return total, warnings, nil
}

func (a *Aggregator) topSources(ctx context.Context, sources map[source.Month]source.Source, order []source.Month, start, end time.Time, topN int) ([]model.TopSource, error) {
	merged := make(map[string]int64)
	for _, m := range order {
		src, ok := sources[m]
		if !ok {
			continue
		}
		// unlimited per source; a cross-month offender may rank below
		// the cutoff in each month and still top the merged list
		rows, err := src.TopSources(ctx, start, end, 0)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			merged[r.SrcIP] += r.Count
		}
	}
	out := make([]model.TopSource, 0, len(merged))
	for ip, count := range merged {
		out = append(out, model.TopSource{SrcIP: ip, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SrcIP < out[j].SrcIP
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func closeSources(sources map[source.Month]source.Source) {
	for _, src := range sources {
		_ = src.Close()
	}
}
