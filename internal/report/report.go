package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"attackreport/internal/config"
	"attackreport/internal/model"
	"attackreport/internal/source"
)

type Generator struct {
	cfg    *config.Config
	agg    *Aggregator
	logger *slog.Logger
}

type Artifacts struct {
	Result    *model.ReportResult
	WeekEnd   time.Time
	DailyCSV  string
	TrendsCSV string
	ChartHTML string
}

func NewGenerator(cfg *config.Config, provider source.Provider, logger *slog.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		agg:    NewAggregator(provider, logger),
		logger: logger,
	}
}

// Attachments lists the artifact files in mailing order.
func (a *Artifacts) Attachments() []string {
	return []string{a.DailyCSV, a.TrendsCSV, a.ChartHTML}
}

// Run generates the weekly report artifacts for one customer: the daily
// breakdown CSV, the weekly trends CSV covering the configured number of
// trailing weeks, and the trends chart HTML.
func (g *Generator) Run(ctx context.Context, customer string, ref time.Time) (*Artifacts, error) {
	result, err := g.agg.Aggregate(ctx, customer, ref, g.cfg.Report.WeekEndDay, g.cfg.Report.TopN)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", customer, err)
	}

	dir := filepath.Join(g.cfg.Paths.ReportDir, customer)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	weekEnd := result.Week.End
	suffix := weekEnd.Format("2006-01-02")
	art := &Artifacts{
		Result:    result,
		WeekEnd:   weekEnd,
		DailyCSV:  filepath.Join(dir, "daily_breakdown_"+suffix+".csv"),
		TrendsCSV: filepath.Join(dir, "weekly_trends_"+suffix+".csv"),
		ChartHTML: filepath.Join(dir, "weekly_trends_chart_"+suffix+".html"),
	}

	if err := WriteDailyCSV(art.DailyCSV, result.Days); err != nil {
		return nil, fmt.Errorf("write daily csv: %w", err)
	}

	rows, err := g.trendRows(ctx, customer, ref, result)
	if err != nil {
		return nil, err
	}
	if err := WriteTrends(art.TrendsCSV, rows); err != nil {
		return nil, fmt.Errorf("write trends csv: %w", err)
	}
	if err := WriteChartHTML(art.ChartHTML, rows); err != nil {
		return nil, fmt.Errorf("write chart html: %w", err)
	}

	if g.logger != nil {
		g.logger.Info("report generated",
			"customer", customer,
			"week_start", result.Week.Start.Format("2006-01-02"),
			"week_end", weekEnd.Format("2006-01-02"),
			"weekly_total", result.Week.Total,
			"matches", result.Matches,
			"warnings", len(result.Warnings),
		)
	}
	return art, nil
}

// trendRows maintains the weekly trends series: a fresh file gets all
// trailing weeks recomputed, an existing one only the latest week, then the
// series is trimmed to the configured length.
func (g *Generator) trendRows(ctx context.Context, customer string, ref time.Time, result *model.ReportResult) ([]TrendRow, error) {
	latest := TrendRow{
		WeekStart: result.Week.Start,
		WeekEnd:   result.Week.End,
		Count:     result.Week.Total,
	}
	suffix := result.Week.End.Format("2006-01-02")
	path := filepath.Join(g.cfg.Paths.ReportDir, customer, "weekly_trends_"+suffix+".csv")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		weeks := TrailingWeeks(ref, g.cfg.Report.WeeksNo, g.cfg.Report.WeekEndDay)
		rows := make([]TrendRow, 0, len(weeks))
		for _, w := range weeks {
			if w[1].Equal(latest.WeekEnd) {
				rows = append(rows, latest)
				continue
			}
			total, warnings, err := g.agg.WeekTotal(ctx, customer, w[0], w[1])
			if err != nil {
				return nil, fmt.Errorf("week total %s: %w", w[1].Format("2006-01-02"), err)
			}
			for _, warning := range warnings {
				if g.logger != nil {
					g.logger.Warn(warning, "customer", customer, "week_end", w[1].Format("2006-01-02"))
				}
			}
			rows = append(rows, TrendRow{WeekStart: w[0], WeekEnd: w[1], Count: total})
		}
		return rows, nil
	}

	rows, err := ReadTrends(path)
	if err != nil {
		return nil, fmt.Errorf("read trends csv: %w", err)
	}
	rows = UpsertTrend(rows, latest)
	return TrimTrends(rows, g.cfg.Report.WeeksNo), nil
}
