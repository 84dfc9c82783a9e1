package mailer

import (
	"strings"
	"testing"
	"time"

	"attackreport/internal/config"
	"attackreport/internal/model"
)

func TestSubjectTemplate(t *testing.T) {
	m := New(config.EmailConfig{SubjectTemplate: config.DefaultSubjectTemplate})
	got := m.Subject("EA", time.Date(2025, time.September, 28, 0, 0, 0, 0, time.UTC))
	want := "Weekly Attack Trends Report - EA - Week Ending 2025-09-28"
	if got != want {
		t.Fatalf("subject: %s", got)
	}
}

func TestBodyContents(t *testing.T) {
	result := &model.ReportResult{
		Customer: "EA",
		Week: model.WeeklyWindow{
			Start: time.Date(2025, time.September, 22, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.September, 28, 0, 0, 0, 0, time.UTC),
			Total: 16138,
		},
		Top:      []model.TopSource{{SrcIP: "10.1.2.3", Count: 940}},
		Warnings: []string{"weekly total mismatch: daily sum 16137, range total 16138"},
	}
	got := body(result, result.Week.End, []string{"/tmp/reports/EA/daily_breakdown_2025-09-28.csv"})
	for _, want := range []string{
		"Week End Date: 2025-09-28",
		"Weekly Attack Total: 16138",
		"daily_breakdown_2025-09-28.csv",
		"10.1.2.3: 940",
		"weekly total mismatch",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("body missing %q:\n%s", want, got)
		}
	}
}
