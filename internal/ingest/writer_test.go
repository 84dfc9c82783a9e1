package ingest

import (
	"context"
	"os"
	"testing"
	"time"

	"attackreport/internal/model"
	"attackreport/internal/source"
)

func TestWriterRoutesByMonth(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10, nil)
	defer w.Close()

	ctx := context.Background()
	events := []model.AttackEvent{
		{Customer: "EA", StartDate: time.Date(2025, time.September, 30, 23, 0, 0, 0, time.UTC), SrcIP: "10.0.0.1"},
		{Customer: "EA", StartDate: time.Date(2025, time.October, 1, 1, 0, 0, 0, time.UTC), SrcIP: "10.0.0.2"},
		{Customer: "EA", StartDate: time.Date(2025, time.October, 1, 2, 0, 0, 0, time.UTC), SrcIP: "10.0.0.2"},
	}
	for _, ev := range events {
		if err := w.Write(ctx, ev); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	sept := source.Locate(dir, "EA", source.Month{Year: 2025, Month: time.September})
	oct := source.Locate(dir, "EA", source.Month{Year: 2025, Month: time.October})
	for _, path := range []string{sept, oct} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("database missing: %s", path)
		}
	}

	provider := source.NewSQLiteProvider(dir)
	src, ok, err := provider.Open(ctx, "EA", source.Month{Year: 2025, Month: time.October})
	if err != nil || !ok {
		t.Fatalf("open october: %v %v", ok, err)
	}
	defer src.Close()
	count, err := src.CountDay(ctx, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("october count: %d", count)
	}
}

func TestWriterFlushOnBatch(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 2, nil)
	defer w.Close()

	ctx := context.Background()
	ev := model.AttackEvent{Customer: "EA", StartDate: time.Date(2025, time.September, 15, 8, 0, 0, 0, time.UTC)}
	if err := w.Write(ctx, ev); err != nil {
		t.Fatalf("write: %v", err)
	}
	path := source.Locate(dir, "EA", source.Month{Year: 2025, Month: time.September})
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("flushed before batch filled")
	}
	if err := w.Write(ctx, ev); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database missing after batch flush: %v", err)
	}
}

func TestWriterCloseFlushes(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 100, nil)

	ctx := context.Background()
	ev := model.AttackEvent{Customer: "EA", StartDate: time.Date(2025, time.September, 15, 8, 0, 0, 0, time.UTC), SrcIP: "10.0.0.9"}
	if err := w.Write(ctx, ev); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	path := source.Locate(dir, "EA", source.Month{Year: 2025, Month: time.September})
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database missing after close: %v", err)
	}
	provider := source.NewSQLiteProvider(dir)
	src, ok, err := provider.Open(ctx, "EA", source.Month{Year: 2025, Month: time.September})
	if err != nil || !ok {
		t.Fatalf("open: %v %v", ok, err)
	}
	defer src.Close()
	count, err := src.CountDay(ctx, time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("buffered event lost: count %d", count)
	}
}
