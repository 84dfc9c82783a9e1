package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestLocateNamingConvention(t *testing.T) {
	path := Locate("/data", "EA", Month{Year: 2025, Month: time.September})
	want := filepath.Join("/data", "EA", "database_EA_09_2025.sqlite")
	if path != want {
		t.Fatalf("path: %s", path)
	}
}

func TestOpenAbsentMonth(t *testing.T) {
	p := NewSQLiteProvider(t.TempDir())
	src, ok, err := p.Open(context.Background(), "EA", Month{Year: 2025, Month: time.September})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ok || src != nil {
		t.Fatalf("expected absent source")
	}
}

func TestSQLiteCounts(t *testing.T) {
	dir := t.TempDir()
	m := Month{Year: 2025, Month: time.September}
	path := Locate(dir, "EA", m)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE attacks (id INTEGER PRIMARY KEY AUTOINCREMENT, startDate TEXT NOT NULL, srcIP TEXT, category TEXT, severity TEXT)`); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, row := range []struct{ ts, ip string }{
		{"2025-09-22 08:00:00", "10.0.0.1"},
		{"2025-09-22 09:00:00", "10.0.0.1"},
		{"2025-09-23 10:00:00", "10.0.0.2"},
		{"broken", "10.0.0.3"},
	} {
		if _, err := db.Exec(`INSERT INTO attacks (startDate, srcIP) VALUES (?, ?)`, row.ts, row.ip); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	db.Close()

	p := NewSQLiteProvider(dir)
	src, ok, err := p.Open(context.Background(), "EA", m)
	if err != nil || !ok {
		t.Fatalf("open: %v %v", ok, err)
	}
	defer src.Close()

	ctx := context.Background()
	day := time.Date(2025, time.September, 22, 0, 0, 0, 0, time.UTC)
	count, err := src.CountDay(ctx, day)
	if err != nil {
		t.Fatalf("count day: %v", err)
	}
	if count != 2 {
		t.Fatalf("day count: %d", count)
	}
	count, err = src.CountRange(ctx, day, day.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("count range: %v", err)
	}
	if count != 3 {
		t.Fatalf("range count: %d", count)
	}
	malformed, err := src.MalformedCount(ctx)
	if err != nil {
		t.Fatalf("malformed: %v", err)
	}
	if malformed != 1 {
		t.Fatalf("malformed count: %d", malformed)
	}
	top, err := src.TopSources(ctx, day, day.AddDate(0, 0, 6), 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].SrcIP != "10.0.0.1" || top[0].Count != 2 {
		t.Fatalf("top: %v", top)
	}
}
