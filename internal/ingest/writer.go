package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"attackreport/internal/model"
	"attackreport/internal/source"
)

// Writer routes attack events into the per-customer monthly database files,
// creating files and schema on first use. Events buffer in memory and flush
// in one transaction per database once the batch fills.
type Writer struct {
	dir       string
	batchSize int
	logger    *slog.Logger
	dbs       map[string]*sql.DB
	pending   []model.AttackEvent
}

func NewWriter(databaseDir string, batchSize int, logger *slog.Logger) *Writer {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Writer{
		dir:       databaseDir,
		batchSize: batchSize,
		logger:    logger,
		dbs:       make(map[string]*sql.DB),
	}
}

func (w *Writer) Write(ctx context.Context, ev model.AttackEvent) error {
	w.pending = append(w.pending, ev)
	if len(w.pending) >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

func (w *Writer) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	byPath := make(map[string][]model.AttackEvent)
	for _, ev := range w.pending {
		path := source.Locate(w.dir, ev.Customer, source.MonthOf(ev.StartDate.UTC()))
		byPath[path] = append(byPath[path], ev)
	}
	for path, events := range byPath {
		if err := w.flushTo(ctx, path, events); err != nil {
			return err
		}
	}
	if w.logger != nil {
		w.logger.Debug("events flushed", "count", len(w.pending), "databases", len(byPath))
	}
	w.pending = w.pending[:0]
	return nil
}

func (w *Writer) flushTo(ctx context.Context, path string, events []model.AttackEvent) error {
	db, err := w.open(ctx, path)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attacks (startDate, srcIP, category, severity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			ev.StartDate.UTC().Format("2006-01-02 15:04:05"),
			ev.SrcIP,
			ev.Category,
			ev.Severity,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert into %s: %w", path, err)
		}
	}
	return tx.Commit()
}

func (w *Writer) open(ctx context.Context, path string) (*sql.DB, error) {
	if db, ok := w.dbs[path]; ok {
		return db, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attacks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			startDate TEXT NOT NULL,
			srcIP TEXT,
			category TEXT,
			severity TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attacks_start ON attacks(startDate)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %s: %w", path, err)
		}
	}
	w.dbs[path] = db
	return db, nil
}

func (w *Writer) Close() error {
	var firstErr error
	if err := w.Flush(context.Background()); err != nil {
		firstErr = err
	}
	for _, db := range w.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	w.dbs = make(map[string]*sql.DB)
	return firstErr
}
