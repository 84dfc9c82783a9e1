package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"attackreport/internal/model"
)

type sqliteProvider struct {
	dir string
}

// NewSQLiteProvider serves the per-customer monthly database files under dir,
// following the database_<CUSTOMER>_<MM>_<YYYY>.sqlite naming convention.
func NewSQLiteProvider(dir string) Provider {
	return &sqliteProvider{dir: dir}
}

func Locate(dir, customer string, m Month) string {
	name := fmt.Sprintf("database_%s_%02d_%04d.sqlite", customer, int(m.Month), m.Year)
	return filepath.Join(dir, customer, name)
}

func (p *sqliteProvider) Name(customer string, m Month) string {
	return Locate(p.dir, customer, m)
}

func (p *sqliteProvider) Open(ctx context.Context, customer string, m Month) (Source, bool, error) {
	path := Locate(p.dir, customer, m)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, false, err
	}
	return &sqliteSource{db: db, path: path}, true, nil
}

func (p *sqliteProvider) Close() error {
	return nil
}

type sqliteSource struct {
	db   *sql.DB
	path string
}

func (s *sqliteSource) CountDay(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attacks WHERE DATE(startDate) = ?`,
		dayString(day),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count day %s in %s: %w", dayString(day), s.path, err)
	}
	return count, nil
}

func (s *sqliteSource) CountRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attacks WHERE DATE(startDate) >= ? AND DATE(startDate) <= ?`,
		dayString(from), dayString(to),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count range in %s: %w", s.path, err)
	}
	return count, nil
}

func (s *sqliteSource) TopSources(ctx context.Context, from, to time.Time, limit int) ([]model.TopSource, error) {
	query := `SELECT srcIP, COUNT(*) FROM attacks
		WHERE DATE(startDate) >= ? AND DATE(startDate) <= ? AND srcIP IS NOT NULL AND srcIP <> ''
		GROUP BY srcIP ORDER BY COUNT(*) DESC, srcIP ASC`
	args := []any{dayString(from), dayString(to)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top sources in %s: %w", s.path, err)
	}
	defer rows.Close()
	var out []model.TopSource
	for rows.Next() {
		var ts model.TopSource
		if err := rows.Scan(&ts.SrcIP, &ts.Count); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *sqliteSource) MalformedCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attacks WHERE startDate IS NULL OR DATE(startDate) IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("malformed count in %s: %w", s.path, err)
	}
	return count, nil
}

func (s *sqliteSource) Close() error {
	return s.db.Close()
}
