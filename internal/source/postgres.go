package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"attackreport/internal/model"
)

type postgresProvider struct {
	db *sql.DB
}

// NewPostgresProvider serves attack records from one central archive table
// with a customer column instead of per-month files. Every month resolves as
// present; queries are scoped by customer and date range.
func NewPostgresProvider(dsn string) (Provider, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/attackreport?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresProvider{db: db}, nil
}

func (p *postgresProvider) Name(customer string, m Month) string {
	return fmt.Sprintf("postgres:attacks/%s/%s", customer, m)
}

func (p *postgresProvider) Open(ctx context.Context, customer string, m Month) (Source, bool, error) {
	return &postgresSource{db: p.db, customer: customer, month: m}, true, nil
}

func (p *postgresProvider) Close() error {
	return p.db.Close()
}

type postgresSource struct {
	db       *sql.DB
	customer string
	month    Month
}

func (s *postgresSource) monthBounds() (string, string) {
	first := time.Date(s.month.Year, s.month.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return dayString(first), dayString(last)
}

func (s *postgresSource) CountDay(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attacks WHERE customer = $1 AND startDate::date = $2::date`,
		s.customer, dayString(day),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count day %s for %s: %w", dayString(day), s.customer, err)
	}
	return count, nil
}

func (s *postgresSource) CountRange(ctx context.Context, from, to time.Time) (int64, error) {
	lo, hi := s.monthBounds()
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attacks
		WHERE customer = $1
		AND startDate::date >= GREATEST($2::date, $4::date)
		AND startDate::date <= LEAST($3::date, $5::date)`,
		s.customer, dayString(from), dayString(to), lo, hi,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count range for %s: %w", s.customer, err)
	}
	return count, nil
}

func (s *postgresSource) TopSources(ctx context.Context, from, to time.Time, limit int) ([]model.TopSource, error) {
	lo, hi := s.monthBounds()
	query := `SELECT srcIP, COUNT(*) FROM attacks
		WHERE customer = $1
		AND startDate::date >= GREATEST($2::date, $4::date)
		AND startDate::date <= LEAST($3::date, $5::date)
		AND srcIP IS NOT NULL AND srcIP <> ''
		GROUP BY srcIP ORDER BY COUNT(*) DESC, srcIP ASC`
	args := []any{s.customer, dayString(from), dayString(to), lo, hi}
	if limit > 0 {
		query += ` LIMIT $6`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top sources for %s: %w", s.customer, err)
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

// MalformedCount is always zero: the archive stores startDate as a typed
// timestamp column, so unparseable values cannot exist.
func (s *postgresSource) MalformedCount(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *postgresSource) Close() error {
	// shared handle, owned by the provider
	return nil
}
