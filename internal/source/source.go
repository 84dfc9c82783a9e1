package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"attackreport/internal/config"
	"attackreport/internal/model"
)

// Month identifies one customer-scoped monthly data source.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Source answers read-only count queries against a single month of attack
// records. Implementations scope every query to their own month.
type Source interface {
	CountDay(ctx context.Context, day time.Time) (int64, error)
	CountRange(ctx context.Context, from, to time.Time) (int64, error)
	TopSources(ctx context.Context, from, to time.Time, limit int) ([]model.TopSource, error)
	MalformedCount(ctx context.Context) (int64, error)
	Close() error
}

// Provider resolves a customer and month to a Source. Open reports absence
// via its bool result; Name returns the identifier used in warnings whether
// or not the source exists.
type Provider interface {
	Open(ctx context.Context, customer string, m Month) (Source, bool, error)
	Name(customer string, m Month) string
	Close() error
}

func NewProvider(cfg config.SourceConfig, paths config.PathsConfig) (Provider, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "":
		return NewSQLiteProvider(paths.DatabaseDir), nil
	case "postgres", "postgresql":
		return NewPostgresProvider(cfg.DSN)
	default:
		return nil, errors.New("unsupported source driver")
	}
}

func dayString(t time.Time) string {
	return t.Format("2006-01-02")
}
