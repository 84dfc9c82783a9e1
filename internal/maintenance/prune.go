package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrMissingFile  = errors.New("database file does not exist")
	ErrNoSampleDate = errors.New("no parseable startDate to infer month and year")
)

type Result struct {
	Year    int
	Month   time.Month
	Deleted int64
}

// Prune deletes every attack row outside [startDay, endDay] of the month the
// database covers and compacts the file. The month and year are inferred from
// the first parseable startDate; rows with unparseable timestamps are deleted
// as well.
func Prune(ctx context.Context, dbPath string, startDay, endDay int, logger *slog.Logger) (*Result, error) {
	if startDay < 1 || startDay > 31 || endDay < 1 || endDay > 31 || startDay > endDay {
		return nil, fmt.Errorf("invalid day range %d..%d", startDay, endDay)
	}
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, dbPath)
		}
		return nil, err
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var sample string
	err = db.QueryRowContext(ctx,
		`SELECT DATE(startDate) FROM attacks WHERE DATE(startDate) IS NOT NULL LIMIT 1`,
	).Scan(&sample)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoSampleDate, dbPath)
	}
	if err != nil {
		return nil, err
	}
	sampleDate, err := time.ParseInLocation("2006-01-02", sample, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSampleDate, dbPath)
	}

	year, month := sampleDate.Year(), sampleDate.Month()
	from := fmt.Sprintf("%04d-%02d-%02d", year, int(month), startDay)
	to := fmt.Sprintf("%04d-%02d-%02d", year, int(month), endDay)

	res, err := db.ExecContext(ctx,
		`DELETE FROM attacks WHERE DATE(startDate) IS NULL OR DATE(startDate) < ? OR DATE(startDate) > ?`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("delete from %s: %w", dbPath, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `VACUUM`); err != nil {
		return nil, fmt.Errorf("vacuum %s: %w", dbPath, err)
	}

	if logger != nil {
		logger.Info("database pruned",
			"path", dbPath,
			"year", year,
			"month", int(month),
			"kept", fmt.Sprintf("%s..%s", from, to),
			"deleted", deleted,
		)
	}
	return &Result{Year: year, Month: month, Deleted: deleted}, nil
}
