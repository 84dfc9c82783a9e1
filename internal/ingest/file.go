package ingest

import (
	"bufio"
	"context"
	"log/slog"
	"os"
)

// Backfill reads one attack event per line from a file and routes each into
// the monthly databases. Returns the number of events written; bad lines are
// logged and skipped.
func Backfill(ctx context.Context, path string, parser *Parser, writer *Writer, logger *slog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	written := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return written, err
		}
		fields, err := parser.ParseLine(scanner.Text())
		if err != nil || fields == nil {
			if err != nil && logger != nil {
				logger.Warn("backfill parse error", "file", path, "line", lineNo, "err", err)
			}
			continue
		}
		ev, err := parser.Normalize(*fields)
		if err != nil {
			if logger != nil {
				logger.Warn("backfill normalize error", "file", path, "line", lineNo, "err", err)
			}
			continue
		}
		if err := writer.Write(ctx, ev); err != nil {
			return written, err
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, err
	}
	return written, writer.Flush(ctx)
}
