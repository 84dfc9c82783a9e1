package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"attackreport/internal/config"
)

// RunKafka consumes attack events from the configured topic and routes them
// into the monthly databases until ctx is cancelled. Unparseable payloads are
// logged and skipped.
func RunKafka(ctx context.Context, cfg config.KafkaConfig, parser *Parser, writer *Writer, logger *slog.Logger) error {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.GroupID == "" {
		return errors.New("kafka ingest requires brokers, topic, group_id")
	}
	if logger != nil {
		logger.Info("kafka ingest started", "brokers", cfg.Brokers, "topic", cfg.Topic, "group_id", cfg.GroupID)
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				if err := writer.Flush(context.Background()); err != nil {
					if logger != nil {
						logger.Error("flush on shutdown failed", "err", err)
					}
					return err
				}
				return nil
			}
			if logger != nil {
				logger.Warn("kafka read error", "err", err)
			}
			continue
		}
		fields, err := parser.ParseLine(string(m.Value))
		if err != nil || fields == nil {
			if err != nil && logger != nil {
				logger.Warn("kafka parse error", "err", err, "offset", m.Offset)
			}
			continue
		}
		ev, err := parser.Normalize(*fields)
		if err != nil {
			if logger != nil {
				logger.Warn("kafka normalize error", "err", err, "offset", m.Offset)
			}
			continue
		}
		if err := writer.Write(ctx, ev); err != nil {
			return err
		}
	}
}
