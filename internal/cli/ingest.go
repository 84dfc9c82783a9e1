package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"attackreport/internal/ingest"
)

func cmdIngest(configPath *string) *cli.Command {
	var (
		customer string
		file     string
	)
	return &cli.Command{
		Name:  "ingest",
		Usage: "Route attack events into the monthly databases from Kafka or a backfill file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "customer",
				Usage:       "default customer for events that do not name one",
				Destination: &customer,
			},
			&cli.StringFlag{
				Name:        "file",
				Usage:       "backfill from a file of one event per line instead of Kafka",
				Destination: &file,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			parser := ingest.NewParser(customer)
			writer := ingest.NewWriter(cfg.Paths.DatabaseDir, cfg.Ingest.BatchSize, logger)
			defer writer.Close()

			if file != "" {
				written, err := ingest.Backfill(ctx, file, parser, writer, logger)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				logger.Info("backfill complete", "file", file, "events", written)
				return nil
			}
			if err := ingest.RunKafka(ctx, cfg.Ingest.Kafka, parser, writer, logger); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}
