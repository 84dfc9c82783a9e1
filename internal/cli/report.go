package cli

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"attackreport/internal/mailer"
	"attackreport/internal/report"
	"attackreport/internal/source"
)

func cmdReport(configPath *string) *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Generate and deliver the weekly attack report for one customer",
		ArgsUsage: "<customer>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("usage: attackreport report <customer>", 1)
			}
			customer := c.Args().Get(0)

			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			provider, err := source.NewProvider(cfg.Source, cfg.Paths)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer provider.Close()

			gen := report.NewGenerator(cfg, provider, logger)
			ref := cfg.ReferenceDate(time.Now().UTC())
			art, err := gen.Run(ctx, customer, ref)
			if err != nil {
				logger.Error("report generation failed", "customer", customer, "err", err)
				return cli.Exit(err.Error(), 1)
			}

			if !cfg.Email.SendEmail {
				logger.Info("email delivery disabled", "attachments", art.Attachments())
				return nil
			}
			m := mailer.New(cfg.Email)
			if err := m.SendReport(ctx, art.Result, art.WeekEnd, art.Attachments()); err != nil {
				logger.Error("email delivery failed", "customer", customer, "err", err)
				return cli.Exit(err.Error(), 1)
			}
			logger.Info("report delivered", "customer", customer, "recipients", cfg.Email.To)
			return nil
		},
	}
}
