package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"attackreport/internal/config"
	"attackreport/internal/logging"
)

func Run(ctx context.Context, args []string) error {
	var configPath string

	app := &cli.Command{
		Name:    "attackreport",
		Usage:   "Weekly attack-trends reporting pipeline",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "configuration file (YAML or JSON)",
				Value:       "config.yml",
				Sources:     cli.EnvVars("ATTACKREPORT_CONFIG"),
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			cmdReport(&configPath),
			cmdIngest(&configPath),
			cmdPrune(),
		},
	}
	return app.Run(ctx, args)
}

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.Paths.DatabaseDir = config.ResolvePath(cfg.Paths.DatabaseDir)
	cfg.Paths.ReportDir = config.ResolvePath(cfg.Paths.ReportDir)
	return cfg, logging.NewLogger(cfg.LogLevel, cfg.LogFormat), nil
}
