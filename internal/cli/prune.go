package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"attackreport/internal/logging"
	"attackreport/internal/maintenance"
)

func cmdPrune() *cli.Command {
	return &cli.Command{
		Name:      "prune",
		Usage:     "Delete rows outside a day range of the database's month and compact the file",
		ArgsUsage: "<database> <start-day> <end-day>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 3 {
				return cli.Exit("usage: attackreport prune <database> <start-day> <end-day>", 1)
			}
			dbPath := c.Args().Get(0)
			startDay, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return cli.Exit("start-day must be a number: "+c.Args().Get(1), 1)
			}
			endDay, err := strconv.Atoi(c.Args().Get(2))
			if err != nil {
				return cli.Exit("end-day must be a number: "+c.Args().Get(2), 1)
			}

			logger := logging.NewLogger("info", "text")
			result, err := maintenance.Prune(ctx, dbPath, startDay, endDay, logger)
			switch {
			case errors.Is(err, maintenance.ErrMissingFile):
				return cli.Exit(err.Error(), 2)
			case errors.Is(err, maintenance.ErrNoSampleDate):
				return cli.Exit(err.Error(), 3)
			case err != nil:
				return cli.Exit(err.Error(), 1)
			}
			fmt.Printf("pruned %s: kept days %d..%d of %04d-%02d, deleted %d rows\n",
				dbPath, startDay, endDay, result.Year, int(result.Month), result.Deleted)
			return nil
		},
	}
}
