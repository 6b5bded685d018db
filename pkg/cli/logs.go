package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func cmdLogs() *cli.Command {
	var cfg terminalConfig
	var analytics bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "analytics",
			Aliases:     []string{"a"},
			Usage:       "Also show the run summary by risk level and policy decision",
			Destination: &analytics,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "logs",
		Usage: "Show recent agent runs",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			uc, err := cfg.useCases(ctx, c, w)
			if err != nil {
				return err
			}

			if analytics {
				if err := uc.Log.LoadAnalytics(ctx); err != nil {
					renderLogs(w, uc.Log.State())
					return err
				}
			}

			err = uc.Log.LoadRecent(ctx)
			renderLogs(w, uc.Log.State())
			return err
		},
	}
}
