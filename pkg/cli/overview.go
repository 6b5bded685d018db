package cli

import (
	"context"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func cmdOverview() *cli.Command {
	var cfg terminalConfig

	return &cli.Command{
		Name:  "overview",
		Usage: "Show recent runs, the run summary and all actions at once",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			uc, err := cfg.useCases(ctx, c, w)
			if err != nil {
				return err
			}

			// Each view records its own failure, so one failed load must not
			// cancel the others.
			var eg errgroup.Group
			eg.Go(func() error { return uc.Log.LoadRecent(ctx) })
			eg.Go(func() error { return uc.Log.LoadAnalytics(ctx) })
			eg.Go(func() error { return uc.Action.Refresh(ctx) })
			err = eg.Wait()

			renderLogs(w, uc.Log.State())
			renderActions(w, uc.Action.State())
			return err
		},
	}
}
