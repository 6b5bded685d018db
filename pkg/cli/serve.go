package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/cli/config"
	httpctrl "github.com/secmon-lab/controltower/pkg/controller/http"
	"github.com/secmon-lab/controltower/pkg/service/notify"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var fileCfg config.File
	var backendCfg config.Backend
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CONTROLTOWER_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the browser dashboard",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appCfg, err := fileCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			backendCfg.Merge(c, appCfg)
			slackCfg.Merge(c, appCfg)

			client, err := backendCfg.Configure()
			if err != nil {
				return err
			}

			slackNotifier, err := slackCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack")
			}

			queue := notify.NewQueue()
			opts := append(appCfg.UseCaseOptions(),
				usecase.WithNotifier(notify.NewMulti(queue, slackNotifier)),
			)
			uc := usecase.New(client, opts...)

			handler := httpctrl.New(uc,
				httpctrl.WithNotificationQueue(queue),
				httpctrl.WithBackendURL(client.BaseURL()),
			)

			logging.Default().Info("Dashboard configured", "backend", backendCfg, "slack", slackCfg)
			return runServer(ctx, "dashboard", addr, handler)
		},
	}
}
