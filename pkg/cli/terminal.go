package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/cli/config"
	"github.com/secmon-lab/controltower/pkg/service/notify"
	"github.com/secmon-lab/controltower/pkg/service/slack"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

// terminalConfig is the flag set shared by the terminal front-ends
type terminalConfig struct {
	file    config.File
	backend config.Backend
	slack   config.Slack
}

func (x *terminalConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.file.Flags()...)
	flags = append(flags, x.backend.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	return flags
}

// useCases builds view-state holders that run every request inline and print
// notifications to w
func (x *terminalConfig) useCases(ctx context.Context, c *cli.Command, w io.Writer) (*usecase.UseCases, error) {
	appCfg, err := x.file.Load()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}
	x.backend.Merge(c, appCfg)
	x.slack.Merge(c, appCfg)

	client, err := x.backend.Configure()
	if err != nil {
		return nil, err
	}

	// one-shot processes exit right after the request, so the mirror waits for Slack
	slackNotifier, err := x.slack.Configure(ctx, slack.WithDispatcher(async.Inline))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure slack")
	}

	opts := append(appCfg.UseCaseOptions(),
		usecase.WithDispatcher(async.Inline),
		usecase.WithNotifier(notify.NewMulti(newTerminalNotifier(w), slackNotifier)),
	)
	return usecase.New(client, opts...), nil
}
