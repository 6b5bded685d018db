package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/service/slack"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack configures the optional Slack mirror of action notifications
type Slack struct {
	botToken string
	channel  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (mirrors action notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("CONTROLTOWER_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to post notifications to",
			Category:    "Slack",
			Destination: &x.channel,
			Sources:     cli.EnvVars("CONTROLTOWER_SLACK_CHANNEL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// Merge takes the channel from the config file when the flag is not given
func (x *Slack) Merge(c *cli.Command, file *AppConfig) {
	if file == nil {
		return
	}
	if !c.IsSet("slack-channel") && file.Slack.Channel != "" {
		x.channel = file.Slack.Channel
	}
}

// IsConfigured checks if a bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns a notifier posting to Slack, or nil when no bot token is set
func (x *Slack) Configure(ctx context.Context, opts ...slack.NotifierOption) (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		logging.From(ctx).Info("Slack bot token not configured, notifications stay in the dashboard")
		return nil, nil
	}
	if x.channel == "" {
		return nil, goerr.Wrap(ErrMissingChannel, "set --slack-channel or [slack] channel")
	}

	svc, err := slack.New(x.botToken, x.channel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}

	logging.From(ctx).Info("Slack notification mirror enabled", "channel", x.channel)
	return slack.NewNotifier(svc, opts...), nil
}
