package cli

import (
	"context"
	"strings"

	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const runDescription = "Without a prompt argument the configured default prompt is sent (\"" +
	usecase.DefaultPrompt + "\" unless the config file sets default_prompt)."

func cmdRun() *cli.Command {
	var cfg terminalConfig

	return &cli.Command{
		Name:        "run",
		Usage:       "Submit a prompt to the agent runner and show its evaluation",
		ArgsUsage:   "[prompt]",
		Description: runDescription,
		Flags:       cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			uc, err := cfg.useCases(ctx, c, w)
			if err != nil {
				return err
			}

			prompt := strings.Join(c.Args().Slice(), " ")
			if prompt == "" {
				prompt = uc.AgentRun.State().Prompt
			}

			err = uc.AgentRun.Submit(ctx, prompt)
			renderAgentRun(w, uc.AgentRun.State())
			return err
		},
	}
}
