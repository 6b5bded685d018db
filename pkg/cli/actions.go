package cli

import (
	"context"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdActions() *cli.Command {
	return &cli.Command{
		Name:    "actions",
		Aliases: []string{"a"},
		Usage:   "List and operate on proposed actions",
		Commands: []*cli.Command{
			cmdActionsList(),
			cmdActionsSimulate(),
			cmdActionMutation("execute", "Execute an action", (*usecase.ActionUseCase).Execute),
			cmdActionMutation("cancel", "Cancel an action", (*usecase.ActionUseCase).Cancel),
		},
	}
}

func cmdActionsList() *cli.Command {
	var cfg terminalConfig
	var status string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Show only actions with this status [pending|simulated|executed|cancelled]",
			Destination: &status,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List actions, newest first",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			uc, err := cfg.useCases(ctx, c, w)
			if err != nil {
				return err
			}

			if err := uc.Action.SetStatusFilter(types.ActionStatus(status)); err != nil {
				return err
			}

			err = uc.Action.Refresh(ctx)
			renderActions(w, uc.Action.State())
			return err
		},
	}
}

func cmdActionsSimulate() *cli.Command {
	var cfg terminalConfig
	var runID string
	var actionType string
	var payload string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "run-id",
			Usage:       "ID of the agent run the action belongs to",
			Required:    true,
			Destination: &runID,
		},
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Action type [email_suggestion|database_query|api_call_external|file_operation|notification]",
			Value:       types.ActionTypeEmailSuggestion.String(),
			Destination: &actionType,
		},
		&cli.StringFlag{
			Name:        "payload",
			Usage:       "Action payload as JSON (defaults to the configured draft payload)",
			Destination: &payload,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "simulate",
		Usage: "Create an action on the store",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			uc, err := cfg.useCases(ctx, c, w)
			if err != nil {
				return err
			}

			if !c.IsSet("payload") {
				payload = uc.Action.State().Draft.Payload
			}
			if err := uc.Action.UpdateDraft(runID, types.ActionType(actionType), payload); err != nil {
				return err
			}

			if err := uc.Action.Simulate(ctx); err != nil {
				return err
			}
			renderActions(w, uc.Action.State())
			return nil
		},
	}
}

type actionMutation func(uc *usecase.ActionUseCase, ctx context.Context, id int64) error

func cmdActionMutation(name, usage string, mutate actionMutation) *cli.Command {
	var cfg terminalConfig

	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<action id>",
		Flags:     cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.Wrap(ErrActionIDRequired, "exactly one action id is required", goerr.V(CommandKey, name))
			}
			raw := c.Args().First()
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return goerr.Wrap(ErrActionIDRequired, err.Error(), goerr.V(usecase.ActionIDKey, raw))
			}

			w := output(c)
			uc, err := cfg.useCases(ctx, c, w)
			if err != nil {
				return err
			}

			if err := mutate(uc.Action, ctx, id); err != nil {
				return err
			}
			renderActions(w, uc.Action.State())
			return nil
		},
	}
}
