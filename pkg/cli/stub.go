package cli

import (
	"context"

	"github.com/secmon-lab/controltower/pkg/controller/http"
	"github.com/secmon-lab/controltower/pkg/repository/memory"
	"github.com/secmon-lab/controltower/pkg/service/evaluator"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdStub() *cli.Command {
	var addr string
	policy := evaluator.DefaultPolicyConfig()

	return &cli.Command{
		Name:  "stub",
		Usage: "Start an in-memory stand-in for the agent-evaluation service (development only)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "HTTP server address",
				Value:       ":8000",
				Sources:     cli.EnvVars("CONTROLTOWER_STUB_ADDR"),
				Destination: &addr,
			},
			&cli.BoolFlag{
				Name:        "require-approval-for-high-risk",
				Usage:       "Require approval for high risk runs",
				Category:    "Policy",
				Value:       policy.RequireApprovalForHighRisk,
				Destination: &policy.RequireApprovalForHighRisk,
			},
			&cli.BoolFlag{
				Name:        "block-destructive-actions",
				Usage:       "Block runs asking for destructive actions",
				Category:    "Policy",
				Value:       policy.BlockDestructiveActions,
				Destination: &policy.BlockDestructiveActions,
			},
			&cli.BoolFlag{
				Name:        "require-approval-for-security-sensitive",
				Usage:       "Require approval for security sensitive runs",
				Category:    "Policy",
				Value:       policy.RequireApprovalForSecuritySensitive,
				Destination: &policy.RequireApprovalForSecuritySensitive,
			},
			&cli.BoolFlag{
				Name:        "require-approval-for-sensitive-data",
				Usage:       "Require approval for privacy or financial data",
				Category:    "Policy",
				Value:       policy.RequireApprovalForSensitiveData,
				Destination: &policy.RequireApprovalForSensitiveData,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			uc := usecase.NewStubUseCase(memory.New(), usecase.WithPolicyConfig(policy))
			return runServer(ctx, "stub", addr, http.NewStubHandler(uc))
		},
	}
}
