package cli

import (
	"io"

	"github.com/urfave/cli/v3"
)

// NewApp exposes the root command with its output redirected for testing purposes
func NewApp(version string, w io.Writer) *cli.Command {
	return newApp(version, w)
}

var (
	Badge               = badge
	RenderActions       = renderActions
	RenderAgentRun      = renderAgentRun
	RenderLogs          = renderLogs
	NewTerminalNotifier = newTerminalNotifier
)
