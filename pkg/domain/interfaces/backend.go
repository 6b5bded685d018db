package interfaces

import (
	"context"

	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
)

// Backend is the remote agent-evaluation service together with its log and
// action stores. Every method is a single request without retries.
type Backend interface {
	// RunAgent submits a prompt for evaluation (POST /agent/run)
	RunAgent(ctx context.Context, prompt string) (*model.AgentRunResult, error)

	// RecentLogs reads the recent-window snapshot of runs (GET /logs/recent)
	RecentLogs(ctx context.Context) ([]*model.AgentRunLog, error)

	// LogAnalytics reads the run summary (GET /logs/analytics)
	LogAnalytics(ctx context.Context) (*model.LogAnalytics, error)

	// ListActions reads the action snapshot (GET /actions/all). An empty status
	// lists every action.
	ListActions(ctx context.Context, status types.ActionStatus) (model.ActionList, error)

	// SimulateAction creates an action on the store (POST /actions/simulate)
	SimulateAction(ctx context.Context, req *model.SimulateActionRequest) error

	// ExecuteAction asks the store to execute an action (POST /actions/{id}/execute)
	ExecuteAction(ctx context.Context, id int64) error

	// CancelAction asks the store to cancel an action (POST /actions/{id}/cancel)
	CancelAction(ctx context.Context, id int64) error
}
