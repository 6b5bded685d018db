package interfaces

import (
	"context"

	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
)

// Repository is the run and action store behind the development stub
type Repository interface {
	AgentRun() AgentRunRepository
	Action() ActionRepository
}

type AgentRunRepository interface {
	Create(ctx context.Context, run *model.AgentRun) (*model.AgentRun, error)
	Get(ctx context.Context, id int64) (*model.AgentRun, error)
	// List returns runs newest first. A non-positive limit returns all.
	List(ctx context.Context, limit int) ([]*model.AgentRun, error)
}

type ActionRepository interface {
	Create(ctx context.Context, action *model.Action) (*model.Action, error)
	Get(ctx context.Context, id int64) (*model.Action, error)
	// List returns actions newest first, optionally narrowed to one status.
	// A non-positive limit returns all.
	List(ctx context.Context, status types.ActionStatus, limit int) ([]*model.Action, error)
	Update(ctx context.Context, action *model.Action) (*model.Action, error)
}
