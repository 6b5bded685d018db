package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
)

type agentRunRepository struct {
	mu     sync.RWMutex
	runs   map[int64]*model.AgentRun
	nextID int64
}

func newAgentRunRepository() *agentRunRepository {
	return &agentRunRepository{
		runs:   make(map[int64]*model.AgentRun),
		nextID: 1,
	}
}

func copyAgentRun(r *model.AgentRun) *model.AgentRun {
	copied := *r
	copied.RiskFlags = append([]string(nil), r.RiskFlags...)
	copied.PolicyReasons = append([]string(nil), r.PolicyReasons...)
	return &copied
}

func (r *agentRunRepository) Create(ctx context.Context, run *model.AgentRun) (*model.AgentRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAgentRun(run)
	created.ID = r.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	r.nextID++

	r.runs[created.ID] = created
	return copyAgentRun(created), nil
}

func (r *agentRunRepository) Get(ctx context.Context, id int64) (*model.AgentRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "agent run not found", goerr.V("id", id))
	}
	return copyAgentRun(run), nil
}

func (r *agentRunRepository) List(ctx context.Context, limit int) ([]*model.AgentRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*model.AgentRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, copyAgentRun(run))
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
