package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
)

type actionRepository struct {
	mu      sync.RWMutex
	actions map[int64]*model.Action
	nextID  int64
}

func newActionRepository() *actionRepository {
	return &actionRepository{
		actions: make(map[int64]*model.Action),
		nextID:  1,
	}
}

func copyRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return bytes.Clone(raw)
}

// copyAction creates a deep copy of an action
func copyAction(a *model.Action) *model.Action {
	return &model.Action{
		ID:              a.ID,
		AgentRunID:      a.AgentRunID,
		Type:            a.Type,
		Payload:         copyRaw(a.Payload),
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		ExecutedAt:      a.ExecutedAt,
		ExecutionResult: copyRaw(a.ExecutionResult),
	}
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAction(action)
	created.ID = r.nextID
	created.CreatedAt = time.Now().UTC().Format(model.StoreTimeLayout)
	r.nextID++

	r.actions[created.ID] = created
	return copyAction(created), nil
}

func (r *actionRepository) Get(ctx context.Context, id int64) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, exists := r.actions[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", id))
	}

	return copyAction(action), nil
}

func (r *actionRepository) List(ctx context.Context, status types.ActionStatus, limit int) ([]*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]*model.Action, 0, len(r.actions))
	for _, action := range r.actions {
		if status != "" && action.Status != status {
			continue
		}
		actions = append(actions, copyAction(action))
	}

	// IDs are assigned in creation order
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].ID > actions[j].ID
	})

	if limit > 0 && len(actions) > limit {
		actions = actions[:limit]
	}
	return actions, nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.actions[action.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", action.ID))
	}

	updated := copyAction(action)
	updated.CreatedAt = existing.CreatedAt

	r.actions[updated.ID] = updated
	return copyAction(updated), nil
}
