package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

// DashboardState is what the dashboard renders in one pass
type DashboardState struct {
	ActiveView types.View    `json:"active_view"`
	AgentRun   AgentRunState `json:"agent_run"`
	Logs       LogState      `json:"logs"`
	Actions    ActionState   `json:"actions"`
}

// DashboardUseCase selects which view is shown and triggers the views' lazy
// loads on activation. It never resets a view's state.
type DashboardUseCase struct {
	agentRun *AgentRunUseCase
	log      *LogUseCase
	action   *ActionUseCase

	mu     sync.Mutex
	active types.View
}

func NewDashboardUseCase(agentRun *AgentRunUseCase, log *LogUseCase, action *ActionUseCase) *DashboardUseCase {
	return &DashboardUseCase{
		agentRun: agentRun,
		log:      log,
		action:   action,
		active:   types.ViewAgent,
	}
}

func (uc *DashboardUseCase) ActiveView() types.View {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.active
}

// Select activates view. Selecting the view that is already active does
// nothing. Activating Logs loads them when none are loaded yet; activating
// Actions always refreshes the list.
func (uc *DashboardUseCase) Select(ctx context.Context, view types.View) error {
	if !view.IsValid() {
		return goerr.Wrap(ErrInvalidView, "cannot select view", goerr.V(ViewKey, view))
	}

	uc.mu.Lock()
	if uc.active == view {
		uc.mu.Unlock()
		return nil
	}
	uc.active = view
	uc.mu.Unlock()

	logging.From(ctx).Debug("view activated", "view", view)

	switch view {
	case types.ViewLogs:
		uc.log.Activate(ctx)
	case types.ViewActions:
		uc.action.RefreshAsync(ctx)
	}
	return nil
}

func (uc *DashboardUseCase) Snapshot() DashboardState {
	return DashboardState{
		ActiveView: uc.ActiveView(),
		AgentRun:   uc.agentRun.State(),
		Logs:       uc.log.State(),
		Actions:    uc.action.State(),
	}
}
