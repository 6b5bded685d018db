package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/service/backend"
	"github.com/secmon-lab/controltower/pkg/utils/async"
	"github.com/secmon-lab/controltower/pkg/utils/errutil"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

// Operator-facing notification texts for action operations
const (
	MsgSimulated      = "Action simulated successfully!"
	MsgSimulateFailed = "Failed to simulate action"
	MsgExecuted       = "Action executed!"
	MsgExecuteFailed  = "Failed to execute action"
	MsgCancelled      = "Action cancelled!"
	MsgCancelFailed   = "Failed to cancel action"
)

// ActionState is a snapshot of the Actions view
type ActionState struct {
	Actions      model.ActionList   `json:"actions"`
	Draft        model.ActionDraft  `json:"draft"`
	StatusFilter types.ActionStatus `json:"status_filter,omitempty"`
	InFlight     int                `json:"in_flight"`
}

// ActionUseCase shows the store's actions and drives their lifecycle. The
// list is never patched locally: every successful mutation re-fetches it.
type ActionUseCase struct {
	backend  interfaces.Backend
	notifier interfaces.Notifier
	dispatch async.Dispatcher

	mu    sync.Mutex
	state ActionState
	seq   uint64
}

func NewActionUseCase(backend interfaces.Backend, notifier interfaces.Notifier, dispatch async.Dispatcher, defaultPayload string) *ActionUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if dispatch == nil {
		dispatch = async.Dispatch
	}

	draft := model.NewActionDraft()
	if defaultPayload != "" {
		draft.Payload = defaultPayload
	}

	return &ActionUseCase{
		backend:  backend,
		notifier: notifier,
		dispatch: dispatch,
		state: ActionState{
			Actions: model.ActionList{},
			Draft:   draft,
		},
	}
}

func (uc *ActionUseCase) State() ActionState {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s := uc.state
	s.Actions = append(model.ActionList{}, uc.state.Actions...)
	return s
}

// SetStatusFilter narrows Refresh to one status. An empty status lists all.
func (uc *ActionUseCase) SetStatusFilter(status types.ActionStatus) error {
	if status != "" && !status.IsValid() {
		return goerr.Wrap(ErrInvalidStatusFilter, "cannot filter actions", goerr.V(StatusKey, status))
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state.StatusFilter = status
	return nil
}

// UpdateDraft replaces the simulate form. Only the five offered action types
// are accepted; run ID and payload text are kept as typed.
func (uc *ActionUseCase) UpdateDraft(agentRunID string, actionType types.ActionType, payload string) error {
	if !actionType.IsValid() {
		return goerr.Wrap(model.ErrInvalidActionType, "cannot update draft", goerr.V(model.ActionTypeKey, actionType))
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state.Draft = model.ActionDraft{
		AgentRunID: agentRunID,
		Type:       actionType,
		Payload:    payload,
	}
	return nil
}

// Refresh re-reads the action list. A failure empties the list and is only
// logged.
func (uc *ActionUseCase) Refresh(ctx context.Context) error {
	seq, status := uc.beginRefresh()
	return uc.refresh(ctx, seq, status)
}

func (uc *ActionUseCase) RefreshAsync(ctx context.Context) {
	seq, status := uc.beginRefresh()
	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.refresh(ctx, seq, status)
	})
}

func (uc *ActionUseCase) beginRefresh() (uint64, types.ActionStatus) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.seq++
	uc.state.InFlight++
	return uc.seq, uc.state.StatusFilter
}

func (uc *ActionUseCase) refresh(ctx context.Context, seq uint64, status types.ActionStatus) error {
	var actions model.ActionList
	err := recoverAsError(func() error {
		var err error
		actions, err = uc.backend.ListActions(ctx, status)
		return err
	})

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.state.InFlight--
	if seq != uc.seq {
		logging.From(ctx).Debug("discarding stale action list", "seq", seq, "latest", uc.seq)
		return nil
	}

	if err != nil {
		uc.state.Actions = model.ActionList{}
		errutil.Handle(ctx, err, "failed to fetch actions")
		return nil
	}
	if actions == nil {
		actions = model.ActionList{}
	}
	uc.state.Actions = actions
	return nil
}

// Simulate submits the current draft. An invalid payload is reported without
// any request. On success the payload is reset to an empty object and the
// list is refreshed once.
func (uc *ActionUseCase) Simulate(ctx context.Context) error {
	req, err := uc.prepareSimulate(ctx)
	if err != nil {
		return err
	}
	return uc.track(ctx, func(ctx context.Context) error {
		return uc.simulate(ctx, req)
	})
}

// SimulateAsync validates the draft on the caller's goroutine and submits it
// on the dispatcher.
func (uc *ActionUseCase) SimulateAsync(ctx context.Context) {
	req, err := uc.prepareSimulate(ctx)
	if err != nil {
		return
	}
	uc.trackAsync(ctx, func(ctx context.Context) error {
		return uc.simulate(ctx, req)
	})
}

func (uc *ActionUseCase) prepareSimulate(ctx context.Context) (*model.SimulateActionRequest, error) {
	uc.mu.Lock()
	draft := uc.state.Draft
	uc.mu.Unlock()

	req, err := draft.ToSimulateRequest()
	if err != nil {
		uc.notify(ctx, model.NotificationFailure, failureMessage(MsgSimulateFailed, err))
		return nil, err
	}
	return req, nil
}

func (uc *ActionUseCase) simulate(ctx context.Context, req *model.SimulateActionRequest) error {
	err := recoverAsError(func() error {
		return uc.backend.SimulateAction(ctx, req)
	})
	if err != nil {
		uc.notify(ctx, model.NotificationFailure, failureMessage(MsgSimulateFailed, err))
		return goerr.Wrap(err, "failed to simulate action", goerr.V(model.ActionTypeKey, req.Type))
	}

	uc.notify(ctx, model.NotificationSuccess, MsgSimulated)

	uc.mu.Lock()
	uc.state.Draft.Payload = model.EmptyDraftPayload
	uc.mu.Unlock()

	return uc.Refresh(ctx)
}

// Execute asks the store to execute action id. The store decides whether the
// transition is allowed.
func (uc *ActionUseCase) Execute(ctx context.Context, id int64) error {
	return uc.track(ctx, func(ctx context.Context) error {
		return uc.mutate(ctx, id, uc.backend.ExecuteAction, MsgExecuted, MsgExecuteFailed)
	})
}

func (uc *ActionUseCase) ExecuteAsync(ctx context.Context, id int64) {
	uc.trackAsync(ctx, func(ctx context.Context) error {
		return uc.mutate(ctx, id, uc.backend.ExecuteAction, MsgExecuted, MsgExecuteFailed)
	})
}

// Cancel asks the store to cancel action id
func (uc *ActionUseCase) Cancel(ctx context.Context, id int64) error {
	return uc.track(ctx, func(ctx context.Context) error {
		return uc.mutate(ctx, id, uc.backend.CancelAction, MsgCancelled, MsgCancelFailed)
	})
}

func (uc *ActionUseCase) CancelAsync(ctx context.Context, id int64) {
	uc.trackAsync(ctx, func(ctx context.Context) error {
		return uc.mutate(ctx, id, uc.backend.CancelAction, MsgCancelled, MsgCancelFailed)
	})
}

func (uc *ActionUseCase) mutate(ctx context.Context, id int64, call func(context.Context, int64) error, okMsg, failMsg string) error {
	err := recoverAsError(func() error {
		return call(ctx, id)
	})
	if err != nil {
		uc.notify(ctx, model.NotificationFailure, failureMessage(failMsg, err))
		return goerr.Wrap(err, failMsg, goerr.V(ActionIDKey, id))
	}

	uc.notify(ctx, model.NotificationSuccess, okMsg)
	return uc.Refresh(ctx)
}

// track counts fn as in flight while it runs
func (uc *ActionUseCase) track(ctx context.Context, fn func(ctx context.Context) error) error {
	uc.addInFlight(1)
	defer uc.addInFlight(-1)
	return fn(ctx)
}

func (uc *ActionUseCase) trackAsync(ctx context.Context, fn func(ctx context.Context) error) {
	uc.addInFlight(1)
	uc.dispatch(ctx, func(ctx context.Context) error {
		defer uc.addInFlight(-1)
		return fn(ctx)
	})
}

func (uc *ActionUseCase) addInFlight(delta int) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state.InFlight += delta
}

func (uc *ActionUseCase) notify(ctx context.Context, level model.NotificationLevel, msg string) {
	uc.notifier.Notify(ctx, model.NewNotification(level, msg))
}

// failureMessage picks the notification text for a failed operation. A
// rejection by the store uses failMsg; anything else is shown as an error.
func failureMessage(failMsg string, err error) string {
	switch {
	case backend.StatusCode(err) != 0:
		return failMsg
	case errors.Is(err, model.ErrInvalidPayload):
		return "Error: " + model.ErrInvalidPayload.Error()
	default:
		return "Error: " + backend.Message(err)
	}
}
