package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/service/evaluator"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

const (
	stubModel        = "controltower-stub"
	stubRecentLimit  = 50
	stubActionsLimit = 100
)

// riskyActionTypes start out pending instead of simulated
var riskyActionTypes = map[types.ActionType]bool{
	"database_mutation":             true,
	"email_send":                    true,
	types.ActionTypeAPICallExternal: true,
	"file_delete":                   true,
}

// StubUseCase implements the external service's endpoints over an in-memory
// store so the dashboard can run without the real service.
type StubUseCase struct {
	repo   interfaces.Repository
	policy evaluator.PolicyConfig
	now    func() time.Time
}

type StubOption func(*StubUseCase)

func WithPolicyConfig(cfg evaluator.PolicyConfig) StubOption {
	return func(uc *StubUseCase) {
		uc.policy = cfg
	}
}

// WithClock replaces time.Now for execution timestamps
func WithClock(now func() time.Time) StubOption {
	return func(uc *StubUseCase) {
		uc.now = now
	}
}

func NewStubUseCase(repo interfaces.Repository, opts ...StubOption) *StubUseCase {
	uc := &StubUseCase{
		repo:   repo,
		policy: evaluator.DefaultPolicyConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RunAgent answers with a placeholder response for the scrubbed prompt, then
// scores it, decides the policy and records the run.
func (uc *StubUseCase) RunAgent(ctx context.Context, prompt string) (*model.AgentRunResult, error) {
	response := fmt.Sprintf("(Placeholder LLM response for safe prompt: %s)", evaluator.Scrub(prompt))

	trust := evaluator.EvaluateTrust(prompt, response, false)
	policy := evaluator.EvaluatePolicy(uc.policy, prompt, response)

	run, err := uc.repo.AgentRun().Create(ctx, &model.AgentRun{
		CreatedAt:       uc.now().UTC(),
		Prompt:          prompt,
		Response:        response,
		Model:           stubModel,
		TrustScore:      trust.Score,
		RiskLevel:       trust.RiskLevel,
		RiskFlags:       trust.RiskFlags,
		PolicyDecision:  policy.Decision,
		PolicyRiskLevel: policy.RiskLevel,
		PolicyReasons:   policy.Reasons,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save agent run")
	}

	logging.From(ctx).Info("agent run evaluated",
		"id", run.ID,
		"risk_level", run.RiskLevel,
		"policy_decision", run.PolicyDecision,
	)

	result := run.ToResult("ok", "Agent runner live!")
	result.Explainability = trust.Explanation
	return result, nil
}

func (uc *StubUseCase) RecentLogs(ctx context.Context) ([]*model.AgentRunLog, error) {
	runs, err := uc.repo.AgentRun().List(ctx, stubRecentLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agent runs")
	}

	logs := make([]*model.AgentRunLog, 0, len(runs))
	for _, r := range runs {
		logs = append(logs, r.ToLog())
	}
	return logs, nil
}

func (uc *StubUseCase) LogAnalytics(ctx context.Context) (*model.LogAnalytics, error) {
	runs, err := uc.repo.AgentRun().List(ctx, 0)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agent runs")
	}

	a := &model.LogAnalytics{
		TotalRuns:        len(runs),
		ByRiskLevel:      map[string]int{},
		ByPolicyDecision: map[string]int{},
	}
	for _, r := range runs {
		log := r.ToLog()
		a.ByRiskLevel[log.RiskLevel]++
		a.ByPolicyDecision[log.PolicyDecision]++
	}
	return a, nil
}

func (uc *StubUseCase) ListActions(ctx context.Context, status types.ActionStatus) ([]*model.Action, error) {
	actions, err := uc.repo.Action().List(ctx, status, stubActionsLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions")
	}
	return actions, nil
}

// SimulateAction records an action for an existing run. Risky types wait in
// pending; everything else is simulated right away.
func (uc *StubUseCase) SimulateAction(ctx context.Context, req *model.SimulateActionRequest) (*model.Action, error) {
	if req.AgentRunID == nil {
		return nil, goerr.Wrap(ErrAgentRunIDRequired, "cannot simulate action")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(req.Payload, &obj); err != nil || obj == nil {
		return nil, goerr.Wrap(ErrPayloadNotObject, "cannot simulate action")
	}

	if _, err := uc.repo.AgentRun().Get(ctx, *req.AgentRunID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAgentRunNotFound, "cannot simulate action", goerr.V(model.AgentRunIDKey, *req.AgentRunID))
		}
		return nil, goerr.Wrap(err, "failed to get agent run")
	}

	status := types.ActionStatusSimulated
	if riskyActionTypes[req.Type] {
		status = types.ActionStatusPending
	}

	created, err := uc.repo.Action().Create(ctx, &model.Action{
		AgentRunID: *req.AgentRunID,
		Type:       req.Type,
		Payload:    req.Payload,
		Status:     status,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save action")
	}
	return created, nil
}

// ExecuteAction marks the action executed with a mock result. Executed and
// cancelled actions are rejected.
func (uc *StubUseCase) ExecuteAction(ctx context.Context, id int64) (*model.Action, error) {
	action, err := uc.getAction(ctx, id)
	if err != nil {
		return nil, err
	}

	switch action.Status {
	case types.ActionStatusExecuted:
		return nil, goerr.Wrap(ErrActionAlreadyExecuted, "cannot execute action", goerr.V(ActionIDKey, id))
	case types.ActionStatusCancelled:
		return nil, goerr.Wrap(ErrActionCancelled, "cannot execute action", goerr.V(ActionIDKey, id))
	}

	result, err := json.Marshal(map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("Action %s simulated successfully", action.Type),
		"simulated": true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode execution result")
	}

	action.Status = types.ActionStatusExecuted
	action.ExecutedAt = uc.now().UTC().Format(model.StoreTimeLayout)
	action.ExecutionResult = result

	updated, err := uc.repo.Action().Update(ctx, action)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V(ActionIDKey, id))
	}
	return updated, nil
}

// CancelAction cancels any action that has not been executed
func (uc *StubUseCase) CancelAction(ctx context.Context, id int64) (*model.Action, error) {
	action, err := uc.getAction(ctx, id)
	if err != nil {
		return nil, err
	}

	if action.Status == types.ActionStatusExecuted {
		return nil, goerr.Wrap(ErrCannotCancelExecuted, "cannot cancel action", goerr.V(ActionIDKey, id))
	}

	action.Status = types.ActionStatusCancelled
	updated, err := uc.repo.Action().Update(ctx, action)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V(ActionIDKey, id))
	}
	return updated, nil
}

func (uc *StubUseCase) getAction(ctx context.Context, id int64) (*model.Action, error) {
	action, err := uc.repo.Action().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrActionNotFound, "action not found", goerr.V(ActionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, id))
	}
	return action, nil
}
