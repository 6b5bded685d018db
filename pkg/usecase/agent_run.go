package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/service/backend"
	"github.com/secmon-lab/controltower/pkg/utils/async"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

// AgentRunState is a snapshot of the Agent Runner view
type AgentRunState struct {
	Prompt  string                `json:"prompt"`
	Loading bool                  `json:"loading"`
	Result  *model.AgentRunResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// AgentRunUseCase submits prompts to the evaluation service and holds the
// latest result. Only the most recent submission may settle the state.
type AgentRunUseCase struct {
	backend  interfaces.Backend
	dispatch async.Dispatcher

	mu    sync.Mutex
	state AgentRunState
	seq   uint64
}

func NewAgentRunUseCase(backend interfaces.Backend, dispatch async.Dispatcher, defaultPrompt string) *AgentRunUseCase {
	if dispatch == nil {
		dispatch = async.Dispatch
	}
	return &AgentRunUseCase{
		backend:  backend,
		dispatch: dispatch,
		state:    AgentRunState{Prompt: defaultPrompt},
	}
}

func (uc *AgentRunUseCase) State() AgentRunState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state
}

// SetPrompt updates the prompt text without submitting it
func (uc *AgentRunUseCase) SetPrompt(prompt string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state.Prompt = prompt
}

// Submit sends prompt and waits for the evaluation. The returned error is
// also recorded in the state; an empty prompt is sent as is.
func (uc *AgentRunUseCase) Submit(ctx context.Context, prompt string) error {
	seq := uc.begin(prompt)
	return uc.run(ctx, seq, prompt)
}

// SubmitAsync marks the submission as loading and returns; the request runs
// on the dispatcher.
func (uc *AgentRunUseCase) SubmitAsync(ctx context.Context, prompt string) {
	seq := uc.begin(prompt)
	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.run(ctx, seq, prompt)
	})
}

func (uc *AgentRunUseCase) begin(prompt string) uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.seq++
	uc.state.Prompt = prompt
	uc.state.Loading = true
	uc.state.Result = nil
	uc.state.Error = ""
	return uc.seq
}

func (uc *AgentRunUseCase) run(ctx context.Context, seq uint64, prompt string) error {
	var result *model.AgentRunResult
	err := recoverAsError(func() error {
		var err error
		result, err = uc.backend.RunAgent(ctx, prompt)
		return err
	})
	if err == nil && result == nil {
		result = &model.AgentRunResult{}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if seq != uc.seq {
		logging.From(ctx).Debug("discarding stale agent run completion", "seq", seq, "latest", uc.seq)
		return err
	}

	uc.state.Loading = false
	if err != nil {
		uc.state.Error = backend.Message(err)
		logging.From(ctx).Warn("agent run failed", "error", err, "seq", seq)
		return goerr.Wrap(err, "failed to run agent", goerr.V(PromptKey, prompt))
	}
	uc.state.Result = result
	return nil
}
