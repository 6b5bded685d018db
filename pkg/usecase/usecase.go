package usecase

import (
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/utils/async"
)

// DefaultPrompt pre-fills the Agent Runner prompt
const DefaultPrompt = "Say hello in one short sentence."

type UseCases struct {
	backend        interfaces.Backend
	notifier       interfaces.Notifier
	dispatch       async.Dispatcher
	defaultPrompt  string
	defaultPayload string

	AgentRun  *AgentRunUseCase
	Log       *LogUseCase
	Action    *ActionUseCase
	Dashboard *DashboardUseCase
}

type Option func(*UseCases)

// WithNotifier sets where action notifications are delivered
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithDispatcher replaces async.Dispatch for the non-blocking operations
func WithDispatcher(d async.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatch = d
	}
}

func WithDefaultPrompt(prompt string) Option {
	return func(uc *UseCases) {
		uc.defaultPrompt = prompt
	}
}

// WithDefaultPayload sets the payload text the simulate form starts with
func WithDefaultPayload(payload string) Option {
	return func(uc *UseCases) {
		uc.defaultPayload = payload
	}
}

func New(backend interfaces.Backend, opts ...Option) *UseCases {
	uc := &UseCases{
		backend:        backend,
		dispatch:       async.Dispatch,
		defaultPrompt:  DefaultPrompt,
		defaultPayload: model.DefaultDraftPayload,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.notifier == nil {
		uc.notifier = nopNotifier{}
	}

	uc.AgentRun = NewAgentRunUseCase(backend, uc.dispatch, uc.defaultPrompt)
	uc.Log = NewLogUseCase(backend, uc.dispatch)
	uc.Action = NewActionUseCase(backend, uc.notifier, uc.dispatch, uc.defaultPayload)
	uc.Dashboard = NewDashboardUseCase(uc.AgentRun, uc.Log, uc.Action)

	return uc
}
