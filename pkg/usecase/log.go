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

// LogState is a snapshot of the Logs view
type LogState struct {
	Logs    []*model.AgentRunLog `json:"logs"`
	Loading bool                 `json:"loading"`
	Error   string               `json:"error,omitempty"`

	Analytics        *model.LogAnalytics `json:"analytics,omitempty"`
	AnalyticsLoading bool                `json:"analytics_loading"`
	AnalyticsError   string              `json:"analytics_error,omitempty"`
}

// LogUseCase holds the recent-window snapshot of runs. Loads replace the
// list wholesale; a failed load keeps the previous list and records the error.
type LogUseCase struct {
	backend  interfaces.Backend
	dispatch async.Dispatcher

	mu           sync.Mutex
	state        LogState
	seq          uint64
	analyticsSeq uint64
}

func NewLogUseCase(backend interfaces.Backend, dispatch async.Dispatcher) *LogUseCase {
	if dispatch == nil {
		dispatch = async.Dispatch
	}
	return &LogUseCase{
		backend:  backend,
		dispatch: dispatch,
		state:    LogState{Logs: []*model.AgentRunLog{}},
	}
}

func (uc *LogUseCase) State() LogState {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s := uc.state
	s.Logs = append([]*model.AgentRunLog(nil), uc.state.Logs...)
	return s
}

// LoadRecent fetches the recent runs and waits for the result
func (uc *LogUseCase) LoadRecent(ctx context.Context) error {
	uc.mu.Lock()
	seq := uc.beginLocked()
	uc.mu.Unlock()

	return uc.loadRecent(ctx, seq)
}

// LoadRecentAsync marks the view as loading and fetches on the dispatcher
func (uc *LogUseCase) LoadRecentAsync(ctx context.Context) {
	uc.mu.Lock()
	seq := uc.beginLocked()
	uc.mu.Unlock()

	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.loadRecent(ctx, seq)
	})
}

// Activate applies the lazy-load rule for the Logs view: one load fires when
// nothing has been loaded yet and no load is in flight. It reports whether a
// load was dispatched.
func (uc *LogUseCase) Activate(ctx context.Context) bool {
	uc.mu.Lock()
	if len(uc.state.Logs) > 0 || uc.state.Loading {
		uc.mu.Unlock()
		return false
	}
	seq := uc.beginLocked()
	fetchAnalytics := uc.state.Analytics == nil && !uc.state.AnalyticsLoading
	var analyticsSeq uint64
	if fetchAnalytics {
		analyticsSeq = uc.beginAnalyticsLocked()
	}
	uc.mu.Unlock()

	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.loadRecent(ctx, seq)
	})
	if fetchAnalytics {
		uc.dispatch(ctx, func(ctx context.Context) error {
			return uc.loadAnalytics(ctx, analyticsSeq)
		})
	}
	return true
}

func (uc *LogUseCase) beginLocked() uint64 {
	uc.seq++
	uc.state.Loading = true
	uc.state.Error = ""
	return uc.seq
}

func (uc *LogUseCase) loadRecent(ctx context.Context, seq uint64) error {
	var logs []*model.AgentRunLog
	err := recoverAsError(func() error {
		var err error
		logs, err = uc.backend.RecentLogs(ctx)
		return err
	})

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if seq != uc.seq {
		logging.From(ctx).Debug("discarding stale log load", "seq", seq, "latest", uc.seq)
		return err
	}

	uc.state.Loading = false
	if err != nil {
		uc.state.Error = backend.Message(err)
		return goerr.Wrap(err, "failed to load recent logs")
	}
	if logs == nil {
		logs = []*model.AgentRunLog{}
	}
	uc.state.Logs = logs
	return nil
}

// LoadAnalytics fetches the run summary. It has its own error slot and never
// touches the log list.
func (uc *LogUseCase) LoadAnalytics(ctx context.Context) error {
	uc.mu.Lock()
	seq := uc.beginAnalyticsLocked()
	uc.mu.Unlock()

	return uc.loadAnalytics(ctx, seq)
}

func (uc *LogUseCase) LoadAnalyticsAsync(ctx context.Context) {
	uc.mu.Lock()
	seq := uc.beginAnalyticsLocked()
	uc.mu.Unlock()

	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.loadAnalytics(ctx, seq)
	})
}

func (uc *LogUseCase) beginAnalyticsLocked() uint64 {
	uc.analyticsSeq++
	uc.state.AnalyticsLoading = true
	uc.state.AnalyticsError = ""
	return uc.analyticsSeq
}

func (uc *LogUseCase) loadAnalytics(ctx context.Context, seq uint64) error {
	var analytics *model.LogAnalytics
	err := recoverAsError(func() error {
		var err error
		analytics, err = uc.backend.LogAnalytics(ctx)
		return err
	})

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if seq != uc.analyticsSeq {
		return err
	}

	uc.state.AnalyticsLoading = false
	if err != nil {
		uc.state.AnalyticsError = backend.Message(err)
		return goerr.Wrap(err, "failed to load log analytics")
	}
	uc.state.Analytics = analytics
	return nil
}
