package usecase_test

import (
	"context"
	"sync"

	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/service/notify"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/async"
)

// fakeBackend records every call and answers with the configured functions
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	runAgent     func(ctx context.Context, prompt string) (*model.AgentRunResult, error)
	recentLogs   func(ctx context.Context) ([]*model.AgentRunLog, error)
	logAnalytics func(ctx context.Context) (*model.LogAnalytics, error)
	listActions  func(ctx context.Context, status types.ActionStatus) (model.ActionList, error)
	simulate     func(ctx context.Context, req *model.SimulateActionRequest) error
	execute      func(ctx context.Context, id int64) error
	cancel       func(ctx context.Context, id int64) error

	simulated []*model.SimulateActionRequest
	filters   []types.ActionStatus
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) RunAgent(ctx context.Context, prompt string) (*model.AgentRunResult, error) {
	f.count("RunAgent")
	if f.runAgent != nil {
		return f.runAgent(ctx, prompt)
	}
	return &model.AgentRunResult{Status: "ok", PromptSent: prompt}, nil
}

func (f *fakeBackend) RecentLogs(ctx context.Context) ([]*model.AgentRunLog, error) {
	f.count("RecentLogs")
	if f.recentLogs != nil {
		return f.recentLogs(ctx)
	}
	return []*model.AgentRunLog{}, nil
}

func (f *fakeBackend) LogAnalytics(ctx context.Context) (*model.LogAnalytics, error) {
	f.count("LogAnalytics")
	if f.logAnalytics != nil {
		return f.logAnalytics(ctx)
	}
	return &model.LogAnalytics{}, nil
}

func (f *fakeBackend) ListActions(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
	f.count("ListActions")
	f.mu.Lock()
	f.filters = append(f.filters, status)
	f.mu.Unlock()
	if f.listActions != nil {
		return f.listActions(ctx, status)
	}
	return model.ActionList{}, nil
}

func (f *fakeBackend) SimulateAction(ctx context.Context, req *model.SimulateActionRequest) error {
	f.count("SimulateAction")
	f.mu.Lock()
	f.simulated = append(f.simulated, req)
	f.mu.Unlock()
	if f.simulate != nil {
		return f.simulate(ctx, req)
	}
	return nil
}

func (f *fakeBackend) ExecuteAction(ctx context.Context, id int64) error {
	f.count("ExecuteAction")
	if f.execute != nil {
		return f.execute(ctx, id)
	}
	return nil
}

func (f *fakeBackend) CancelAction(ctx context.Context, id int64) error {
	f.count("CancelAction")
	if f.cancel != nil {
		return f.cancel(ctx, id)
	}
	return nil
}

// queuedDispatcher holds dispatched handlers until the test runs them, so a
// test can observe the state between dispatch and completion and settle
// requests in any order.
type queuedDispatcher struct {
	mu       sync.Mutex
	handlers []func(ctx context.Context) error
}

func (q *queuedDispatcher) Dispatch(_ context.Context, handler func(ctx context.Context) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

func (q *queuedDispatcher) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.handlers)
}

// Run executes the i-th dispatched handler
func (q *queuedDispatcher) Run(ctx context.Context, i int) error {
	q.mu.Lock()
	h := q.handlers[i]
	q.mu.Unlock()
	return h(ctx)
}

func (q *queuedDispatcher) RunAll(ctx context.Context) {
	for i := 0; i < q.Len(); i++ {
		_ = q.Run(ctx, i)
	}
}

func newInlineUseCases(b *fakeBackend) (*usecase.UseCases, *notify.Recorder) {
	rec := &notify.Recorder{}
	return usecase.New(b,
		usecase.WithNotifier(rec),
		usecase.WithDispatcher(async.Inline),
	), rec
}
