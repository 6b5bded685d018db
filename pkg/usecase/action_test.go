package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/service/backend"
	"github.com/secmon-lab/controltower/pkg/service/notify"
	"github.com/secmon-lab/controltower/pkg/service/slack"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/async"
)

func storeRejects(status int) error {
	return goerr.Wrap(&backend.StatusError{StatusCode: status, Body: `{"detail":"rejected"}`}, "request failed")
}

func sampleActions() model.ActionList {
	return model.ActionList{
		{ID: 1, AgentRunID: 3, Type: types.ActionTypeEmailSuggestion, Status: types.ActionStatusSimulated},
		{ID: 2, AgentRunID: 3, Type: types.ActionTypeDatabaseQuery, Status: types.ActionStatusPending},
	}
}

func lastNotification(t *testing.T, rec *notify.Recorder) *model.Notification {
	t.Helper()
	items := rec.Items()
	if len(items) == 0 {
		t.Fatal("no notification was delivered")
	}
	return items[len(items)-1]
}

func TestActionUseCase_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the list", func(t *testing.T) {
		b := newFakeBackend()
		b.listActions = func(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
			return sampleActions(), nil
		}
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Action.Refresh(ctx))
		s := uc.Action.State()
		gt.A(t, s.Actions).Length(2)
		gt.Number(t, s.InFlight).Equal(0)
	})

	t.Run("failure empties the list without notifying", func(t *testing.T) {
		b := newFakeBackend()
		b.listActions = func(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
			return sampleActions(), nil
		}
		uc, rec := newInlineUseCases(b)
		gt.NoError(t, uc.Action.Refresh(ctx))

		b.listActions = func(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
			return nil, storeRejects(http.StatusInternalServerError)
		}
		gt.NoError(t, uc.Action.Refresh(ctx))

		s := uc.Action.State()
		gt.B(t, s.Actions != nil).True()
		gt.A(t, s.Actions).Length(0)
		gt.A(t, rec.Items()).Length(0)
	})

	t.Run("nil list becomes empty", func(t *testing.T) {
		b := newFakeBackend()
		b.listActions = func(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
			return nil, nil
		}
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Action.Refresh(ctx))
		gt.B(t, uc.Action.State().Actions != nil).True()
	})

	t.Run("status filter is sent", func(t *testing.T) {
		b := newFakeBackend()
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Action.SetStatusFilter(types.ActionStatusPending))
		gt.NoError(t, uc.Action.Refresh(ctx))
		gt.NoError(t, uc.Action.SetStatusFilter(""))
		gt.NoError(t, uc.Action.Refresh(ctx))

		gt.A(t, b.filters).Length(2)
		gt.V(t, b.filters[0]).Equal(types.ActionStatusPending)
		gt.V(t, b.filters[1]).Equal(types.ActionStatus(""))
	})

	t.Run("unknown status filter is rejected", func(t *testing.T) {
		uc, _ := newInlineUseCases(newFakeBackend())
		err := uc.Action.SetStatusFilter("archived")
		gt.Error(t, err).Is(usecase.ErrInvalidStatusFilter)
	})

	t.Run("stale list is discarded and in-flight count settles", func(t *testing.T) {
		b := newFakeBackend()
		lists := []model.ActionList{sampleActions(), {}}
		b.listActions = func(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
			out := lists[0]
			lists = lists[1:]
			return out, nil
		}
		q := &queuedDispatcher{}
		uc := usecase.NewActionUseCase(b, nil, q.Dispatch, "")

		uc.RefreshAsync(ctx)
		uc.RefreshAsync(ctx)
		gt.Number(t, uc.State().InFlight).Equal(2)

		gt.NoError(t, q.Run(ctx, 1))
		gt.NoError(t, q.Run(ctx, 0))

		s := uc.State()
		gt.Number(t, s.InFlight).Equal(0)
		gt.A(t, s.Actions).Length(2)
	})
}

func TestActionUseCase_UpdateDraft(t *testing.T) {
	uc, _ := newInlineUseCases(newFakeBackend())

	t.Run("initial draft", func(t *testing.T) {
		d := uc.Action.State().Draft
		gt.S(t, d.AgentRunID).Equal("")
		gt.V(t, d.Type).Equal(types.ActionTypeEmailSuggestion)
		gt.S(t, d.Payload).Equal(model.DefaultDraftPayload)
	})

	t.Run("accepts an offered type", func(t *testing.T) {
		gt.NoError(t, uc.Action.UpdateDraft("7", types.ActionTypeFileOperation, `{"path":"/tmp/x"}`))
		d := uc.Action.State().Draft
		gt.S(t, d.AgentRunID).Equal("7")
		gt.V(t, d.Type).Equal(types.ActionTypeFileOperation)
	})

	t.Run("rejects a type outside the form", func(t *testing.T) {
		err := uc.Action.UpdateDraft("7", "shell_command", `{}`)
		gt.Error(t, err).Is(model.ErrInvalidActionType)
		gt.V(t, uc.Action.State().Draft.Type).Equal(types.ActionTypeFileOperation)
	})

	t.Run("configured default payload", func(t *testing.T) {
		custom := usecase.New(newFakeBackend(), usecase.WithDefaultPayload(`{"to":"ops@example.com"}`))
		gt.S(t, custom.Action.State().Draft.Payload).Equal(`{"to":"ops@example.com"}`)
	})
}

func TestActionUseCase_Simulate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid payload makes no request", func(t *testing.T) {
		b := newFakeBackend()
		uc, rec := newInlineUseCases(b)
		gt.NoError(t, uc.Action.UpdateDraft("3", types.ActionTypeEmailSuggestion, "{invalid"))

		err := uc.Action.Simulate(ctx)
		gt.Error(t, err).Is(model.ErrInvalidPayload)
		gt.Number(t, b.Calls("SimulateAction")).Equal(0)
		gt.Number(t, b.Calls("ListActions")).Equal(0)

		n := lastNotification(t, rec)
		gt.V(t, n.Level).Equal(model.NotificationFailure)
		gt.S(t, n.Message).Equal("Error: payload is not valid JSON")
		gt.S(t, uc.Action.State().Draft.Payload).Equal("{invalid")
	})

	t.Run("success posts the draft and refreshes once", func(t *testing.T) {
		b := newFakeBackend()
		uc, rec := newInlineUseCases(b)
		gt.NoError(t, uc.Action.UpdateDraft("3", types.ActionTypeEmailSuggestion, `{"to":"admin@example.com"}`))

		gt.NoError(t, uc.Action.Simulate(ctx))

		gt.Number(t, b.Calls("SimulateAction")).Equal(1)
		gt.Number(t, b.Calls("ListActions")).Equal(1)

		req := b.simulated[0]
		gt.V(t, req.AgentRunID).NotNil()
		gt.Number(t, *req.AgentRunID).Equal(3)
		gt.V(t, req.Type).Equal(types.ActionTypeEmailSuggestion)
		gt.S(t, string(req.Payload)).Equal(`{"to":"admin@example.com"}`)

		body, err := json.Marshal(req)
		gt.NoError(t, err).Required()
		gt.S(t, string(body)).Equal(`{"agent_run_id":3,"type":"email_suggestion","payload":{"to":"admin@example.com"}}`)

		n := lastNotification(t, rec)
		gt.V(t, n.Level).Equal(model.NotificationSuccess)
		gt.S(t, n.Message).Equal(usecase.MsgSimulated)

		d := uc.Action.State().Draft
		gt.S(t, d.Payload).Equal(model.EmptyDraftPayload)
		gt.S(t, d.AgentRunID).Equal("3")
		gt.V(t, d.Type).Equal(types.ActionTypeEmailSuggestion)
	})

	t.Run("non-numeric run id is sent as null", func(t *testing.T) {
		b := newFakeBackend()
		uc, _ := newInlineUseCases(b)
		gt.NoError(t, uc.Action.UpdateDraft("abc", types.ActionTypeNotification, `{}`))

		gt.NoError(t, uc.Action.Simulate(ctx))
		gt.V(t, b.simulated[0].AgentRunID).Nil()
	})

	t.Run("store rejection notifies and skips refresh", func(t *testing.T) {
		b := newFakeBackend()
		b.simulate = func(ctx context.Context, req *model.SimulateActionRequest) error {
			return storeRejects(http.StatusUnprocessableEntity)
		}
		uc, rec := newInlineUseCases(b)
		gt.NoError(t, uc.Action.UpdateDraft("", types.ActionTypeEmailSuggestion, `{}`))

		gt.Error(t, uc.Action.Simulate(ctx))
		gt.Number(t, b.Calls("ListActions")).Equal(0)

		n := lastNotification(t, rec)
		gt.V(t, n.Level).Equal(model.NotificationFailure)
		gt.S(t, n.Message).Equal(usecase.MsgSimulateFailed)
		gt.S(t, uc.Action.State().Draft.Payload).Equal(`{}`)
	})

	t.Run("transport failure is shown as an error", func(t *testing.T) {
		b := newFakeBackend()
		b.simulate = func(ctx context.Context, req *model.SimulateActionRequest) error {
			return goerr.Wrap(backend.ErrTransport, "connection refused")
		}
		uc, rec := newInlineUseCases(b)

		gt.Error(t, uc.Action.Simulate(ctx))
		gt.S(t, lastNotification(t, rec).Message).Equal("Error: failed to reach backend")
	})

	t.Run("async validation happens before dispatch", func(t *testing.T) {
		b := newFakeBackend()
		q := &queuedDispatcher{}
		rec := &notify.Recorder{}
		uc := usecase.NewActionUseCase(b, rec, q.Dispatch, "{nope")

		uc.SimulateAsync(ctx)
		gt.Number(t, q.Len()).Equal(0)
		gt.A(t, rec.Items()).Length(1)
	})
}

func TestActionUseCase_ExecuteCancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func(uc *usecase.ActionUseCase, id int64) error
		setFail func(b *fakeBackend, err error)
		okMsg   string
		failMsg string
		counter string
	}{
		{
			name:    "execute",
			call:    func(uc *usecase.ActionUseCase, id int64) error { return uc.Execute(ctx, id) },
			setFail: func(b *fakeBackend, err error) { b.execute = func(context.Context, int64) error { return err } },
			okMsg:   usecase.MsgExecuted,
			failMsg: usecase.MsgExecuteFailed,
			counter: "ExecuteAction",
		},
		{
			name:    "cancel",
			call:    func(uc *usecase.ActionUseCase, id int64) error { return uc.Cancel(ctx, id) },
			setFail: func(b *fakeBackend, err error) { b.cancel = func(context.Context, int64) error { return err } },
			okMsg:   usecase.MsgCancelled,
			failMsg: usecase.MsgCancelFailed,
			counter: "CancelAction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" success notifies and refreshes", func(t *testing.T) {
			b := newFakeBackend()
			uc, rec := newInlineUseCases(b)

			gt.NoError(t, tt.call(uc.Action, 1))
			gt.Number(t, b.Calls(tt.counter)).Equal(1)
			gt.Number(t, b.Calls("ListActions")).Equal(1)

			n := lastNotification(t, rec)
			gt.V(t, n.Level).Equal(model.NotificationSuccess)
			gt.S(t, n.Message).Equal(tt.okMsg)
			gt.Number(t, uc.Action.State().InFlight).Equal(0)
		})

		t.Run(tt.name+" rejection notifies only", func(t *testing.T) {
			b := newFakeBackend()
			tt.setFail(b, storeRejects(http.StatusBadRequest))
			uc, rec := newInlineUseCases(b)

			gt.Error(t, tt.call(uc.Action, 1))
			gt.Number(t, b.Calls("ListActions")).Equal(0)

			n := lastNotification(t, rec)
			gt.V(t, n.Level).Equal(model.NotificationFailure)
			gt.S(t, n.Message).Equal(tt.failMsg)
			gt.Number(t, uc.Action.State().InFlight).Equal(0)
		})
	}

	t.Run("async execute counts as in flight until it settles", func(t *testing.T) {
		b := newFakeBackend()
		q := &queuedDispatcher{}
		uc := usecase.NewActionUseCase(b, nil, q.Dispatch, "")

		uc.ExecuteAsync(ctx, 5)
		gt.Number(t, uc.State().InFlight).Equal(1)
		gt.Number(t, b.Calls("ExecuteAction")).Equal(0)

		gt.NoError(t, q.Run(ctx, 0))
		gt.Number(t, b.Calls("ExecuteAction")).Equal(1)
		gt.Number(t, uc.State().InFlight).Equal(0)
	})
}

func TestActionUseCase_StalledSlackMirror(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	svc, err := slack.New("xoxb-test", "C001", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	b := newFakeBackend()
	rec := &notify.Recorder{}
	uc := usecase.NewActionUseCase(b, notify.NewMulti(rec, slack.NewNotifier(svc)), async.Inline, "")

	done := make(chan error, 1)
	go func() { done <- uc.Execute(context.Background(), 1) }()

	select {
	case err := <-done:
		gt.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("execute waited on Slack")
	}

	gt.Number(t, b.Calls("ExecuteAction")).Equal(1)
	gt.Number(t, b.Calls("ListActions")).Equal(1)
	gt.Number(t, uc.State().InFlight).Equal(0)
	gt.S(t, lastNotification(t, rec).Message).Equal(usecase.MsgExecuted)
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "store rejection", err: storeRejects(http.StatusBadRequest), want: usecase.MsgCancelFailed},
		{name: "transport", err: goerr.Wrap(backend.ErrTransport, "reset"), want: "Error: failed to reach backend"},
		{name: "decode", err: goerr.Wrap(backend.ErrDecode, "eof"), want: "Error: failed to decode backend response"},
		{name: "invalid payload", err: goerr.Wrap(model.ErrInvalidPayload, "bad"), want: "Error: payload is not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.S(t, usecase.FailureMessage(usecase.MsgCancelFailed, tt.err)).Equal(tt.want)
		})
	}
}
