package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/usecase"
)

func TestDashboardUseCase_Select(t *testing.T) {
	ctx := context.Background()

	t.Run("starts on the agent view", func(t *testing.T) {
		uc, _ := newInlineUseCases(newFakeBackend())
		gt.V(t, uc.Dashboard.ActiveView()).Equal(types.ViewAgent)
	})

	t.Run("unknown view is rejected", func(t *testing.T) {
		uc, _ := newInlineUseCases(newFakeBackend())
		err := uc.Dashboard.Select(ctx, "settings")
		gt.Error(t, err).Is(usecase.ErrInvalidView)
		gt.V(t, uc.Dashboard.ActiveView()).Equal(types.ViewAgent)
	})

	t.Run("logs load once on first activation", func(t *testing.T) {
		b := newFakeBackend()
		b.recentLogs = func(ctx context.Context) ([]*model.AgentRunLog, error) {
			return sampleLogs(1), nil
		}
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewLogs))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewAgent))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewLogs))

		gt.Number(t, b.Calls("RecentLogs")).Equal(1)
		gt.A(t, uc.Log.State().Logs).Length(1)
	})

	t.Run("reselecting the active view is not an activation", func(t *testing.T) {
		b := newFakeBackend()
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewActions))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewActions))
		gt.Number(t, b.Calls("ListActions")).Equal(1)

		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewLogs))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewLogs))
		gt.Number(t, b.Calls("RecentLogs")).Equal(1)
	})

	t.Run("actions refresh on every activation", func(t *testing.T) {
		b := newFakeBackend()
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewActions))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewAgent))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewActions))
		gt.Number(t, b.Calls("ListActions")).Equal(2)
	})

	t.Run("agent view fires nothing", func(t *testing.T) {
		b := newFakeBackend()
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewLogs))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewAgent))
		gt.Number(t, b.Calls("RunAgent")).Equal(0)
	})

	t.Run("switching keeps every view's state", func(t *testing.T) {
		b := newFakeBackend()
		uc, _ := newInlineUseCases(b)

		gt.NoError(t, uc.AgentRun.Submit(ctx, "ping"))
		gt.NoError(t, uc.Action.UpdateDraft("4", types.ActionTypeAPICallExternal, `{"url":"https://example.com"}`))

		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewActions))
		gt.NoError(t, uc.Dashboard.Select(ctx, types.ViewAgent))

		s := uc.Dashboard.Snapshot()
		gt.V(t, s.ActiveView).Equal(types.ViewAgent)
		gt.S(t, s.AgentRun.Result.PromptSent).Equal("ping")
		gt.S(t, s.Actions.Draft.AgentRunID).Equal("4")
	})
}

func TestDashboardUseCase_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	b.listActions = func(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
		return sampleActions(), nil
	}
	uc, _ := newInlineUseCases(b)
	gt.NoError(t, uc.Action.Refresh(ctx))

	s := uc.Dashboard.Snapshot()
	s.Actions.Actions[0] = nil
	gt.V(t, uc.Action.State().Actions[0]).NotNil()
}
