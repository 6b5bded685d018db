package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/errutil"
)

type landingPage struct {
	BackendURL string
	Refresh    bool
}

type dashboardPage struct {
	State        usecase.DashboardState
	Views        []types.View
	ActionTypes  []types.ActionType
	Statuses     []types.ActionStatus
	Notification *model.Notification
	Refresh      bool
}

func (s *Server) landingHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "landing.html", landingPage{BackendURL: s.backendURL})
}

// dashboardHandler renders the active view. A view query parameter selects
// the view first, which triggers that view's lazy load.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("view"); v != "" {
		if err := s.uc.Dashboard.Select(r.Context(), types.View(v)); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
	}

	page := dashboardPage{
		State:       s.uc.Dashboard.Snapshot(),
		Views:       types.AllViews(),
		ActionTypes: types.AllActionTypes(),
		Statuses:    types.AllActionStatuses(),
	}
	if pending := s.pendingNotifications(); len(pending) > 0 {
		page.Notification = pending[0]
	}
	page.Refresh = page.Notification == nil && isBusy(page.State)

	s.render(w, r, "dashboard.html", page)
}

// isBusy reports whether a request of the shown view is still in flight, in
// which case the page reloads itself until it settles.
func isBusy(st usecase.DashboardState) bool {
	switch st.ActiveView {
	case types.ViewAgent:
		return st.AgentRun.Loading
	case types.ViewLogs:
		return st.Logs.Loading || st.Logs.AnalyticsLoading
	case types.ViewActions:
		return st.Actions.InFlight > 0
	default:
		return false
	}
}

func redirectToView(w http.ResponseWriter, r *http.Request, view types.View) {
	http.Redirect(w, r, "/dashboard?view="+url.QueryEscape(view.String()), http.StatusSeeOther)
}

func (s *Server) agentRunHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to parse form"), http.StatusBadRequest)
		return
	}

	s.uc.AgentRun.SubmitAsync(r.Context(), r.PostForm.Get("prompt"))
	redirectToView(w, r, types.ViewAgent)
}

func (s *Server) logsRefreshHandler(w http.ResponseWriter, r *http.Request) {
	s.uc.Log.LoadRecentAsync(r.Context())
	s.uc.Log.LoadAnalyticsAsync(r.Context())
	redirectToView(w, r, types.ViewLogs)
}

func (s *Server) actionsRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to parse form"), http.StatusBadRequest)
		return
	}

	if r.PostForm.Has("status") {
		if err := s.uc.Action.SetStatusFilter(types.ActionStatus(r.PostForm.Get("status"))); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}
	}

	s.uc.Action.RefreshAsync(r.Context())
	redirectToView(w, r, types.ViewActions)
}

func (s *Server) actionsSimulateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to parse form"), http.StatusBadRequest)
		return
	}

	err := s.uc.Action.UpdateDraft(
		r.PostForm.Get("agent_run_id"),
		types.ActionType(r.PostForm.Get("type")),
		r.PostForm.Get("payload"),
	)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	s.uc.Action.SimulateAsync(r.Context())
	redirectToView(w, r, types.ViewActions)
}

func (s *Server) actionExecuteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := actionIDParam(w, r)
	if !ok {
		return
	}
	s.uc.Action.ExecuteAsync(r.Context(), id)
	redirectToView(w, r, types.ViewActions)
}

func (s *Server) actionCancelHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := actionIDParam(w, r)
	if !ok {
		return
	}
	s.uc.Action.CancelAsync(r.Context(), id)
	redirectToView(w, r, types.ViewActions)
}

func actionIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid action id", goerr.V(usecase.ActionIDKey, raw)), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) dismissHandler(w http.ResponseWriter, r *http.Request) {
	if s.notifications != nil {
		s.notifications.Dismiss(model.NotificationID(chi.URLParam(r, "id")))
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
