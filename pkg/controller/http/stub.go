package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/errutil"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
	"github.com/secmon-lab/controltower/pkg/utils/safe"
)

// NewStubHandler serves the evaluation service API from uc
func NewStubHandler(uc *usecase.StubUseCase) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	h := &stubHandler{uc: uc}

	r.Get("/", h.root)
	r.Post("/agent/run", h.runAgent)
	r.Get("/logs/recent", h.recentLogs)
	r.Get("/logs/analytics", h.logAnalytics)
	r.Route("/actions", func(r chi.Router) {
		r.Get("/all", h.listActions)
		r.Post("/simulate", h.simulateAction)
		r.Post("/{id}/execute", h.executeAction)
		r.Post("/{id}/cancel", h.cancelAction)
	})

	return r
}

type stubHandler struct {
	uc *usecase.StubUseCase
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// writeStoreError maps store rule violations to the status codes the
// dashboard expects and reports everything else as a server error.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "Internal Server Error"

	for _, rule := range []struct {
		err    error
		status int
	}{
		{usecase.ErrAgentRunNotFound, http.StatusNotFound},
		{usecase.ErrActionNotFound, http.StatusNotFound},
		{usecase.ErrActionAlreadyExecuted, http.StatusBadRequest},
		{usecase.ErrActionCancelled, http.StatusBadRequest},
		{usecase.ErrCannotCancelExecuted, http.StatusBadRequest},
		{usecase.ErrAgentRunIDRequired, http.StatusUnprocessableEntity},
		{usecase.ErrPayloadNotObject, http.StatusUnprocessableEntity},
	} {
		if errors.Is(err, rule.err) {
			status = rule.status
			detail = rule.err.Error()
			break
		}
	}

	if status >= http.StatusInternalServerError {
		errutil.Handle(r.Context(), err, "stub request failed")
	} else {
		logging.From(r.Context()).Info("stub request rejected", "status", status, "detail", detail)
	}
	writeJSON(w, r, status, errorResponse{Detail: detail})
}

func (h *stubHandler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "AI Control Tower Backend Running!"})
}

func (h *stubHandler) runAgent(w http.ResponseWriter, r *http.Request) {
	var req model.AgentRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: "request body must be a JSON object"})
		return
	}

	result, err := h.uc.RunAgent(r.Context(), req.Prompt)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *stubHandler) recentLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.uc.RecentLogs(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, logs)
}

func (h *stubHandler) logAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.uc.LogAnalytics(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

func (h *stubHandler) listActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.uc.ListActions(r.Context(), types.ActionStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, actions)
}

func (h *stubHandler) simulateAction(w http.ResponseWriter, r *http.Request) {
	var req model.SimulateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid simulate request: " + err.Error()})
		return
	}

	action, err := h.uc.SimulateAction(r.Context(), &req)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, action)
}

func (h *stubHandler) executeAction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: "action id must be an integer"})
		return
	}

	action, err := h.uc.ExecuteAction(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, action)
}

func (h *stubHandler) cancelAction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: "action id must be an integer"})
		return
	}

	action, err := h.uc.CancelAction(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, action)
}
