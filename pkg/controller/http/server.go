package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/secmon-lab/controltower/pkg/utils/errutil"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
	"github.com/secmon-lab/controltower/pkg/utils/safe"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatTime": model.FormatTimestamp,
}).ParseFS(templateFS, "templates/*.html"))

// NotificationQueue is where the dashboard reads pending notifications from
type NotificationQueue interface {
	Pending() []*model.Notification
	Dismiss(id model.NotificationID) bool
}

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	notifications NotificationQueue
	backendURL    string
}

type Options func(*Server)

// WithNotificationQueue shows pending notifications as a modal until dismissed
func WithNotificationQueue(q NotificationQueue) Options {
	return func(s *Server) {
		s.notifications = q
	}
}

// WithBackendURL sets the service address shown on the landing page
func WithBackendURL(url string) Options {
	return func(s *Server) {
		s.backendURL = url
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.landingHandler)
	r.Get("/api/state", s.stateHandler)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", s.dashboardHandler)
		r.Post("/agent/run", s.agentRunHandler)
		r.Post("/logs/refresh", s.logsRefreshHandler)
		r.Post("/actions/refresh", s.actionsRefreshHandler)
		r.Post("/actions/simulate", s.actionsSimulateHandler)
		r.Post("/actions/{id}/execute", s.actionExecuteHandler)
		r.Post("/actions/{id}/cancel", s.actionCancelHandler)
		r.Post("/notifications/{id}/dismiss", s.dismissHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger binds a logger carrying the request ID to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// stateResponse is the JSON form of everything the dashboard renders
type stateResponse struct {
	usecase.DashboardState
	Notifications []*model.Notification `json:"notifications"`
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		DashboardState: s.uc.Dashboard.Snapshot(),
		Notifications:  s.pendingNotifications(),
	}

	data, err := json.Marshal(resp)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal dashboard state"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}

func (s *Server) pendingNotifications() []*model.Notification {
	if s.notifications == nil {
		return []*model.Notification{}
	}
	return s.notifications.Pending()
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to render page", goerr.V("template", name)), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	safe.Write(r.Context(), w, buf.Bytes())
}
