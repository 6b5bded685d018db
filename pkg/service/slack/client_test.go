package slack_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/service/slack"
	"github.com/secmon-lab/controltower/pkg/utils/async"
)

// newStalledServer returns a Slack API stand-in that accepts requests and never
// answers until the test ends
func newStalledServer(t *testing.T) (*httptest.Server, <-chan struct{}) {
	t.Helper()
	release := make(chan struct{})
	received := make(chan struct{}, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	return srv, received
}

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("", "C001")
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when channel is empty", func(t *testing.T) {
		_, err := slack.New("xoxb-test", "")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token and channel are provided", func(t *testing.T) {
		svc, err := slack.New("xoxb-test", "C001")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestPostNotification(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.S(t, r.URL.Path).Equal("/chat.postMessage")
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"channel":"C001","ts":"1700000000.000100"}`)
	}))
	defer srv.Close()

	svc, err := slack.New("xoxb-test", "C001", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	n := model.NewNotification(model.NotificationSuccess, "Action executed!")
	ts, err := svc.PostNotification(context.Background(), n)
	gt.NoError(t, err).Required()
	gt.S(t, ts).Equal("1700000000.000100")
	gt.S(t, form.Get("channel")).Equal("C001")
	gt.B(t, strings.Contains(form.Get("text"), "Action executed!")).True()
}

func TestNotifier_FailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":false,"error":"channel_not_found"}`)
	}))
	defer srv.Close()

	svc, err := slack.New("xoxb-test", "C404", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	slack.NewNotifier(svc, slack.WithDispatcher(async.Inline)).
		Notify(context.Background(), model.NewNotification(model.NotificationFailure, "Failed to execute action"))
}

func TestNotifier_StalledSlack(t *testing.T) {
	n := model.NewNotification(model.NotificationSuccess, "Action executed!")

	t.Run("default dispatch returns before Slack answers", func(t *testing.T) {
		srv, received := newStalledServer(t)
		svc, err := slack.New("xoxb-test", "C001", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		done := make(chan struct{})
		go func() {
			slack.NewNotifier(svc, slack.WithPostTimeout(time.Second)).Notify(context.Background(), n)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Notify blocked on Slack")
		}

		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatal("post never reached Slack")
		}
	})

	t.Run("inline post gives up after the post timeout", func(t *testing.T) {
		srv, _ := newStalledServer(t)
		svc, err := slack.New("xoxb-test", "C001", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		notifier := slack.NewNotifier(svc,
			slack.WithDispatcher(async.Inline),
			slack.WithPostTimeout(100*time.Millisecond),
		)

		start := time.Now()
		notifier.Notify(context.Background(), n)
		gt.B(t, time.Since(start) < 2*time.Second).True()
	})

	t.Run("client timeout bounds a post without a deadline", func(t *testing.T) {
		srv, _ := newStalledServer(t)
		svc, err := slack.New("xoxb-test", "C001",
			slack.WithAPIURL(srv.URL+"/"),
			slack.WithTimeout(100*time.Millisecond),
		)
		gt.NoError(t, err).Required()

		start := time.Now()
		_, err = svc.PostNotification(context.Background(), n)
		gt.Value(t, err).NotNil()
		gt.B(t, time.Since(start) < 2*time.Second).True()
	})
}

func TestTruncateToMaxBytes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "short string unchanged", input: "hello", max: 10, want: "hello"},
		{name: "ascii cut", input: "hello world", max: 5, want: "hello"},
		{name: "multibyte not split", input: "ああ", max: 4, want: "あ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.S(t, slack.TruncateToMaxBytes(tt.input, tt.max)).Equal(tt.want)
		})
	}
}
