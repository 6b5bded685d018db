package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/utils/async"
	"github.com/secmon-lab/controltower/pkg/utils/errutil"
	"github.com/slack-go/slack"
)

const (
	// maxSectionTextBytes is Slack's limit for a section block text
	maxSectionTextBytes = 3000

	// DefaultTimeout bounds a single Slack API round trip
	DefaultTimeout = 10 * time.Second
)

type client struct {
	api       *slack.Client
	channelID string
	apiURL    string
	timeout   time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPIURL points the client at a different Slack API root
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// WithTimeout overrides DefaultTimeout for the underlying HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// New creates a Slack service posting to channelID with the provided bot token
func New(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	c := &client{channelID: channelID, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	apiOpts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: c.timeout}),
	}
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

func (c *client) PostNotification(ctx context.Context, n *model.Notification) (string, error) {
	text := fmt.Sprintf("%s %s", levelEmoji(n.Level), n.Message)
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(text, maxSectionTextBytes), false, false),
			nil, nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.PlainTextType, "controltower · "+n.CreatedAt.Format("2006-01-02 15:04:05 MST"), false, false),
		),
	}

	_, ts, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post Slack message", goerr.V("channel_id", c.channelID))
	}
	return ts, nil
}

// Notifier adapts a Service to interfaces.Notifier. Posting is best-effort:
// failures are logged and never reach the operator's view. By default the post
// runs on its own goroutine so Notify returns before Slack answers.
type Notifier struct {
	svc      Service
	dispatch async.Dispatcher
	timeout  time.Duration
}

var _ interfaces.Notifier = (*Notifier)(nil)

// NotifierOption is a functional option for Notifier
type NotifierOption func(*Notifier)

// WithDispatcher sets how posts are run. async.Inline makes Notify wait for the post.
func WithDispatcher(d async.Dispatcher) NotifierOption {
	return func(x *Notifier) {
		x.dispatch = d
	}
}

// WithPostTimeout bounds each post, including retries inside the Slack client
func WithPostTimeout(d time.Duration) NotifierOption {
	return func(x *Notifier) {
		x.timeout = d
	}
}

func NewNotifier(svc Service, opts ...NotifierOption) *Notifier {
	x := &Notifier{
		svc:      svc,
		dispatch: async.Dispatch,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Notifier) Notify(ctx context.Context, n *model.Notification) {
	x.dispatch(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, x.timeout)
		defer cancel()

		if _, err := x.svc.PostNotification(ctx, n); err != nil {
			_ = errutil.Handle(ctx, err, "failed to mirror notification to Slack")
		}
		return nil
	})
}

func levelEmoji(level model.NotificationLevel) string {
	if level == model.NotificationFailure {
		return ":x:"
	}
	return ":white_check_mark:"
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
