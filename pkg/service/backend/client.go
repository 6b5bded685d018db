package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
	"github.com/secmon-lab/controltower/pkg/utils/safe"
)

const (
	// DefaultTimeout bounds every request so a stuck call cannot hold a view in loading state
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4 << 10
)

// Client performs HTTP calls to the agent-evaluation service. It never retries.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

var _ interfaces.Backend = (*Client)(nil)

// Option is a functional option for client configuration
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the service at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidURL, err.Error(), goerr.V(BaseURLKey, baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.Wrap(ErrInvalidURL, "scheme must be http or https", goerr.V(BaseURLKey, baseURL))
	}
	if u.Host == "" {
		return nil, goerr.Wrap(ErrInvalidURL, "host is required", goerr.V(BaseURLKey, baseURL))
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends body (when non-nil) as JSON and decodes a 2xx response into out
// (when non-nil). Non-2xx responses become *StatusError; network faults wrap
// ErrTransport.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	values := []goerr.Option{
		goerr.V(MethodKey, method),
		goerr.V(PathKey, path),
		goerr.V(RequestIDKey, requestID),
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body", values...)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", values...)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := logging.From(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err.Error(),
		)
		return goerr.Wrap(ErrTransport, err.Error(), values...)
	}
	defer safe.Close(ctx, resp.Body)

	logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return goerr.Wrap(&StatusError{StatusCode: resp.StatusCode, Body: string(data)},
			"backend returned non-2xx status",
			append(values, goerr.V(StatusKey, resp.StatusCode))...)
	}

	if out == nil {
		safe.Drain(ctx, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return goerr.Wrap(ErrTransport, err.Error(), values...)
		}
		return goerr.Wrap(ErrDecode, err.Error(), values...)
	}
	return nil
}

func (c *Client) RunAgent(ctx context.Context, prompt string) (*model.AgentRunResult, error) {
	var result model.AgentRunResult
	if err := c.Do(ctx, http.MethodPost, "/agent/run", nil, &model.AgentRunRequest{Prompt: prompt}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RecentLogs(ctx context.Context) ([]*model.AgentRunLog, error) {
	var logs []*model.AgentRunLog
	if err := c.Do(ctx, http.MethodGet, "/logs/recent", nil, nil, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*model.AgentRunLog{}
	}
	return logs, nil
}

func (c *Client) LogAnalytics(ctx context.Context) (*model.LogAnalytics, error) {
	var analytics model.LogAnalytics
	if err := c.Do(ctx, http.MethodGet, "/logs/analytics", nil, nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

func (c *Client) ListActions(ctx context.Context, status types.ActionStatus) (model.ActionList, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status.String()}}
	}

	var actions model.ActionList
	if err := c.Do(ctx, http.MethodGet, "/actions/all", query, nil, &actions); err != nil {
		return nil, err
	}
	if actions == nil {
		actions = model.ActionList{}
	}
	return actions, nil
}

func (c *Client) SimulateAction(ctx context.Context, req *model.SimulateActionRequest) error {
	return c.Do(ctx, http.MethodPost, "/actions/simulate", nil, req, nil)
}

func (c *Client) ExecuteAction(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, actionPath(id, "execute"), nil, nil, nil)
}

func (c *Client) CancelAction(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, actionPath(id, "cancel"), nil, nil, nil)
}

func actionPath(id int64, op string) string {
	return "/actions/" + strconv.FormatInt(id, 10) + "/" + op
}
