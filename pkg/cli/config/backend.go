package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/service/backend"
	"github.com/urfave/cli/v3"
)

const DefaultBackendURL = "http://localhost:8000"

// Backend configures the client of the agent-evaluation service
type Backend struct {
	url     string
	timeout time.Duration
}

func (x *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend-url",
			Usage:       "Base URL of the agent-evaluation service",
			Category:    "Backend",
			Value:       DefaultBackendURL,
			Destination: &x.url,
			Sources:     cli.EnvVars("CONTROLTOWER_BACKEND_URL"),
		},
		&cli.DurationFlag{
			Name:        "request-timeout",
			Usage:       "Timeout of each request to the service (0 disables it)",
			Category:    "Backend",
			Value:       backend.DefaultTimeout,
			Destination: &x.timeout,
			Sources:     cli.EnvVars("CONTROLTOWER_REQUEST_TIMEOUT"),
		},
	}
}

func (x Backend) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.url),
		slog.Duration("timeout", x.timeout),
	)
}

// Merge fills the values not given on the command line from the config file
func (x *Backend) Merge(c *cli.Command, file *AppConfig) {
	if file == nil {
		return
	}
	if !c.IsSet("backend-url") && file.BackendURL != "" {
		x.url = file.BackendURL
	}
	if !c.IsSet("request-timeout") && file.Timeout() > 0 {
		x.timeout = file.Timeout()
	}
}

// URL returns the configured service URL
func (x *Backend) URL() string {
	return x.url
}

// Configure creates the service client
func (x *Backend) Configure() (*backend.Client, error) {
	if err := validateBackendURL(x.url); err != nil {
		return nil, err
	}
	if x.timeout < 0 {
		return nil, goerr.Wrap(ErrInvalidTimeout, "must not be negative", goerr.V(TimeoutKey, x.timeout.String()))
	}

	client, err := backend.New(x.url, backend.WithTimeout(x.timeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create backend client")
	}
	return client, nil
}
