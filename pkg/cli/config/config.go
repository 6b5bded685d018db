package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML file holding dashboard settings. Command line
// flags take precedence over every value here.
type AppConfig struct {
	BackendURL     string      `toml:"backend_url"`
	RequestTimeout string      `toml:"request_timeout"`
	DefaultPrompt  string      `toml:"default_prompt"`
	DefaultPayload string      `toml:"default_payload"`
	Slack          SlackConfig `toml:"slack"`
}

// SlackConfig is the [slack] table of the config file
type SlackConfig struct {
	Channel string `toml:"channel"`
}

// Timeout returns the parsed request timeout, or zero when unset
func (a *AppConfig) Timeout() time.Duration {
	if a.RequestTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(a.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.BackendURL != "" {
		if err := validateBackendURL(a.BackendURL); err != nil {
			return err
		}
	}

	if a.RequestTimeout != "" {
		d, err := time.ParseDuration(a.RequestTimeout)
		if err != nil {
			return goerr.Wrap(ErrInvalidTimeout, err.Error(), goerr.V(TimeoutKey, a.RequestTimeout))
		}
		if d <= 0 {
			return goerr.Wrap(ErrInvalidTimeout, "must be positive", goerr.V(TimeoutKey, a.RequestTimeout))
		}
	}

	if a.DefaultPayload != "" {
		if _, err := model.ParsePayload(a.DefaultPayload); err != nil {
			return goerr.Wrap(ErrInvalidPayload, err.Error())
		}
	}

	return nil
}

// UseCaseOptions returns the view defaults the file overrides
func (a *AppConfig) UseCaseOptions() []usecase.Option {
	var opts []usecase.Option
	if a.DefaultPrompt != "" {
		opts = append(opts, usecase.WithDefaultPrompt(a.DefaultPrompt))
	}
	if a.DefaultPayload != "" {
		opts = append(opts, usecase.WithDefaultPayload(a.DefaultPayload))
	}
	return opts
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return goerr.Wrap(ErrInvalidBackendURL, err.Error(), goerr.V(BackendURLKey, raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return goerr.Wrap(ErrInvalidBackendURL, "scheme must be http or https", goerr.V(BackendURLKey, raw))
	}
	if u.Host == "" {
		return goerr.Wrap(ErrInvalidBackendURL, "host is required", goerr.V(BackendURLKey, raw))
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, err.Error(), goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// File is the --config flag
type File struct {
	path string
}

func (x *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML config file",
			Destination: &x.path,
			Sources:     cli.EnvVars("CONTROLTOWER_CONFIG"),
		},
	}
}

// Load reads the config file. Without --config it returns an empty AppConfig.
func (x *File) Load() (*AppConfig, error) {
	if x.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(x.path)
}
