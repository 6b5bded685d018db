package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrInvalidBackendURL = goerr.New("invalid backend URL")
	ErrInvalidTimeout    = goerr.New("invalid request timeout")
	ErrInvalidPayload    = goerr.New("default payload is not valid JSON")
	ErrInvalidLogLevel   = goerr.New("invalid log level")
	ErrInvalidLogFormat  = goerr.New("invalid log format")
	ErrMissingChannel    = goerr.New("slack channel is required when a bot token is set")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendURLKey = "backend_url"
	TimeoutKey    = "request_timeout"
	LogLevelKey   = "log_level"
	LogFormatKey  = "log_format"
)
