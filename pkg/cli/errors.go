package cli

import "github.com/m-mizutani/goerr/v2"

var (
	ErrActionIDRequired = goerr.New("a numeric action id is required")
)

const (
	CommandKey = "command"
)
