package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidPayload    = goerr.New("payload is not valid JSON")
	ErrInvalidActionType = goerr.New("action type is not offered by the simulate form")
)

// Context keys for error values
const (
	PayloadKey    = "payload"
	ActionTypeKey = "action_type"
	AgentRunIDKey = "agent_run_id"
)
