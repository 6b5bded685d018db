package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/controltower/pkg/domain/model"
)

// Sentinel errors for use case layer
var (
	ErrInvalidView         = goerr.New("unknown view")
	ErrInvalidStatusFilter = goerr.New("unknown action status filter")
	ErrPanic               = goerr.New("request handler panicked")
)

// Store rules enforced by the development stub
var (
	ErrAgentRunNotFound      = goerr.New("AgentRun not found")
	ErrActionNotFound        = goerr.New("Action not found")
	ErrActionAlreadyExecuted = goerr.New("Action already executed")
	ErrActionCancelled       = goerr.New("Action is cancelled")
	ErrCannotCancelExecuted  = goerr.New("Cannot cancel executed action")
	ErrAgentRunIDRequired    = goerr.New("agent_run_id must be an integer")
	ErrPayloadNotObject      = goerr.New("payload must be a JSON object")
)

// Context keys for error values
const (
	ViewKey     = "view"
	StatusKey   = "status"
	ActionIDKey = "action_id"
	PromptKey   = "prompt"
)

// recoverAsError turns a panic raised by fn into ErrPanic so the caller can
// still settle its state.
func recoverAsError(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.Wrap(ErrPanic, fmt.Sprint(r))
		}
	}()
	return fn()
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, *model.Notification) {}
