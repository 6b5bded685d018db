package model

import (
	"bytes"
	"encoding/json"

	"github.com/secmon-lab/controltower/pkg/domain/types"
)

// Action is a proposed side-effecting operation attached to an agent run.
// Status transitions happen on the store; the dashboard only reads them back.
type Action struct {
	ID              int64              `json:"id"`
	AgentRunID      int64              `json:"agent_run_id"`
	Type            types.ActionType   `json:"type"`
	Payload         json.RawMessage    `json:"payload,omitempty"`
	Status          types.ActionStatus `json:"status"`
	CreatedAt       string             `json:"created_at"`
	ExecutedAt      string             `json:"executed_at,omitempty"`
	ExecutionResult json.RawMessage    `json:"execution_result,omitempty"`
}

const payloadPreviewLength = 50

// PayloadPreview returns the compact payload cut to a fixed number of
// characters for list views
func (a *Action) PayloadPreview() string {
	compact := compactJSON(a.Payload)
	n := 0
	for i := range compact {
		if n == payloadPreviewLength {
			compact = compact[:i]
			break
		}
		n++
	}
	return compact + "..."
}

// ExecutionResultText returns the compact execution result, or "" when absent
func (a *Action) ExecutionResultText() string {
	if len(a.ExecutionResult) == 0 || string(a.ExecutionResult) == "null" {
		return ""
	}
	return compactJSON(a.ExecutionResult)
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// ActionList is the snapshot returned by GET /actions/all. A body that is not
// a JSON array of actions decodes to an empty list instead of an error.
type ActionList []*Action

func (l *ActionList) UnmarshalJSON(data []byte) error {
	var actions []*Action
	if err := json.Unmarshal(data, &actions); err != nil || actions == nil {
		*l = ActionList{}
		return nil
	}

	out := make(ActionList, 0, len(actions))
	for _, a := range actions {
		if a != nil {
			out = append(out, a)
		}
	}
	*l = out
	return nil
}

// SimulateActionRequest is the body of POST /actions/simulate. AgentRunID is
// nil when the operator's input held no integer and is sent as JSON null.
type SimulateActionRequest struct {
	AgentRunID *int64           `json:"agent_run_id"`
	Type       types.ActionType `json:"type"`
	Payload    json.RawMessage  `json:"payload"`
}

// ActionDraft is the in-progress simulate form
type ActionDraft struct {
	AgentRunID string           `json:"agent_run_id"`
	Type       types.ActionType `json:"type"`
	Payload    string           `json:"payload"`
}

const (
	DefaultDraftPayload = `{"to": "admin@example.com", "subject": "Test"}`
	EmptyDraftPayload   = `{}`
)

// NewActionDraft returns the form in its initial state
func NewActionDraft() ActionDraft {
	return ActionDraft{
		Type:    types.ActionTypeEmailSuggestion,
		Payload: DefaultDraftPayload,
	}
}
