package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// AgentRunRequest is the body of POST /agent/run
type AgentRunRequest struct {
	Prompt string `json:"prompt"`
}

// AgentRunResult is the evaluation of one prompt submission. Every field is
// optional: UnmarshalJSON decodes each field on its own and leaves a field
// empty when it is missing or has an unexpected type.
type AgentRunResult struct {
	Status         string
	Message        string
	Model          string
	PromptSent     string
	TrustScore     *float64
	RiskLevel      string
	RiskFlags      []string
	PolicyDecision string
	PolicyReasons  []string
	Response       string
	Explainability string
}

type agentRunResultJSON struct {
	Status         string   `json:"status,omitempty"`
	Message        string   `json:"message,omitempty"`
	Model          string   `json:"model,omitempty"`
	PromptSent     string   `json:"prompt_sent,omitempty"`
	TrustScore     *float64 `json:"trust_score,omitempty"`
	RiskLevel      string   `json:"risk_level,omitempty"`
	RiskFlags      []string `json:"risk_flags,omitempty"`
	PolicyDecision string   `json:"policy_decision,omitempty"`
	PolicyReasons  []string `json:"policy_reasons,omitempty"`
	Response       string   `json:"response,omitempty"`
	Explainability string   `json:"explainability,omitempty"`
}

func (r AgentRunResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(agentRunResultJSON(r))
}

func (r *AgentRunResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = AgentRunResult{
		Status:         lenientString(fields["status"]),
		Message:        lenientString(fields["message"]),
		Model:          lenientString(fields["model"]),
		PromptSent:     lenientString(fields["prompt_sent"]),
		TrustScore:     lenientFloat(fields["trust_score"]),
		RiskLevel:      lenientString(fields["risk_level"]),
		RiskFlags:      lenientStrings(fields["risk_flags"]),
		PolicyDecision: lenientString(fields["policy_decision"]),
		PolicyReasons:  lenientStrings(fields["policy_reasons"]),
		Response:       lenientString(fields["response"]),
		Explainability: lenientString(fields["explainability"]),
	}
	return nil
}

// TrustScoreText renders the trust score, or "" when the service sent none
func (r *AgentRunResult) TrustScoreText() string {
	if r == nil || r.TrustScore == nil {
		return ""
	}
	return strconv.FormatFloat(*r.TrustScore, 'f', -1, 64)
}

// RiskFlagsText renders the risk flags as a comma separated list, or "None"
func (r *AgentRunResult) RiskFlagsText() string {
	if r == nil || len(r.RiskFlags) == 0 {
		return "None"
	}
	return strings.Join(r.RiskFlags, ", ")
}

// AgentRunLog is one persisted run as returned by GET /logs/recent
type AgentRunLog struct {
	ID              int64    `json:"id"`
	CreatedAt       string   `json:"created_at"`
	Prompt          string   `json:"prompt"`
	Response        string   `json:"response"`
	Model           string   `json:"model"`
	TrustScore      *float64 `json:"trust_score"`
	RiskLevel       string   `json:"risk_level"`
	PolicyDecision  string   `json:"policy_decision"`
	PolicyRiskLevel string   `json:"policy_risk_level"`
}

// CreatedTime parses CreatedAt. The store emits ISO-8601 with or without a zone.
func (l *AgentRunLog) CreatedTime() (time.Time, bool) {
	return ParseTimestamp(l.CreatedAt)
}

// TrustScoreText renders the trust score without trailing zeros, or "" when
// the store has none
func (l *AgentRunLog) TrustScoreText() string {
	if l == nil || l.TrustScore == nil {
		return ""
	}
	return strconv.FormatFloat(*l.TrustScore, 'f', -1, 64)
}

// LogAnalytics is the run summary returned by GET /logs/analytics
type LogAnalytics struct {
	TotalRuns        int            `json:"total_runs"`
	ByRiskLevel      map[string]int `json:"by_risk_level"`
	ByPolicyDecision map[string]int `json:"by_policy_decision"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses the timestamp formats emitted by the store. Naive
// timestamps are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a store timestamp for display, falling back to the raw text
func FormatTimestamp(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func lenientFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

func lenientStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := lenientString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
