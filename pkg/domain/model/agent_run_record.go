package model

import "time"

// StoreTimeLayout is the naive ISO-8601 form the action and log stores emit
const StoreTimeLayout = "2006-01-02T15:04:05.000000"

// AgentRun is one evaluated run as kept by the development store
type AgentRun struct {
	ID              int64
	CreatedAt       time.Time
	Prompt          string
	Response        string
	Model           string
	TrustScore      float64
	RiskLevel       string
	RiskFlags       []string
	PolicyDecision  string
	PolicyRiskLevel string
	PolicyReasons   []string
}

// ToLog converts the run into its GET /logs/recent form. Empty labels are
// reported as "unknown".
func (r *AgentRun) ToLog() *AgentRunLog {
	policyRisk := r.PolicyRiskLevel
	if policyRisk == "" {
		policyRisk = r.RiskLevel
	}
	score := r.TrustScore
	return &AgentRunLog{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt.UTC().Format(StoreTimeLayout),
		Prompt:          r.Prompt,
		Response:        r.Response,
		Model:           r.Model,
		TrustScore:      &score,
		RiskLevel:       orUnknown(r.RiskLevel),
		PolicyDecision:  orUnknown(r.PolicyDecision),
		PolicyRiskLevel: orUnknown(policyRisk),
	}
}

// ToResult converts the run into its POST /agent/run response
func (r *AgentRun) ToResult(status, message string) *AgentRunResult {
	score := r.TrustScore
	return &AgentRunResult{
		Status:         status,
		Message:        message,
		Model:          r.Model,
		PromptSent:     r.Prompt,
		TrustScore:     &score,
		RiskLevel:      r.RiskLevel,
		RiskFlags:      append([]string(nil), r.RiskFlags...),
		PolicyDecision: r.PolicyDecision,
		PolicyReasons:  append([]string(nil), r.PolicyReasons...),
		Response:       r.Response,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
