package evaluator

// Policy decisions
const (
	DecisionAllow         = "allow"
	DecisionNeedsApproval = "needs_approval"
	DecisionBlock         = "block"
)

// PolicyConfig switches the individual policy rules
type PolicyConfig struct {
	RequireApprovalForHighRisk          bool
	BlockDestructiveActions             bool
	RequireApprovalForSecuritySensitive bool
	RequireApprovalForSensitiveData     bool
}

// DefaultPolicyConfig enables every rule
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		RequireApprovalForHighRisk:          true,
		BlockDestructiveActions:             true,
		RequireApprovalForSecuritySensitive: true,
		RequireApprovalForSensitiveData:     true,
	}
}

// Policy is the decision for one run
type Policy struct {
	Decision  string
	Reasons   []string
	RiskFlags []string
	RiskLevel string
}

// EvaluatePolicy applies cfg to a prompt and its response. The first rule
// that fires decides; blocking takes precedence over approval.
func EvaluatePolicy(cfg PolicyConfig, prompt, response string) *Policy {
	flags := FindRiskFlags(prompt + " " + response)
	level := ClassifyRiskLevel(flags)
	p := &Policy{
		Decision:  DecisionAllow,
		Reasons:   []string{},
		RiskFlags: flags,
		RiskLevel: level,
	}

	if cfg.BlockDestructiveActions && contains(flags, FlagDestructiveActions) {
		p.Decision = DecisionBlock
		p.Reasons = append(p.Reasons, "Prompt/response appears to contain destructive actions, and policy is configured to block such requests.")
	}

	if p.Decision == DecisionAllow && cfg.RequireApprovalForSecuritySensitive && contains(flags, FlagSecuritySensitive) {
		p.Decision = DecisionNeedsApproval
		p.Reasons = append(p.Reasons, "Security-sensitive patterns detected (e.g., passwords, tokens). Policy requires human approval.")
	}

	if p.Decision == DecisionAllow && cfg.RequireApprovalForSensitiveData &&
		(contains(flags, FlagPrivacySensitive) || contains(flags, FlagFinancialSensitive)) {
		p.Decision = DecisionNeedsApproval
		p.Reasons = append(p.Reasons, "Access to personal or financial data detected. Policy requires human approval before proceeding.")
	}

	if p.Decision == DecisionAllow && cfg.RequireApprovalForHighRisk && level == RiskHigh {
		p.Decision = DecisionNeedsApproval
		p.Reasons = append(p.Reasons, "Overall risk level assessed as HIGH. Policy requires human approval.")
	}

	if p.Decision == DecisionAllow && len(p.Reasons) == 0 {
		p.Reasons = append(p.Reasons, "No policy violations detected. Request is allowed.")
	}

	return p
}
