// Package evaluator scores a prompt and its response with keyword rules and
// decides whether a run is allowed. It backs the development stub service;
// the real evaluation service is external.
package evaluator

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Risk flags
const (
	FlagSecuritySensitive  = "security_sensitive"
	FlagPrivacySensitive   = "privacy_sensitive"
	FlagFinancialSensitive = "financial_sensitive"
	FlagDestructiveActions = "destructive_actions"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var keywords = map[string][]string{
	FlagSecuritySensitive: {
		"password", "passcode", "login credentials", "admin credentials",
		"token", "access token", "secret key", "api key", "private key",
		"ssh key", "otp", "one-time password", "cvv",
	},
	FlagPrivacySensitive: {
		"personal data", "personal information", "pii", "customer data",
		"customer information", "email address", "email addresses",
		"phone number", "phone numbers", "mobile number", "home address",
		"address details", "date of birth", "dob", "aadhar", "aadhaar",
		"pan card", "id number", "identity number",
	},
	FlagFinancialSensitive: {
		"salary", "salaries", "payroll", "bank account", "bank accounts",
		"account number", "card number", "credit card", "debit card",
		"transaction history", "transactions", "iban", "ifsc",
	},
	FlagDestructiveActions: {
		"delete all", "delete everything", "wipe all data", "wipe the database",
		"drop table", "drop database", "truncate table", "shutdown server",
		"format disk",
	},
}

// FindRiskFlags returns the sorted flags whose keywords appear in text.
// Matching is case-insensitive substring matching.
func FindRiskFlags(text string) []string {
	lower := strings.ToLower(text)

	flags := []string{}
	for flag, words := range keywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				flags = append(flags, flag)
				break
			}
		}
	}
	sort.Strings(flags)
	return flags
}

// ClassifyRiskLevel maps flags to a risk level. Destructive operations or
// two or more flags are high.
func ClassifyRiskLevel(flags []string) string {
	switch {
	case len(flags) == 0:
		return RiskLow
	case len(flags) >= 2 || contains(flags, FlagDestructiveActions):
		return RiskHigh
	default:
		return RiskMedium
	}
}

// TrustScore starts at 1.0 and loses 0.2 per flag and 0.3 when the model
// call failed. It never drops below 0.1.
func TrustScore(flags []string, llmFailed bool) float64 {
	score := 1.0 - 0.2*float64(len(flags))
	if llmFailed {
		score -= 0.3
	}
	score = math.Max(score, 0.1)
	return math.Round(score*100) / 100
}

// Trust is the outcome of scoring one run
type Trust struct {
	Score       float64
	RiskLevel   string
	RiskFlags   []string
	Explanation string
}

// EvaluateTrust scores the prompt together with the response
func EvaluateTrust(prompt, response string, llmFailed bool) *Trust {
	flags := FindRiskFlags(prompt + " " + response)
	level := ClassifyRiskLevel(flags)

	explanation := "No risk keywords detected."
	if len(flags) > 0 {
		explanation = "Risk keywords detected: " + strings.Join(flags, ", ") + "."
	}
	if llmFailed {
		explanation += " The model call failed and a fallback response was used."
	}

	return &Trust{
		Score:       TrustScore(flags, llmFailed),
		RiskLevel:   level,
		RiskFlags:   flags,
		Explanation: explanation,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`),
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`),
}

// Scrub replaces identity numbers, phone numbers and email addresses with [REDACTED]
func Scrub(text string) string {
	for _, p := range sensitivePatterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
