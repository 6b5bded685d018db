package types

import "fmt"

// ActionType is the kind of side-effecting operation an action proposes
type ActionType string

const (
	ActionTypeEmailSuggestion ActionType = "email_suggestion"
	ActionTypeDatabaseQuery   ActionType = "database_query"
	ActionTypeAPICallExternal ActionType = "api_call_external"
	ActionTypeFileOperation   ActionType = "file_operation"
	ActionTypeNotification    ActionType = "notification"
)

// AllActionTypes returns the action types offered by the simulate form, in display order
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionTypeEmailSuggestion,
		ActionTypeDatabaseQuery,
		ActionTypeAPICallExternal,
		ActionTypeFileOperation,
		ActionTypeNotification,
	}
}

// IsValid checks if the action type is one the simulate form offers
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeEmailSuggestion,
		ActionTypeDatabaseQuery,
		ActionTypeAPICallExternal,
		ActionTypeFileOperation,
		ActionTypeNotification:
		return true
	default:
		return false
	}
}

// Label returns the human readable name shown in the simulate form
func (t ActionType) Label() string {
	switch t {
	case ActionTypeEmailSuggestion:
		return "Email Suggestion"
	case ActionTypeDatabaseQuery:
		return "Database Query"
	case ActionTypeAPICallExternal:
		return "External API Call"
	case ActionTypeFileOperation:
		return "File Operation"
	case ActionTypeNotification:
		return "Send Notification"
	default:
		return string(t)
	}
}

func (t ActionType) String() string {
	return string(t)
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action type: %s", s)
	}
	return t, nil
}
