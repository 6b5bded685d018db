package types

import "fmt"

// ActionStatus represents the store-side status of an action. The store may
// emit values outside the known set; those are kept as-is and rendered neutrally.
type ActionStatus string

const (
	ActionStatusPending   ActionStatus = "pending"
	ActionStatusSimulated ActionStatus = "simulated"
	ActionStatusExecuted  ActionStatus = "executed"
	ActionStatusCancelled ActionStatus = "cancelled"
)

// AllActionStatuses returns all known action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusPending,
		ActionStatusSimulated,
		ActionStatusExecuted,
		ActionStatusCancelled,
	}
}

// IsValid checks if the action status is one of the known statuses
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusPending,
		ActionStatusSimulated,
		ActionStatusExecuted,
		ActionStatusCancelled:
		return true
	default:
		return false
	}
}

// CanExecute reports whether the execute control is offered for s
func (s ActionStatus) CanExecute() bool {
	return s == ActionStatusSimulated
}

// CanCancel reports whether the cancel control is offered for s
func (s ActionStatus) CanCancel() bool {
	return s == ActionStatusPending || s == ActionStatusSimulated
}

// IsTerminal reports whether no further transition is offered
func (s ActionStatus) IsTerminal() bool {
	return s == ActionStatusExecuted || s == ActionStatusCancelled
}

// Tone is the badge color class used by both the browser and terminal views.
func (s ActionStatus) Tone() string {
	switch s {
	case ActionStatusExecuted:
		return "green"
	case ActionStatusSimulated:
		return "blue"
	case ActionStatusPending:
		return "yellow"
	default:
		return "gray"
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into a known ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
