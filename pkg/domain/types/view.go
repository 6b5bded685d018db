package types

import "fmt"

// View identifies one of the dashboard's mutually exclusive views
type View string

const (
	ViewAgent   View = "agent"
	ViewLogs    View = "logs"
	ViewActions View = "actions"
)

// AllViews returns the dashboard views in navigation order
func AllViews() []View {
	return []View{ViewAgent, ViewLogs, ViewActions}
}

func (v View) IsValid() bool {
	switch v {
	case ViewAgent, ViewLogs, ViewActions:
		return true
	default:
		return false
	}
}

// Label is the navigation label of the view
func (v View) Label() string {
	switch v {
	case ViewAgent:
		return "Agents"
	case ViewLogs:
		return "Logs"
	case ViewActions:
		return "Actions"
	default:
		return string(v)
	}
}

func (v View) String() string {
	return string(v)
}

// ParseView parses a string into a View
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid view: %s", s)
	}
	return v, nil
}
