// Package memory keeps runs and actions in process memory for the
// development stub. Every value crossing the package boundary is a deep copy.
package memory

import (
	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
)

type Memory struct {
	agentRun *agentRunRepository
	action   *actionRepository
}

var _ interfaces.Repository = (*Memory)(nil)

// New creates an empty store. IDs of both runs and actions start at 1.
func New() *Memory {
	return &Memory{
		agentRun: newAgentRunRepository(),
		action:   newActionRepository(),
	}
}

func (m *Memory) AgentRun() interfaces.AgentRunRepository {
	return m.agentRun
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}
