package interfaces

import (
	"context"

	"github.com/secmon-lab/controltower/pkg/domain/model"
)

// Notifier delivers an interruptive notification to the operator
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification)
}
