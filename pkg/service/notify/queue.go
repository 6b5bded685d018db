package notify

import (
	"context"
	"sync"

	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/utils/logging"
)

// Queue holds notifications until the operator dismisses them. The browser
// dashboard renders the oldest pending one as a modal.
type Queue struct {
	mu      sync.Mutex
	pending []*model.Notification
}

var _ interfaces.Notifier = (*Queue)(nil)

func NewQueue() *Queue {
	return &Queue{}
}

func (x *Queue) Notify(ctx context.Context, n *model.Notification) {
	if n == nil {
		return
	}

	x.mu.Lock()
	x.pending = append(x.pending, n)
	x.mu.Unlock()

	logging.From(ctx).Info("notification queued",
		"id", n.ID,
		"level", n.Level,
		"message", n.Message,
	)
}

// Pending returns a copy of the undismissed notifications, oldest first
func (x *Queue) Pending() []*model.Notification {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]*model.Notification, len(x.pending))
	copy(out, x.pending)
	return out
}

// Dismiss removes the notification with id. It reports whether one was found.
func (x *Queue) Dismiss(id model.NotificationID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i, n := range x.pending {
		if n.ID == id {
			x.pending = append(x.pending[:i], x.pending[i+1:]...)
			return true
		}
	}
	return false
}
