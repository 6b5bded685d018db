package notify

import (
	"context"
	"sync"

	"github.com/secmon-lab/controltower/pkg/domain/interfaces"
	"github.com/secmon-lab/controltower/pkg/domain/model"
)

// Multi delivers each notification to every notifier in order
type Multi []interfaces.Notifier

var _ interfaces.Notifier = Multi(nil)

func NewMulti(notifiers ...interfaces.Notifier) Multi {
	var m Multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m Multi) Notify(ctx context.Context, n *model.Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}

// Recorder keeps every notification it receives. It backs the terminal
// commands, which print notifications after the operation completes.
type Recorder struct {
	mu    sync.Mutex
	items []*model.Notification
}

var _ interfaces.Notifier = (*Recorder)(nil)

func (x *Recorder) Notify(_ context.Context, n *model.Notification) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.items = append(x.items, n)
}

// Items returns the recorded notifications in delivery order
func (x *Recorder) Items() []*model.Notification {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]*model.Notification, len(x.items))
	copy(out, x.items)
	return out
}
