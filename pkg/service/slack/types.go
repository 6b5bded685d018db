package slack

import (
	"context"

	"github.com/secmon-lab/controltower/pkg/domain/model"
)

// Service mirrors operator notifications into a Slack channel
type Service interface {
	// PostNotification posts n to the configured channel and returns the message timestamp
	PostNotification(ctx context.Context, n *model.Notification) (string, error)
}
