package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLevel tells the operator whether a consequential operation succeeded
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationFailure NotificationLevel = "failure"
)

// NotificationID identifies a notification until it is dismissed
type NotificationID string

func NewNotificationID() NotificationID {
	return NotificationID(uuid.NewString())
}

// Notification is an interruptive message raised by an action operation
type Notification struct {
	ID        NotificationID    `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewNotification(level NotificationLevel, message string) *Notification {
	return &Notification{
		ID:        NewNotificationID(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
