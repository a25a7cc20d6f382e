package store

import (
	"context"
	"sync"
	"time"

	"padelclub/internal/models"

	"github.com/google/uuid"
)

// NotificationLog keeps per-user notifications, newest first. Entries
// are never removed; only the read flag may change after creation.
type NotificationLog struct {
	mu     sync.RWMutex
	byUser map[string][]*models.Notification
}

func NewNotificationLog() *NotificationLog {
	return &NotificationLog{byUser: make(map[string][]*models.Notification)}
}

// Append prepends a new notification to the user's log.
func (l *NotificationLog) Append(ctx context.Context, email, message string) *models.Notification {
	n := &models.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.byUser[email] = append([]*models.Notification{n}, l.byUser[email]...)
	return n
}

// ListFor returns the user's notifications, most recent first.
func (l *NotificationLog) ListFor(ctx context.Context, email string) []*models.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*models.Notification(nil), l.byUser[email]...)
}

func (l *NotificationLog) MarkRead(ctx context.Context, email, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, n := range l.byUser[email] {
		if n.ID == id {
			read := *n
			read.Read = true
			l.byUser[email][i] = &read
			return nil
		}
	}
	return ErrNotificationNotFound
}
