// Package notify implements the notification sink the orchestration
// core emits through.  Delivery means durably recording a notification
// row; failures are logged and reported with a boolean so callers can
// never be failed by a notification.
package notify

import (
	"context"
	"log"

	"github.com/renthub/home-rental/internal/model"
	"github.com/renthub/home-rental/internal/repository"
)

// Sink records notifications in the notifications table.  It
// implements lease.NotificationSink.
type Sink struct {
	repo *repository.NotificationRepo
}

// NewSink constructs a Sink over the given repository.
func NewSink(repo *repository.NotificationRepo) *Sink {
	if repo == nil {
		panic("nil repository passed to NewSink")
	}
	return &Sink{repo: repo}
}

// Notify persists one notification row.  It never returns an error:
// a failed insert is logged and reported as false, and the caller's
// state transition stands regardless.
func (s *Sink) Notify(ctx context.Context, userID uint64, title, body string, category model.NotificationCategory, relatedID uint64) bool {
	n := &model.Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Category:  category,
		RelatedID: relatedID,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		log.Printf("notify: insert failed (user=%d category=%s): %v", userID, category, err)
		return false
	}
	return true
}
