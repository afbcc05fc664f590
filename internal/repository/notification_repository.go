package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/renthub/home-rental/internal/model"
)

// NotificationRepo persists and lists user notifications.  Rows are
// write-once except for the read flag, which only the recipient may
// set.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Insert writes a notification row and populates the generated ID.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (user_id, title, body, category, related_id)
               VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.UserID, n.Title, n.Body, string(n.Category), n.RelatedID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// NotificationDetail is the response shape for notification list
// endpoints.
type NotificationDetail struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	RelatedID uint64    `json:"related_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ListByUser returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]NotificationDetail, error) {
	const q = `SELECT id, title, body, category, related_id, is_read, created_at
               FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]NotificationDetail, 0)
	for rows.Next() {
		var d NotificationDetail
		if err := rows.Scan(&d.ID, &d.Title, &d.Body, &d.Category, &d.RelatedID, &d.IsRead, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// MarkRead sets the read flag on one notification.  It returns
// sql.ErrNoRows when the notification does not exist and ErrForbidden
// when it belongs to another user.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID uint64) error {
	var recipientID uint64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM notifications WHERE id = ?`, notificationID).
		Scan(&recipientID)
	if err != nil {
		return err
	}
	if recipientID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ?`, notificationID)
	return err
}
