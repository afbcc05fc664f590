package model

import "time"

// NotificationCategory labels what kind of lifecycle transition a
// notification reports.  Categories are stable strings so clients can
// route or filter on them.
type NotificationCategory string

const (
	NotifBookingAccepted   NotificationCategory = "booking_accepted"
	NotifBookingRejected   NotificationCategory = "booking_rejected"
	NotifDurationProposed  NotificationCategory = "duration_proposed"
	NotifDurationDecided   NotificationCategory = "duration_decided"
	NotifAgreementSigned   NotificationCategory = "agreement_signed"
	NotifAgreementDeclined NotificationCategory = "agreement_declined"
	NotifDepositReceived   NotificationCategory = "deposit_received"
	NotifRentReceived      NotificationCategory = "rent_received"
	NotifAgreementStatus   NotificationCategory = "agreement_status"
)

// Notification is a persisted message to a user about a lifecycle
// transition that affected one of their bookings or agreements.  Rows
// are write-once except for the read flag, which only the recipient
// may set.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – recipient of the notification.
//	Title     – short headline.
//	Body      – human-readable description.
//	Category  – transition category (see NotificationCategory).
//	RelatedID – ID of the booking/agreement/payment the message refers to.
//	IsRead    – whether the recipient has read the notification.
//	CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64               // notifications.id
	UserID    uint64               // notifications.user_id
	Title     string               // notifications.title
	Body      string               // notifications.body
	Category  NotificationCategory // notifications.category
	RelatedID uint64               // notifications.related_id
	IsRead    bool                 // notifications.is_read
	CreatedAt time.Time            // notifications.created_at
}
