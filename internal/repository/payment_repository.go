package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PaymentRepo provides read access to the append-only payment ledger.
// Rows are only ever inserted by the Store inside activation or
// recurring-payment transactions; nothing here mutates them.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// PaymentDetail is the response shape for payment history endpoints.
type PaymentDetail struct {
	ID          uint64    `json:"id"`
	BookingID   uint64    `json:"booking_id"`
	AmountCents uint32    `json:"amount_cents"`
	Type        string    `json:"type"`
	Method      string    `json:"method,omitempty"`
	ExternalRef string    `json:"external_ref,omitempty"`
	Status      string    `json:"status"`
	MonthLabel  string    `json:"month_label,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListByBookingForUser returns the payment history of a booking when
// the caller is the booking's tenant or owner.  It returns
// sql.ErrNoRows when the booking does not exist and ErrForbidden when
// the caller is neither party.
func (r *PaymentRepo) ListByBookingForUser(ctx context.Context, bookingID, userID uint64) ([]PaymentDetail, error) {
	var tenantID, ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT tenant_id, owner_id FROM bookings WHERE id = ?`, bookingID).
		Scan(&tenantID, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	if tenantID != userID && ownerID != userID {
		return nil, ErrForbidden
	}
	const q = `SELECT id, booking_id, amount_cents, type, method, external_ref, status, month_label, notes, created_at
               FROM payments WHERE booking_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]PaymentDetail, 0)
	for rows.Next() {
		var d PaymentDetail
		if err := rows.Scan(
			&d.ID, &d.BookingID, &d.AmountCents, &d.Type, &d.Method,
			&d.ExternalRef, &d.Status, &d.MonthLabel, &d.Notes, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
