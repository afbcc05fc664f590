package repository

import (
	"context"
	"database/sql"
	"time"
)

// BookingRepo provides read access to bookings for listing and detail
// endpoints.  Lifecycle mutations go through the Store inside a
// transaction; this repository only serves queries.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingDetail carries a booking together with the property title for
// display to tenants and owners.
type BookingDetail struct {
	ID             uint64     `json:"id"`
	PropertyID     uint64     `json:"property_id"`
	PropertyTitle  string     `json:"property_title"`
	TenantID       uint64     `json:"tenant_id"`
	OwnerID        uint64     `json:"owner_id"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	DurationYears  *uint8     `json:"duration_years,omitempty"`
	DurationMonths *uint8     `json:"duration_months,omitempty"`
	Status         string     `json:"status"`
	RejectReason   *string    `json:"reject_reason,omitempty"`
	RentCents      uint32     `json:"rent_cents"`
	DepositCents   uint32     `json:"deposit_cents"`
	RequestedAt    time.Time  `json:"requested_at"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
}

const bookingDetailQuery = `SELECT b.id, b.property_id, p.title, b.tenant_id, b.owner_id,
       b.start_date, b.end_date, b.duration_years, b.duration_months, b.status,
       b.reject_reason, b.rent_cents, b.deposit_cents, b.requested_at, b.decided_at
       FROM bookings b JOIN properties p ON p.id = b.property_id`

func scanBookingDetail(rows *sql.Rows) (BookingDetail, error) {
	var d BookingDetail
	var (
		years, months sql.NullInt64
		reason        sql.NullString
		decidedAt     sql.NullTime
	)
	err := rows.Scan(
		&d.ID, &d.PropertyID, &d.PropertyTitle, &d.TenantID, &d.OwnerID,
		&d.StartDate, &d.EndDate, &years, &months, &d.Status,
		&reason, &d.RentCents, &d.DepositCents, &d.RequestedAt, &decidedAt,
	)
	if err != nil {
		return d, err
	}
	if years.Valid {
		y := uint8(years.Int64)
		d.DurationYears = &y
	}
	if months.Valid {
		m := uint8(months.Int64)
		d.DurationMonths = &m
	}
	if reason.Valid {
		r := reason.String
		d.RejectReason = &r
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		d.DecidedAt = &t
	}
	return d, nil
}

// ListByTenant returns all bookings created by the given tenant,
// newest first.
func (r *BookingRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]BookingDetail, error) {
	return r.list(ctx, bookingDetailQuery+` WHERE b.tenant_id = ? ORDER BY b.requested_at DESC`, tenantID)
}

// ListByOwner returns all bookings on properties owned by the given
// owner, newest first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]BookingDetail, error) {
	return r.list(ctx, bookingDetailQuery+` WHERE b.owner_id = ? ORDER BY b.requested_at DESC`, ownerID)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetByIDForUser returns a single booking when the caller is its
// tenant or the owner of its property.  It returns sql.ErrNoRows when
// the booking does not exist and ErrForbidden when it belongs to
// neither party.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingDetailQuery+` WHERE b.id = ?`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	d, err := scanBookingDetail(rows)
	if err != nil {
		return nil, err
	}
	if d.TenantID != userID && d.OwnerID != userID {
		return nil, ErrForbidden
	}
	return &d, nil
}
