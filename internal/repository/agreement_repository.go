package repository

import (
	"context"
	"database/sql"
	"time"
)

// AgreementRepo provides read access to lease agreements.  Lifecycle
// mutations go through the Store inside a transaction.
type AgreementRepo struct {
	db *sql.DB
}

// NewAgreementRepo returns a new AgreementRepo bound to the given database.
func NewAgreementRepo(db *sql.DB) *AgreementRepo { return &AgreementRepo{db: db} }

// AgreementDetail is the response shape for agreement detail
// endpoints.
type AgreementDetail struct {
	ID              uint64     `json:"id"`
	BookingID       uint64     `json:"booking_id"`
	PropertyID      uint64     `json:"property_id"`
	TenantID        uint64     `json:"tenant_id"`
	OwnerID         uint64     `json:"owner_id"`
	RentCents       uint32     `json:"rent_cents"`
	DepositCents    uint32     `json:"deposit_cents"`
	ElectricityRate uint32     `json:"electricity_rate"`
	WaterCharge     uint32     `json:"water_charge"`
	GarbageCharge   uint32     `json:"garbage_charge"`
	Rules           string     `json:"rules,omitempty"`
	Status          string     `json:"status"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// GetByBookingForUser returns the agreement generated for a booking
// when the caller is the agreement's tenant or owner.  It returns
// sql.ErrNoRows when no agreement exists and ErrForbidden when the
// caller is neither party.
func (r *AgreementRepo) GetByBookingForUser(ctx context.Context, bookingID, userID uint64) (*AgreementDetail, error) {
	const q = `SELECT id, booking_id, property_id, tenant_id, owner_id, rent_cents, deposit_cents,
                      electricity_rate, water_charge, garbage_charge, rules, status,
                      signed_at, start_date, created_at
               FROM agreements WHERE booking_id = ?`
	var d AgreementDetail
	var signedAt, startDate sql.NullTime
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&d.ID, &d.BookingID, &d.PropertyID, &d.TenantID, &d.OwnerID,
		&d.RentCents, &d.DepositCents, &d.ElectricityRate, &d.WaterCharge, &d.GarbageCharge,
		&d.Rules, &d.Status, &signedAt, &startDate, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.TenantID != userID && d.OwnerID != userID {
		return nil, ErrForbidden
	}
	if signedAt.Valid {
		t := signedAt.Time
		d.SignedAt = &t
	}
	if startDate.Valid {
		t := startDate.Time
		d.StartDate = &t
	}
	return &d, nil
}
