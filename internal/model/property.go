package model

import "time"

// Property represents a rentable unit listed by an owner.  The
// availability flag is the single gate for new bookings: once a
// deposit activates a lease on the property, IsAvailable flips to
// false inside the same transaction and stays false until the
// agreement ends.
//
// Fields:
//
//	ID           – primary key identifier.
//	OwnerID      – user who listed the property.
//	Title        – short display title.
//	Address      – street address of the unit.
//	IsAvailable  – whether new bookings are accepted.
//	RentCents    – monthly rent in cents.
//	DepositCents – security deposit in cents.
//	CreatedAt    – timestamp when the record was created.
//	UpdatedAt    – timestamp when the record was last updated.
type Property struct {
	ID           uint64    // properties.id
	OwnerID      uint64    // properties.owner_id
	Title        string    // properties.title
	Address      string    // properties.address
	IsAvailable  bool      // properties.is_available
	RentCents    uint32    // properties.rent_cents
	DepositCents uint32    // properties.deposit_cents
	CreatedAt    time.Time // properties.created_at
	UpdatedAt    time.Time // properties.updated_at
}
