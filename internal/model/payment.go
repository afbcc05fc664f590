package model

import "time"

// PaymentType distinguishes the ledger entry kinds.  The first
// completed security_deposit payment for a booking is the one that
// drives lease activation.
type PaymentType string

const (
	PaymentDeposit PaymentType = "security_deposit"
	PaymentRent    PaymentType = "rent"
	PaymentOther   PaymentType = "other"
)

// PaymentStatus reflects what the external payment provider reported.
// Completed rows are append-only: they are never mutated or deleted.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentPending   PaymentStatus = "pending"
)

// Payment is one row of the append-only payment ledger.
//
// Fields:
//
//	ID          – primary key identifier.
//	BookingID   – booking the payment belongs to.
//	TenantID    – paying tenant.
//	OwnerID     – receiving owner (denormalized).
//	PropertyID  – property the lease covers (denormalized).
//	AmountCents – amount in cents.
//	Type        – security_deposit, rent or other.
//	Method      – payment method label reported by the provider.
//	ExternalRef – opaque provider transaction reference, unique per payment.
//	Status      – completed, failed or pending.
//	MonthLabel  – billing month for recurring rent (e.g. "2026-09"), empty for deposits.
//	Notes       – free-text notes.
//	CreatedAt   – creation timestamp.
type Payment struct {
	ID          uint64        // payments.id
	BookingID   uint64        // payments.booking_id
	TenantID    uint64        // payments.tenant_id
	OwnerID     uint64        // payments.owner_id
	PropertyID  uint64        // payments.property_id
	AmountCents uint32        // payments.amount_cents
	Type        PaymentType   // payments.type
	Method      string        // payments.method
	ExternalRef string        // payments.external_ref
	Status      PaymentStatus // payments.status
	MonthLabel  string        // payments.month_label
	Notes       string        // payments.notes
	CreatedAt   time.Time     // payments.created_at
}
