// Package queue defines message payloads exchanged over the message broker.
package queue

// LeaseActivatedEvent is published when a security deposit completes and a
// lease becomes active.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type LeaseActivatedEvent struct {
	BookingID    uint64 `json:"booking_id"`
	AgreementID  uint64 `json:"agreement_id"`
	PropertyID   uint64 `json:"property_id"`
	TenantID     uint64 `json:"tenant_id"`
	OwnerID      uint64 `json:"owner_id"`
	PaymentID    uint64 `json:"payment_id"`
	DepositCents uint32 `json:"deposit_cents"`
	ExternalRef  string `json:"external_ref"`
	ActivatedAt  string `json:"activated_at"`
}
