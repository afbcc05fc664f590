package model

import "time"

// AgreementStatus is the closed set of states a lease agreement can be
// in.  Agreements are created in AgreementPending and only ever move
// forward through the transition table below.
type AgreementStatus string

const (
	AgreementPending    AgreementStatus = "agreement_pending" // generated, awaiting tenant signature
	AgreementActive     AgreementStatus = "active"            // signed and (after deposit) running
	AgreementSuspended  AgreementStatus = "suspended"         // owner-suspended
	AgreementTerminated AgreementStatus = "terminated"        // declined by tenant or terminated by owner
)

// agreementTransitions is the exhaustive transition table for agreements.
var agreementTransitions = map[AgreementStatus][]AgreementStatus{
	AgreementPending: {AgreementActive, AgreementTerminated},
	AgreementActive:  {AgreementTerminated, AgreementSuspended},
}

// Valid reports whether s is a member of the agreement status enum.
func (s AgreementStatus) Valid() bool {
	switch s {
	case AgreementPending, AgreementActive, AgreementSuspended, AgreementTerminated:
		return true
	}
	return false
}

// CanTransition reports whether the agreement state machine permits
// moving from s to next.
func (s AgreementStatus) CanTransition(next AgreementStatus) bool {
	for _, t := range agreementTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Default utility rates applied when the owner supplies no overrides
// at agreement generation time.  Values are per-unit (electricity) or
// flat monthly charges in the billing currency's display value.
const (
	DefaultElectricityRate uint32 = 12
	DefaultWaterCharge     uint32 = 500
	DefaultGarbageCharge   uint32 = 200
)

// Agreement is the lease contract generated exactly once per accepted
// booking.  Financial terms are copied from the booking snapshot, so
// agreements are always consistent with the price the tenant saw.
//
// Fields:
//
//	ID              – primary key identifier.
//	BookingID       – the booking this agreement was generated for (1:1).
//	PropertyID      – property being leased.
//	TenantID        – tenant who must sign.
//	OwnerID         – owner of the property.
//	RentCents       – monthly base rent in cents.
//	DepositCents    – security deposit in cents.
//	ElectricityRate – per-unit electricity rate.
//	WaterCharge     – flat monthly water charge.
//	GarbageCharge   – flat monthly garbage charge.
//	Rules           – free-text house rules included in the contract.
//	Status          – state of the agreement (see AgreementStatus).
//	SignedAt        – tenant signature timestamp (nullable).
//	StartDate       – effective lease start, set at deposit activation (nullable).
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Agreement struct {
	ID              uint64          // agreements.id
	BookingID       uint64          // agreements.booking_id
	PropertyID      uint64          // agreements.property_id
	TenantID        uint64          // agreements.tenant_id
	OwnerID         uint64          // agreements.owner_id
	RentCents       uint32          // agreements.rent_cents
	DepositCents    uint32          // agreements.deposit_cents
	ElectricityRate uint32          // agreements.electricity_rate
	WaterCharge     uint32          // agreements.water_charge
	GarbageCharge   uint32          // agreements.garbage_charge
	Rules           string          // agreements.rules
	Status          AgreementStatus // agreements.status
	SignedAt        *time.Time      // agreements.signed_at (nullable)
	StartDate       *time.Time      // agreements.start_date (nullable)
	CreatedAt       time.Time       // agreements.created_at
	UpdatedAt       time.Time       // agreements.updated_at
}
