package model

import "time"

// BookingStatus is the closed set of states a booking can be in.  All
// status comparisons and transitions go through CanTransition so that
// an unhandled combination fails loudly instead of silently no-oping.
type BookingStatus string

const (
	BookingPending          BookingStatus = "pending"           // awaiting owner decision
	BookingAccepted         BookingStatus = "accepted"          // owner accepted; transient, agreement generation follows in the same transaction
	BookingRejected         BookingStatus = "rejected"          // owner rejected the request
	BookingDurationPending  BookingStatus = "duration_pending"  // tenant proposed a rental duration
	BookingDurationApproved BookingStatus = "duration_approved" // owner approved the proposed duration
	BookingDurationRejected BookingStatus = "duration_rejected" // owner rejected the proposed duration
	BookingAgreementPending BookingStatus = "agreement_pending" // agreement generated, awaiting tenant signature
	BookingPaymentPending   BookingStatus = "payment_pending"   // agreement signed, awaiting security deposit
	BookingActive           BookingStatus = "active"            // deposit received, lease running
	BookingCompleted        BookingStatus = "completed"         // lease ran to completion
	BookingCancelled        BookingStatus = "cancelled"         // declined or terminated along the agreement path
)

// bookingTransitions is the exhaustive transition table for bookings.
// A status missing from the map is terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:          {BookingAccepted, BookingRejected},
	BookingAccepted:         {BookingAgreementPending, BookingDurationPending, BookingCancelled},
	BookingAgreementPending: {BookingDurationPending, BookingPaymentPending, BookingActive, BookingCancelled},
	BookingDurationPending:  {BookingDurationApproved, BookingDurationRejected, BookingPaymentPending, BookingCancelled},
	BookingDurationApproved: {BookingPaymentPending, BookingActive, BookingCancelled},
	BookingDurationRejected: {BookingPaymentPending, BookingActive, BookingCancelled},
	BookingPaymentPending:   {BookingActive, BookingCancelled},
	BookingActive:           {BookingCompleted, BookingCancelled},
}

// Valid reports whether s is a member of the booking status enum.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingRejected, BookingDurationPending,
		BookingDurationApproved, BookingDurationRejected, BookingAgreementPending,
		BookingPaymentPending, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CanTransition reports whether the booking state machine permits
// moving from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Booking records a tenant's request to rent a property and the
// negotiation state between tenant and owner.  Financial terms are
// copied from the property at creation time so later price changes
// never alter an existing booking.
//
// Fields:
//
//	ID                – primary key identifier.
//	PropertyID        – property being requested.
//	TenantID          – user requesting the rental.
//	OwnerID           – owner of the property (denormalized for authorization).
//	StartDate         – requested move-in date.
//	EndDate           – requested move-out date.
//	DurationYears     – proposed rental duration, years part (nullable).
//	DurationMonths    – proposed rental duration, months part (nullable).
//	Status            – state of the booking (see BookingStatus).
//	RejectReason      – owner-supplied reason when rejected (nullable).
//	DurationApproved  – owner's duration decision (nullable until decided).
//	RentCents         – monthly rent snapshot in cents.
//	DepositCents      – security deposit snapshot in cents.
//	RequestedAt       – when the tenant submitted the request.
//	DecidedAt         – when the owner accepted or rejected (nullable).
//	DurationDecidedAt – when the owner decided on the duration (nullable).
//	CreatedAt         – creation timestamp.
//	UpdatedAt         – last update timestamp.
type Booking struct {
	ID                uint64        // bookings.id
	PropertyID        uint64        // bookings.property_id
	TenantID          uint64        // bookings.tenant_id
	OwnerID           uint64        // bookings.owner_id
	StartDate         time.Time     // bookings.start_date
	EndDate           time.Time     // bookings.end_date
	DurationYears     *uint8        // bookings.duration_years (nullable)
	DurationMonths    *uint8        // bookings.duration_months (nullable)
	Status            BookingStatus // bookings.status
	RejectReason      *string       // bookings.reject_reason (nullable)
	DurationApproved  *bool         // bookings.duration_approved (nullable)
	RentCents         uint32        // bookings.rent_cents
	DepositCents      uint32        // bookings.deposit_cents
	RequestedAt       time.Time     // bookings.requested_at
	DecidedAt         *time.Time    // bookings.decided_at (nullable)
	DurationDecidedAt *time.Time    // bookings.duration_decided_at (nullable)
	CreatedAt         time.Time     // bookings.created_at
	UpdatedAt         time.Time     // bookings.updated_at
}
