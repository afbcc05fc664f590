package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/renthub/home-rental/internal/model"
)

// BookingLifecycle owns the booking state machine: creation, the
// owner's accept/reject decision, the tenant's duration proposal and
// the owner's duration decision.  All methods run inside a store
// transaction supplied by the facade.
type BookingLifecycle struct{}

// Create inserts a new booking in status pending.  It fails with
// ErrNotFound when the property does not exist and with
// ErrPropertyUnavailable when it is not accepting bookings.  Monthly
// rent and deposit are copied from the property as a snapshot so later
// price changes never alter this booking's financial terms.
func (BookingLifecycle) Create(ctx context.Context, tx Tx, propertyID, tenantID uint64, start, end time.Time) (*model.Booking, error) {
	prop, err := tx.PropertyByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsAvailable {
		return nil, ErrPropertyUnavailable
	}
	now := time.Now().UTC()
	b := &model.Booking{
		PropertyID:   prop.ID,
		TenantID:     tenantID,
		OwnerID:      prop.OwnerID,
		StartDate:    start,
		EndDate:      end,
		Status:       model.BookingPending,
		RentCents:    prop.RentCents,
		DepositCents: prop.DepositCents,
		RequestedAt:  now,
	}
	if err := tx.InsertBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Decide applies the owner's accept/reject decision to a booking in
// status pending.  Acceptance records the approval timestamp,
// generates the agreement in the same transaction and advances the
// booking to agreement_pending; rejection stores the reason.  The
// returned notes are emitted by the facade only after commit.
func (BookingLifecycle) Decide(ctx context.Context, tx Tx, agreements AgreementLifecycle, b *model.Booking, accept bool, reason string, ov *UtilityOverrides) (model.BookingStatus, []note, error) {
	if !accept {
		if !b.Status.CanTransition(model.BookingRejected) {
			return "", nil, bookingTransitionErr(b.Status, model.BookingRejected)
		}
		now := time.Now().UTC()
		st := model.BookingRejected
		upd := BookingUpdate{Status: &st, DecidedAt: &now}
		if reason != "" {
			upd.RejectReason = &reason
		}
		if err := tx.UpdateBooking(ctx, b.ID, upd); err != nil {
			return "", nil, err
		}
		body := "Your booking request was rejected by the owner."
		if reason != "" {
			body = fmt.Sprintf("Your booking request was rejected: %s", reason)
		}
		n := note{
			userID:    b.TenantID,
			title:     "Booking rejected",
			body:      body,
			category:  model.NotifBookingRejected,
			relatedID: b.ID,
		}
		return st, []note{n}, nil
	}
	// Acceptance passes through the transient accepted status on its
	// way to agreement_pending; both edges must be legal.
	if !b.Status.CanTransition(model.BookingAccepted) ||
		!model.BookingAccepted.CanTransition(model.BookingAgreementPending) {
		return "", nil, bookingTransitionErr(b.Status, model.BookingAccepted)
	}
	if _, err := agreements.Generate(ctx, tx, b, ov); err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	st := model.BookingAgreementPending
	if err := tx.UpdateBooking(ctx, b.ID, BookingUpdate{Status: &st, DecidedAt: &now}); err != nil {
		return "", nil, err
	}
	n := note{
		userID:    b.TenantID,
		title:     "Booking accepted",
		body:      "Your booking was accepted. A lease agreement is ready for your signature.",
		category:  model.NotifBookingAccepted,
		relatedID: b.ID,
	}
	return st, []note{n}, nil
}

// ProposeDuration records the tenant's proposed rental duration and
// advances the booking to duration_pending.  Proposals are only legal
// once the owner has accepted the booking; any other status yields an
// invalid-transition error and leaves the booking untouched.
func (BookingLifecycle) ProposeDuration(ctx context.Context, tx Tx, b *model.Booking, years, months uint8) (model.BookingStatus, []note, error) {
	if !b.Status.CanTransition(model.BookingDurationPending) {
		return "", nil, bookingTransitionErr(b.Status, model.BookingDurationPending)
	}
	st := model.BookingDurationPending
	upd := BookingUpdate{Status: &st, DurationYears: &years, DurationMonths: &months}
	if err := tx.UpdateBooking(ctx, b.ID, upd); err != nil {
		return "", nil, err
	}
	n := note{
		userID:    b.OwnerID,
		title:     "Rental duration proposed",
		body:      fmt.Sprintf("The tenant proposed a rental duration of %d year(s) and %d month(s).", years, months),
		category:  model.NotifDurationProposed,
		relatedID: b.ID,
	}
	return st, []note{n}, nil
}

// ApproveDuration records the owner's decision on a proposed duration.
// The booking must be in duration_pending.
func (BookingLifecycle) ApproveDuration(ctx context.Context, tx Tx, b *model.Booking, approved bool) (model.BookingStatus, []note, error) {
	st := model.BookingDurationApproved
	if !approved {
		st = model.BookingDurationRejected
	}
	if b.Status != model.BookingDurationPending || !b.Status.CanTransition(st) {
		return "", nil, bookingTransitionErr(b.Status, st)
	}
	now := time.Now().UTC()
	upd := BookingUpdate{Status: &st, DurationApproved: &approved, DurationDecidedAt: &now}
	if err := tx.UpdateBooking(ctx, b.ID, upd); err != nil {
		return "", nil, err
	}
	body := "The owner approved your proposed rental duration."
	if !approved {
		body = "The owner rejected your proposed rental duration."
	}
	n := note{
		userID:    b.TenantID,
		title:     "Duration decision",
		body:      body,
		category:  model.NotifDurationDecided,
		relatedID: b.ID,
	}
	return st, []note{n}, nil
}
