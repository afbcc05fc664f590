package lease

import (
	"context"
	"errors"
	"time"

	"github.com/renthub/home-rental/internal/model"
)

// UtilityOverrides carries optional owner-supplied utility rates for a
// generated agreement.  Nil pointers fall back to the defaults in the
// model package.
type UtilityOverrides struct {
	ElectricityRate *uint32
	WaterCharge     *uint32
	GarbageCharge   *uint32
	Rules           string
}

// AgreementLifecycle owns the agreement state machine: generation on
// booking acceptance, the tenant's sign/decline response and the
// owner's terminate/suspend updates.
type AgreementLifecycle struct{}

// Generate inserts the one agreement row for an accepted booking,
// copying financial terms from the booking snapshot.  It fails with
// ErrDuplicateAgreement when an agreement already exists for the
// booking, which keeps acceptance idempotent under retries.
func (AgreementLifecycle) Generate(ctx context.Context, tx Tx, b *model.Booking, ov *UtilityOverrides) (*model.Agreement, error) {
	existing, err := tx.AgreementByBooking(ctx, b.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateAgreement
	}
	a := &model.Agreement{
		BookingID:       b.ID,
		PropertyID:      b.PropertyID,
		TenantID:        b.TenantID,
		OwnerID:         b.OwnerID,
		RentCents:       b.RentCents,
		DepositCents:    b.DepositCents,
		ElectricityRate: model.DefaultElectricityRate,
		WaterCharge:     model.DefaultWaterCharge,
		GarbageCharge:   model.DefaultGarbageCharge,
		Status:          model.AgreementPending,
	}
	if ov != nil {
		if ov.ElectricityRate != nil {
			a.ElectricityRate = *ov.ElectricityRate
		}
		if ov.WaterCharge != nil {
			a.WaterCharge = *ov.WaterCharge
		}
		if ov.GarbageCharge != nil {
			a.GarbageCharge = *ov.GarbageCharge
		}
		a.Rules = ov.Rules
	}
	if err := tx.InsertAgreement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Respond applies the tenant's sign/decline decision to an agreement
// in status agreement_pending.  Signing activates the agreement,
// records the signature timestamp and advances the linked booking to
// payment_pending.  Declining terminates the agreement and cancels the
// booking.  The owner is notified either way, after commit.
func (AgreementLifecycle) Respond(ctx context.Context, tx Tx, a *model.Agreement, approve bool) (model.AgreementStatus, []note, error) {
	target := model.AgreementActive
	if !approve {
		target = model.AgreementTerminated
	}
	if a.Status != model.AgreementPending || !a.Status.CanTransition(target) {
		return "", nil, agreementTransitionErr(a.Status, target)
	}
	// Lock the linked booking so a concurrent deposit or decision on
	// the same booking serializes behind this response.
	b, err := tx.BookingForUpdate(ctx, a.BookingID)
	if err != nil {
		return "", nil, err
	}
	if approve {
		now := time.Now().UTC()
		if err := tx.UpdateAgreement(ctx, a.ID, AgreementUpdate{Status: &target, SignedAt: &now}); err != nil {
			return "", nil, err
		}
		bst := model.BookingPaymentPending
		if !b.Status.CanTransition(bst) {
			return "", nil, bookingTransitionErr(b.Status, bst)
		}
		if err := tx.UpdateBooking(ctx, b.ID, BookingUpdate{Status: &bst}); err != nil {
			return "", nil, err
		}
		n := note{
			userID:    a.OwnerID,
			title:     "Agreement signed",
			body:      "The tenant signed the lease agreement. Awaiting the security deposit.",
			category:  model.NotifAgreementSigned,
			relatedID: a.ID,
		}
		return target, []note{n}, nil
	}
	if err := tx.UpdateAgreement(ctx, a.ID, AgreementUpdate{Status: &target}); err != nil {
		return "", nil, err
	}
	bst := model.BookingCancelled
	if !b.Status.CanTransition(bst) {
		return "", nil, bookingTransitionErr(b.Status, bst)
	}
	if err := tx.UpdateBooking(ctx, b.ID, BookingUpdate{Status: &bst}); err != nil {
		return "", nil, err
	}
	n := note{
		userID:    a.OwnerID,
		title:     "Agreement declined",
		body:      "The tenant declined the lease agreement. The booking was cancelled.",
		category:  model.NotifAgreementDeclined,
		relatedID: a.ID,
	}
	return target, []note{n}, nil
}

// OwnerSetStatus lets the owner terminate or suspend an active
// agreement.  Termination cascades the linked booking to cancelled in
// the same transaction.  Any other target status, or a non-active
// current status, is an invalid transition.
func (AgreementLifecycle) OwnerSetStatus(ctx context.Context, tx Tx, a *model.Agreement, target model.AgreementStatus) (model.AgreementStatus, []note, error) {
	if target != model.AgreementTerminated && target != model.AgreementSuspended {
		return "", nil, agreementTransitionErr(a.Status, target)
	}
	if a.Status != model.AgreementActive || !a.Status.CanTransition(target) {
		return "", nil, agreementTransitionErr(a.Status, target)
	}
	if err := tx.UpdateAgreement(ctx, a.ID, AgreementUpdate{Status: &target}); err != nil {
		return "", nil, err
	}
	body := "The owner suspended your lease agreement."
	if target == model.AgreementTerminated {
		b, err := tx.BookingForUpdate(ctx, a.BookingID)
		if err != nil {
			return "", nil, err
		}
		bst := model.BookingCancelled
		if !b.Status.CanTransition(bst) {
			return "", nil, bookingTransitionErr(b.Status, bst)
		}
		if err := tx.UpdateBooking(ctx, b.ID, BookingUpdate{Status: &bst}); err != nil {
			return "", nil, err
		}
		body = "The owner terminated your lease agreement. The booking was cancelled."
	}
	n := note{
		userID:    a.TenantID,
		title:     "Agreement status changed",
		body:      body,
		category:  model.NotifAgreementStatus,
		relatedID: a.ID,
	}
	return target, []note{n}, nil
}
