package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/renthub/home-rental/internal/model"
)

// PaymentLedger owns the append-only payment ledger and the atomic
// activation transaction that couples a completed deposit to booking,
// agreement and property state changes.
type PaymentLedger struct{}

// Deposit records the first completed security deposit for a booking
// and activates the lease.  Inside the caller's transaction it:
//
//  1. inserts the payment row as completed,
//  2. moves the booking to active,
//  3. flips the property's availability to false,
//  4. activates the linked agreement and sets its start date to today.
//
// All four writes commit together or none do.  The duplicate check
// runs against the locked booking inside the same transaction, so two
// racing deposits on one booking yield exactly one completed payment
// and one ErrAlreadyPaid.
func (PaymentLedger) Deposit(ctx context.Context, tx Tx, b *model.Booking, amountCents uint32, externalRef, notes string) (*model.Payment, []note, error) {
	paid, err := tx.HasCompletedDeposit(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	if paid {
		return nil, nil, ErrAlreadyPaid
	}
	if !b.Status.CanTransition(model.BookingActive) {
		return nil, nil, bookingTransitionErr(b.Status, model.BookingActive)
	}
	a, err := tx.AgreementByBooking(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	p := &model.Payment{
		BookingID:   b.ID,
		TenantID:    b.TenantID,
		OwnerID:     b.OwnerID,
		PropertyID:  b.PropertyID,
		AmountCents: amountCents,
		Type:        model.PaymentDeposit,
		Method:      "deposit",
		ExternalRef: externalRef,
		Status:      model.PaymentCompleted,
		Notes:       notes,
	}
	if err := tx.InsertPayment(ctx, p); err != nil {
		return nil, nil, err
	}
	bst := model.BookingActive
	if err := tx.UpdateBooking(ctx, b.ID, BookingUpdate{Status: &bst}); err != nil {
		return nil, nil, err
	}
	if err := tx.SetPropertyAvailability(ctx, b.PropertyID, false); err != nil {
		return nil, nil, err
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	upd := AgreementUpdate{StartDate: &today}
	switch a.Status {
	case model.AgreementActive:
		// Already activated at signing time; only the start date moves.
	case model.AgreementPending:
		ast := model.AgreementActive
		upd.Status = &ast
	default:
		return nil, nil, agreementTransitionErr(a.Status, model.AgreementActive)
	}
	if err := tx.UpdateAgreement(ctx, a.ID, upd); err != nil {
		return nil, nil, err
	}
	n := note{
		userID:    b.OwnerID,
		title:     "Security deposit received",
		body:      fmt.Sprintf("The tenant paid the security deposit (ref %s). The lease is now active.", externalRef),
		category:  model.NotifDepositReceived,
		relatedID: b.ID,
	}
	return p, []note{n}, nil
}

// Recurring appends a rent payment for an active booking.  It is a
// simple ledger append with no cascading state changes.  A reused
// provider reference surfaces as ErrDuplicateReference from the
// insert, never as ErrAlreadyPaid.
func (PaymentLedger) Recurring(ctx context.Context, tx Tx, b *model.Booking, amountCents uint32, method, monthLabel, externalRef string) (*model.Payment, []note, error) {
	if b.Status != model.BookingActive {
		return nil, nil, bookingTransitionErr(b.Status, model.BookingActive)
	}
	p := &model.Payment{
		BookingID:   b.ID,
		TenantID:    b.TenantID,
		OwnerID:     b.OwnerID,
		PropertyID:  b.PropertyID,
		AmountCents: amountCents,
		Type:        model.PaymentRent,
		Method:      method,
		ExternalRef: externalRef,
		Status:      model.PaymentCompleted,
		MonthLabel:  monthLabel,
	}
	if err := tx.InsertPayment(ctx, p); err != nil {
		return nil, nil, err
	}
	n := note{
		userID:    b.OwnerID,
		title:     "Rent payment received",
		body:      fmt.Sprintf("Rent for %s was recorded.", monthLabel),
		category:  model.NotifRentReceived,
		relatedID: b.ID,
	}
	return p, []note{n}, nil
}
