package lease

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/renthub/home-rental/internal/model"
)

// note is a notification queued during a transaction and emitted by
// the facade only after the transaction commits, so a rolled-back
// transition never produces a message and a committed one produces
// each of its messages exactly once.
type note struct {
	userID    uint64
	title     string
	body      string
	category  model.NotificationCategory
	relatedID uint64
}

// storeRetryBackoff is the pause before the single retry of a
// transaction that failed with ErrStoreUnavailable.
const storeRetryBackoff = 200 * time.Millisecond

// Facade is the entry point every request handler calls into.  Each
// public operation runs the same sequence: authorize against the
// entity's ownership, re-read the entity inside the transaction under
// a row lock, apply the lifecycle transition, commit, and only then
// emit the transition's notifications.
type Facade struct {
	store      Store
	sink       NotificationSink
	bookings   BookingLifecycle
	agreements AgreementLifecycle
	ledger     PaymentLedger
}

// NewFacade constructs a Facade over the given store and notification
// sink.  Both dependencies must be non-nil.
func NewFacade(store Store, sink NotificationSink) *Facade {
	if store == nil || sink == nil {
		panic("nil dependency passed to NewFacade")
	}
	return &Facade{store: store, sink: sink}
}

// CreateBooking creates a pending booking for the principal on the
// given property.  It returns the new booking ID.
func (f *Facade) CreateBooking(ctx context.Context, p Principal, propertyID uint64, start, end time.Time) (uint64, error) {
	if err := Authorize(p, ActionCreateBooking, Ownership{TenantID: p.ID}); err != nil {
		return 0, err
	}
	var id uint64
	err := f.transact(ctx, func(tx Tx) error {
		b, err := f.bookings.Create(ctx, tx, propertyID, p.ID, start, end)
		if err != nil {
			return err
		}
		id = b.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// OwnerDecideBooking applies the owner's accept/reject decision to a
// pending booking and returns the resulting booking status.
func (f *Facade) OwnerDecideBooking(ctx context.Context, p Principal, bookingID uint64, accept bool, reason string, ov *UtilityOverrides) (model.BookingStatus, error) {
	var status model.BookingStatus
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := Authorize(p, ActionDecideBooking, Ownership{TenantID: b.TenantID, OwnerID: b.OwnerID}); err != nil {
			return err
		}
		status, notes, err = f.bookings.Decide(ctx, tx, f.agreements, b, accept, reason, ov)
		return err
	})
	if err != nil {
		return "", err
	}
	f.emit(ctx, notes)
	return status, nil
}

// ProposeDuration records the tenant's proposed rental duration on
// their own booking.
func (f *Facade) ProposeDuration(ctx context.Context, p Principal, bookingID uint64, years, months uint8) (model.BookingStatus, error) {
	var status model.BookingStatus
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := Authorize(p, ActionProposeDuration, Ownership{TenantID: b.TenantID, OwnerID: b.OwnerID}); err != nil {
			return err
		}
		status, notes, err = f.bookings.ProposeDuration(ctx, tx, b, years, months)
		return err
	})
	if err != nil {
		return "", err
	}
	f.emit(ctx, notes)
	return status, nil
}

// ApproveDuration records the owner's decision on a proposed duration.
func (f *Facade) ApproveDuration(ctx context.Context, p Principal, bookingID uint64, approved bool) (model.BookingStatus, error) {
	var status model.BookingStatus
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := Authorize(p, ActionApproveDuration, Ownership{TenantID: b.TenantID, OwnerID: b.OwnerID}); err != nil {
			return err
		}
		status, notes, err = f.bookings.ApproveDuration(ctx, tx, b, approved)
		return err
	})
	if err != nil {
		return "", err
	}
	f.emit(ctx, notes)
	return status, nil
}

// RespondToAgreement applies the tenant's sign/decline decision to an
// agreement awaiting signature.
func (f *Facade) RespondToAgreement(ctx context.Context, p Principal, agreementID uint64, approve bool) (model.AgreementStatus, error) {
	var status model.AgreementStatus
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		a, err := tx.AgreementForUpdate(ctx, agreementID)
		if err != nil {
			return err
		}
		if err := Authorize(p, ActionRespondAgreement, Ownership{TenantID: a.TenantID, OwnerID: a.OwnerID}); err != nil {
			return err
		}
		status, notes, err = f.agreements.Respond(ctx, tx, a, approve)
		return err
	})
	if err != nil {
		return "", err
	}
	f.emit(ctx, notes)
	return status, nil
}

// SetAgreementStatus lets the owner terminate or suspend an active
// agreement.
func (f *Facade) SetAgreementStatus(ctx context.Context, p Principal, agreementID uint64, target model.AgreementStatus) (model.AgreementStatus, error) {
	var status model.AgreementStatus
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		a, err := tx.AgreementForUpdate(ctx, agreementID)
		if err != nil {
			return err
		}
		if err := Authorize(p, ActionSetAgreementStatus, Ownership{TenantID: a.TenantID, OwnerID: a.OwnerID}); err != nil {
			return err
		}
		status, notes, err = f.agreements.OwnerSetStatus(ctx, tx, a, target)
		return err
	})
	if err != nil {
		return "", err
	}
	f.emit(ctx, notes)
	return status, nil
}

// PayDeposit records the first completed security deposit for the
// principal's booking and activates the lease atomically.  It returns
// the new payment ID.
func (f *Facade) PayDeposit(ctx context.Context, p Principal, bookingID uint64, amountCents uint32, externalRef, paymentNotes string) (uint64, error) {
	var paymentID uint64
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := Authorize(p, ActionPayDeposit, Ownership{TenantID: b.TenantID, OwnerID: b.OwnerID}); err != nil {
			return err
		}
		pay, ns, err := f.ledger.Deposit(ctx, tx, b, amountCents, externalRef, paymentNotes)
		if err != nil {
			return err
		}
		paymentID = pay.ID
		notes = ns
		return nil
	})
	if err != nil {
		return 0, err
	}
	f.emit(ctx, notes)
	return paymentID, nil
}

// RecordRecurringPayment appends a rent payment to an active booking's
// ledger.  The amount, method and provider reference come from the
// trusted payment provider callback, so no ownership check applies
// here.  The reference may be empty for manually recorded payments.
func (f *Facade) RecordRecurringPayment(ctx context.Context, bookingID uint64, amountCents uint32, method, monthLabel, externalRef string) (uint64, error) {
	var paymentID uint64
	var notes []note
	err := f.transact(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		pay, ns, err := f.ledger.Recurring(ctx, tx, b, amountCents, method, monthLabel, externalRef)
		if err != nil {
			return err
		}
		paymentID = pay.ID
		notes = ns
		return nil
	})
	if err != nil {
		return 0, err
	}
	f.emit(ctx, notes)
	return paymentID, nil
}

// transact runs fn in a store transaction.  A transient
// ErrStoreUnavailable is retried once after a short backoff; any other
// non-domain error is wrapped as ErrTransactionFailed.  The store has
// already rolled back by the time an error surfaces here.
func (f *Facade) transact(ctx context.Context, fn func(Tx) error) error {
	err := f.store.Transact(ctx, fn)
	if errors.Is(err, ErrStoreUnavailable) {
		select {
		case <-ctx.Done():
			return err
		case <-time.After(storeRetryBackoff):
		}
		err = f.store.Transact(ctx, fn)
	}
	if err != nil && !domainError(err) {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return err
}

// domainError reports whether err belongs to the typed outcome
// taxonomy and should pass through to the caller unchanged.
func domainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrForbidden, ErrInvalidTransition, ErrPropertyUnavailable,
		ErrDuplicateAgreement, ErrAlreadyPaid, ErrDuplicateReference,
		ErrStoreUnavailable, ErrTransactionFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// emit delivers queued notifications through the sink.  Delivery is
// best-effort: a failed delivery is logged and never surfaced to the
// caller, and the committed state transition stands regardless.
func (f *Facade) emit(ctx context.Context, notes []note) {
	for _, n := range notes {
		if !f.sink.Notify(ctx, n.userID, n.title, n.body, n.category, n.relatedID) {
			log.Printf("lease: notification delivery failed (user=%d category=%s related=%d)", n.userID, n.category, n.relatedID)
		}
	}
}
