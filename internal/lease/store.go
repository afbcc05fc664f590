package lease

import (
	"context"
	"time"

	"github.com/renthub/home-rental/internal/model"
)

// Store is the transactional entity store the core runs against.  The
// SQL implementation lives in the repository package; tests supply an
// in-memory fake.  Transact runs fn atomically: if fn returns an
// error, every write made through the Tx is rolled back.
type Store interface {
	Transact(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of reads and conditional writes available inside one
// store transaction.  Reads that serialize concurrent transitions
// (ForUpdate variants) take a row lock on the target so two racing
// requests on the same booking are applied one after the other.
//
// All lookup methods return ErrNotFound when the row does not exist
// and ErrStoreUnavailable when the store cannot be reached in time.
type Tx interface {
	PropertyByID(ctx context.Context, id uint64) (*model.Property, error)
	SetPropertyAvailability(ctx context.Context, id uint64, available bool) error

	InsertBooking(ctx context.Context, b *model.Booking) error
	BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error)
	UpdateBooking(ctx context.Context, id uint64, upd BookingUpdate) error

	InsertAgreement(ctx context.Context, a *model.Agreement) error
	AgreementForUpdate(ctx context.Context, id uint64) (*model.Agreement, error)
	AgreementByBooking(ctx context.Context, bookingID uint64) (*model.Agreement, error)
	UpdateAgreement(ctx context.Context, id uint64, upd AgreementUpdate) error

	InsertPayment(ctx context.Context, p *model.Payment) error
	HasCompletedDeposit(ctx context.Context, bookingID uint64) (bool, error)
}

// BookingUpdate enumerates the booking fields the core may mutate.
// Nil pointers leave the column untouched.  There is deliberately no
// free-form column/value map: every mutable field is listed here.
type BookingUpdate struct {
	Status            *model.BookingStatus
	RejectReason      *string
	DurationYears     *uint8
	DurationMonths    *uint8
	DurationApproved  *bool
	DecidedAt         *time.Time
	DurationDecidedAt *time.Time
}

// AgreementUpdate enumerates the agreement fields the core may mutate.
type AgreementUpdate struct {
	Status    *model.AgreementStatus
	SignedAt  *time.Time
	StartDate *time.Time
}

// NotificationSink durably records a notification for a user.  It is
// best-effort: implementations never return an error, they report
// success with the boolean and log failures internally.  The facade
// only calls it after a transaction has committed.
type NotificationSink interface {
	Notify(ctx context.Context, userID uint64, title, body string, category model.NotificationCategory, relatedID uint64) bool
}
