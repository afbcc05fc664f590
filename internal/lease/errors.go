// Package lease implements the booking/agreement/payment orchestration
// core: the state machines governing how a booking, its derived
// agreement and its payment ledger move together, the authorization
// rules gating each transition, and the notification side effects each
// transition emits exactly once after commit.
//
// These sentinel values allow higher layers such as handlers to
// distinguish between different failure scenarios without parsing
// error strings.  Handlers translate them into HTTP status codes.
package lease

import (
	"errors"
	"fmt"

	"github.com/renthub/home-rental/internal/model"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Entity absence is always reported before ownership mismatches so
// callers cannot probe for existence through 403 responses.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on an
// existing entity they do not own or with a role that does not permit
// the action.  Handlers should translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is the sentinel matched by TransitionError via
// errors.Is.  It signals that the entity exists and the caller is
// authorized, but the current status does not permit the requested
// transition.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrPropertyUnavailable is returned when a booking is requested on a
// property whose availability flag is false.
var ErrPropertyUnavailable = errors.New("property unavailable")

// ErrDuplicateAgreement is returned when agreement generation is
// attempted for a booking that already has one.
var ErrDuplicateAgreement = errors.New("agreement already exists for booking")

// ErrAlreadyPaid is returned when a deposit is recorded for a booking
// that already has a completed security deposit payment.
var ErrAlreadyPaid = errors.New("deposit already paid")

// ErrDuplicateReference is returned when a payment carries a provider
// reference that was already recorded.  Distinct from ErrAlreadyPaid:
// the booking may well owe the payment, but this particular provider
// transaction has been seen before.
var ErrDuplicateReference = errors.New("payment reference already recorded")

// ErrTransactionFailed wraps store-level failures that occurred mid
// transaction.  The transaction is always rolled back before this is
// surfaced, so no partial state is visible to readers.
var ErrTransactionFailed = errors.New("transaction failed")

// ErrStoreUnavailable is returned when the store cannot be reached or
// an operation exceeds its bounded timeout.  The facade retries such
// failures once with backoff before surfacing them.
var ErrStoreUnavailable = errors.New("store unavailable")

// TransitionError reports a state-machine violation with enough detail
// for diagnostics.  It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

// Is lets errors.Is(err, ErrInvalidTransition) succeed for any
// TransitionError regardless of its detail fields.
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// bookingTransitionErr builds a TransitionError for the bookings entity.
func bookingTransitionErr(from model.BookingStatus, to model.BookingStatus) error {
	return &TransitionError{Entity: "booking", From: string(from), To: string(to)}
}

// agreementTransitionErr builds a TransitionError for the agreements entity.
func agreementTransitionErr(from model.AgreementStatus, to model.AgreementStatus) error {
	return &TransitionError{Entity: "agreement", From: string(from), To: string(to)}
}
