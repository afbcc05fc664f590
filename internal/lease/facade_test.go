package lease

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renthub/home-rental/internal/model"
)

const (
	tenantID = uint64(101)
	ownerID  = uint64(202)
)

var (
	tenant = Principal{ID: tenantID, Role: model.RoleTenant}
	owner  = Principal{ID: ownerID, Role: model.RoleOwner}
)

// testWorld wires a facade over the in-memory store with one available
// property seeded for the standard owner.
type testWorld struct {
	store      *memStore
	sink       *memSink
	facade     *Facade
	propertyID uint64
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	store := newMemStore()
	sink := &memSink{}
	propertyID := store.addProperty(model.Property{
		OwnerID:      ownerID,
		Title:        "Lakeside flat",
		Address:      "12 Shore Rd",
		IsAvailable:  true,
		RentCents:    90_000,
		DepositCents: 180_000,
	})
	return &testWorld{
		store:      store,
		sink:       sink,
		facade:     NewFacade(store, sink),
		propertyID: propertyID,
	}
}

func (w *testWorld) createBooking(t *testing.T) uint64 {
	t.Helper()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	id, err := w.facade.CreateBooking(context.Background(), tenant, w.propertyID, start, start.AddDate(1, 0, 0))
	require.NoError(t, err)
	return id
}

// acceptBooking drives a fresh booking through the owner's acceptance
// and returns the booking and generated agreement IDs.
func (w *testWorld) acceptBooking(t *testing.T, ov *UtilityOverrides) (bookingID, agreementID uint64) {
	t.Helper()
	bookingID = w.createBooking(t)
	_, err := w.facade.OwnerDecideBooking(context.Background(), owner, bookingID, true, "", ov)
	require.NoError(t, err)
	a, ok := w.store.agreementForBooking(bookingID)
	require.True(t, ok, "acceptance must generate an agreement")
	return bookingID, a.ID
}

// signAgreement drives an accepted booking to payment_pending.
func (w *testWorld) signAgreement(t *testing.T, agreementID uint64) {
	t.Helper()
	_, err := w.facade.RespondToAgreement(context.Background(), tenant, agreementID, true)
	require.NoError(t, err)
}

func TestCreateBooking(t *testing.T) {
	w := newTestWorld(t)

	id := w.createBooking(t)
	b := w.store.booking(id)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, tenantID, b.TenantID)
	assert.Equal(t, ownerID, b.OwnerID)
	assert.Equal(t, uint32(90_000), b.RentCents, "rent must be snapshot from the property")
	assert.Equal(t, uint32(180_000), b.DepositCents)
}

func TestCreateBooking_UnknownProperty(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.facade.CreateBooking(context.Background(), tenant, 9999, time.Now(), time.Now().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_UnavailableProperty(t *testing.T) {
	w := newTestWorld(t)
	unavailable := w.store.addProperty(model.Property{OwnerID: ownerID, IsAvailable: false, RentCents: 50_000})

	_, err := w.facade.CreateBooking(context.Background(), tenant, unavailable, time.Now(), time.Now().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrPropertyUnavailable)
}

func TestCreateBooking_OwnerRoleForbidden(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.facade.CreateBooking(context.Background(), owner, w.propertyID, time.Now(), time.Now().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOwnerDecideBooking_Reject(t *testing.T) {
	w := newTestWorld(t)
	id := w.createBooking(t)

	status, err := w.facade.OwnerDecideBooking(context.Background(), owner, id, false, "renovation planned", nil)
	require.NoError(t, err)
	assert.Equal(t, model.BookingRejected, status)

	b := w.store.booking(id)
	require.NotNil(t, b.RejectReason)
	assert.Equal(t, "renovation planned", *b.RejectReason)
	assert.NotNil(t, b.DecidedAt)

	_, ok := w.store.agreementForBooking(id)
	assert.False(t, ok, "rejection must not generate an agreement")

	notes := w.sink.delivered()
	require.Len(t, notes, 1)
	assert.Equal(t, tenantID, notes[0].userID)
	assert.Equal(t, model.NotifBookingRejected, notes[0].category)
}

func TestOwnerDecideBooking_Accept(t *testing.T) {
	w := newTestWorld(t)
	rate := uint32(15)
	id, agreementID := w.acceptBooking(t, &UtilityOverrides{ElectricityRate: &rate, Rules: "no pets"})

	b := w.store.booking(id)
	assert.Equal(t, model.BookingAgreementPending, b.Status)
	assert.NotNil(t, b.DecidedAt)

	a := w.store.agreement(agreementID)
	assert.Equal(t, model.AgreementPending, a.Status)
	assert.Equal(t, uint32(15), a.ElectricityRate)
	assert.Equal(t, uint32(model.DefaultWaterCharge), a.WaterCharge)
	assert.Equal(t, uint32(model.DefaultGarbageCharge), a.GarbageCharge)
	assert.Equal(t, "no pets", a.Rules)
	assert.Equal(t, b.RentCents, a.RentCents)

	notes := w.sink.delivered()
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotifBookingAccepted, notes[0].category)
}

func TestOwnerDecideBooking_WrongOwner(t *testing.T) {
	w := newTestWorld(t)
	id := w.createBooking(t)

	stranger := Principal{ID: 777, Role: model.RoleOwner}
	_, err := w.facade.OwnerDecideBooking(context.Background(), stranger, id, true, "", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, model.BookingPending, w.store.booking(id).Status)
}

func TestOwnerDecideBooking_UnknownBooking(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.facade.OwnerDecideBooking(context.Background(), owner, 4242, true, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOwnerDecideBooking_Twice(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.acceptBooking(t, nil)

	_, err := w.facade.OwnerDecideBooking(context.Background(), owner, id, false, "", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestProposeDuration_BeforeAcceptance(t *testing.T) {
	w := newTestWorld(t)
	id := w.createBooking(t)

	_, err := w.facade.ProposeDuration(context.Background(), tenant, id, 1, 6)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "booking", terr.Entity)
	assert.Equal(t, string(model.BookingPending), terr.From)

	b := w.store.booking(id)
	assert.Equal(t, model.BookingPending, b.Status, "failed proposal must not mutate the booking")
	assert.Nil(t, b.DurationYears)
	assert.Nil(t, b.DurationMonths)
}

func TestProposeAndApproveDuration(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.acceptBooking(t, nil)

	status, err := w.facade.ProposeDuration(context.Background(), tenant, id, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, model.BookingDurationPending, status)

	b := w.store.booking(id)
	require.NotNil(t, b.DurationYears)
	assert.Equal(t, uint8(1), *b.DurationYears)
	require.NotNil(t, b.DurationMonths)
	assert.Equal(t, uint8(6), *b.DurationMonths)

	status, err = w.facade.ApproveDuration(context.Background(), owner, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.BookingDurationApproved, status)

	b = w.store.booking(id)
	require.NotNil(t, b.DurationApproved)
	assert.True(t, *b.DurationApproved)
	assert.NotNil(t, b.DurationDecidedAt)
}

func TestApproveDuration_NothingProposed(t *testing.T) {
	w := newTestWorld(t)
	id, _ := w.acceptBooking(t, nil)

	_, err := w.facade.ApproveDuration(context.Background(), owner, id, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRespondToAgreement_Sign(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)

	status, err := w.facade.RespondToAgreement(context.Background(), tenant, agreementID, true)
	require.NoError(t, err)
	assert.Equal(t, model.AgreementActive, status)

	a := w.store.agreement(agreementID)
	assert.NotNil(t, a.SignedAt)
	assert.Equal(t, model.BookingPaymentPending, w.store.booking(bookingID).Status)

	notes := w.sink.delivered()
	require.Len(t, notes, 2) // acceptance + signature
	assert.Equal(t, ownerID, notes[1].userID)
	assert.Equal(t, model.NotifAgreementSigned, notes[1].category)
}

func TestRespondToAgreement_Decline(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)

	status, err := w.facade.RespondToAgreement(context.Background(), tenant, agreementID, false)
	require.NoError(t, err)
	assert.Equal(t, model.AgreementTerminated, status)
	assert.Equal(t, model.BookingCancelled, w.store.booking(bookingID).Status)
}

func TestRespondToAgreement_Twice(t *testing.T) {
	w := newTestWorld(t)
	_, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	_, err := w.facade.RespondToAgreement(context.Background(), tenant, agreementID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRespondToAgreement_OwnerCannotSign(t *testing.T) {
	w := newTestWorld(t)
	_, agreementID := w.acceptBooking(t, nil)

	_, err := w.facade.RespondToAgreement(context.Background(), owner, agreementID, true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetAgreementStatus_TerminateCascades(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	status, err := w.facade.SetAgreementStatus(context.Background(), owner, agreementID, model.AgreementTerminated)
	require.NoError(t, err)
	assert.Equal(t, model.AgreementTerminated, status)
	assert.Equal(t, model.BookingCancelled, w.store.booking(bookingID).Status)
}

func TestSetAgreementStatus_SuspendKeepsBooking(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	status, err := w.facade.SetAgreementStatus(context.Background(), owner, agreementID, model.AgreementSuspended)
	require.NoError(t, err)
	assert.Equal(t, model.AgreementSuspended, status)
	assert.Equal(t, model.BookingPaymentPending, w.store.booking(bookingID).Status)
}

func TestSetAgreementStatus_PendingAgreement(t *testing.T) {
	w := newTestWorld(t)
	_, agreementID := w.acceptBooking(t, nil)

	_, err := w.facade.SetAgreementStatus(context.Background(), owner, agreementID, model.AgreementTerminated)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetAgreementStatus_InvalidTarget(t *testing.T) {
	w := newTestWorld(t)
	_, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	_, err := w.facade.SetAgreementStatus(context.Background(), owner, agreementID, model.AgreementActive)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPayDeposit_ActivatesLease(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	paymentID, err := w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-001", "")
	require.NoError(t, err)
	assert.NotZero(t, paymentID)

	assert.Equal(t, model.BookingActive, w.store.booking(bookingID).Status)

	a := w.store.agreement(agreementID)
	assert.Equal(t, model.AgreementActive, a.Status)
	require.NotNil(t, a.StartDate)
	assert.Equal(t, time.Now().UTC().Truncate(24*time.Hour), *a.StartDate)

	assert.False(t, w.store.property(w.propertyID).IsAvailable, "deposit must take the property off the market")
	assert.Equal(t, 1, w.store.paymentCount(bookingID))

	notes := w.sink.delivered()
	last := notes[len(notes)-1]
	assert.Equal(t, ownerID, last.userID)
	assert.Equal(t, model.NotifDepositReceived, last.category)
}

// A deposit may also arrive before the tenant signs; it then activates
// the pending agreement directly.
func TestPayDeposit_BeforeSigning(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)

	_, err := w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-002", "")
	require.NoError(t, err)
	assert.Equal(t, model.BookingActive, w.store.booking(bookingID).Status)
	assert.Equal(t, model.AgreementActive, w.store.agreement(agreementID).Status)
}

func TestPayDeposit_Twice(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	_, err := w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-003", "")
	require.NoError(t, err)

	_, err = w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-004", "")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, 1, w.store.paymentCount(bookingID), "repeat deposit must not append to the ledger")
	assert.Equal(t, model.BookingActive, w.store.booking(bookingID).Status)
}

func TestPayDeposit_PendingBooking(t *testing.T) {
	w := newTestWorld(t)
	bookingID := w.createBooking(t)

	_, err := w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-005", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, w.store.paymentCount(bookingID))
}

func TestPayDeposit_Concurrent(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := "race-" + string(rune('a'+i))
			_, errs[i] = w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, ref, "")
		}(i)
	}
	wg.Wait()

	var succeeded, duplicate int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyPaid):
			duplicate++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one racing deposit must win")
	assert.Equal(t, 1, duplicate)
	assert.Equal(t, 1, w.store.paymentCount(bookingID))
}

func TestRecordRecurringPayment(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)
	_, err := w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-006", "")
	require.NoError(t, err)

	paymentID, err := w.facade.RecordRecurringPayment(context.Background(), bookingID, 90_000, "bank_transfer", "2026-11", "")
	require.NoError(t, err)
	assert.NotZero(t, paymentID)
	assert.Equal(t, 2, w.store.paymentCount(bookingID))
}

func TestRecordRecurringPayment_InactiveBooking(t *testing.T) {
	w := newTestWorld(t)
	bookingID, _ := w.acceptBooking(t, nil)

	_, err := w.facade.RecordRecurringPayment(context.Background(), bookingID, 90_000, "bank_transfer", "2026-11", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRecordRecurringPayment_DuplicateReference(t *testing.T) {
	w := newTestWorld(t)
	bookingID, agreementID := w.acceptBooking(t, nil)
	w.signAgreement(t, agreementID)
	_, err := w.facade.PayDeposit(context.Background(), tenant, bookingID, 180_000, "txn-006", "")
	require.NoError(t, err)

	_, err = w.facade.RecordRecurringPayment(context.Background(), bookingID, 90_000, "bank_transfer", "2026-11", "txn-100")
	require.NoError(t, err)

	// The provider retries its callback with the same reference.  The
	// duplicate is reported as a stale reference, not as a paid
	// deposit, and the ledger keeps a single rent row.
	_, err = w.facade.RecordRecurringPayment(context.Background(), bookingID, 90_000, "bank_transfer", "2026-11", "txn-100")
	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.NotErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, 2, w.store.paymentCount(bookingID))
}

func TestTransact_RetriesStoreUnavailable(t *testing.T) {
	w := newTestWorld(t)
	w.store.beginErrs = []error{ErrStoreUnavailable}

	id, err := w.facade.CreateBooking(context.Background(), tenant, w.propertyID,
		time.Now().UTC(), time.Now().UTC().AddDate(1, 0, 0))
	require.NoError(t, err, "one transient outage must be absorbed by the retry")
	assert.Equal(t, model.BookingPending, w.store.booking(id).Status)
}

func TestTransact_StoreUnavailableTwice(t *testing.T) {
	w := newTestWorld(t)
	w.store.beginErrs = []error{ErrStoreUnavailable, ErrStoreUnavailable}

	_, err := w.facade.CreateBooking(context.Background(), tenant, w.propertyID,
		time.Now().UTC(), time.Now().UTC().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestTransact_WrapsUnknownErrors(t *testing.T) {
	w := newTestWorld(t)
	w.store.beginErrs = []error{errors.New("disk on fire")}

	_, err := w.facade.CreateBooking(context.Background(), tenant, w.propertyID,
		time.Now().UTC(), time.Now().UTC().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestNotifications_NoneOnFailedTransition(t *testing.T) {
	w := newTestWorld(t)
	id := w.createBooking(t)

	_, err := w.facade.ProposeDuration(context.Background(), tenant, id, 1, 0)
	require.Error(t, err)
	assert.Empty(t, w.sink.delivered(), "a rolled-back transition must not notify anyone")
}

func TestNotifications_SinkFailureDoesNotFailOperation(t *testing.T) {
	w := newTestWorld(t)
	w.sink.fail = true
	id := w.createBooking(t)

	status, err := w.facade.OwnerDecideBooking(context.Background(), owner, id, true, "", nil)
	require.NoError(t, err, "notification failure must never surface to the caller")
	assert.Equal(t, model.BookingAgreementPending, status)
	assert.Equal(t, model.BookingAgreementPending, w.store.booking(id).Status)
}

// Full lease lifecycle: request, accept, duration negotiation,
// signature, deposit, first month's rent, owner termination.
func TestLeaseEndToEnd(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()

	bookingID := w.createBooking(t)

	_, err := w.facade.OwnerDecideBooking(ctx, owner, bookingID, true, "", nil)
	require.NoError(t, err)

	_, err = w.facade.ProposeDuration(ctx, tenant, bookingID, 2, 0)
	require.NoError(t, err)
	_, err = w.facade.ApproveDuration(ctx, owner, bookingID, true)
	require.NoError(t, err)

	a, ok := w.store.agreementForBooking(bookingID)
	require.True(t, ok)
	_, err = w.facade.RespondToAgreement(ctx, tenant, a.ID, true)
	require.NoError(t, err)

	_, err = w.facade.PayDeposit(ctx, tenant, bookingID, 180_000, "txn-e2e", "")
	require.NoError(t, err)
	_, err = w.facade.RecordRecurringPayment(ctx, bookingID, 90_000, "bank_transfer", "2026-10", "txn-e2e-rent")
	require.NoError(t, err)

	assert.Equal(t, model.BookingActive, w.store.booking(bookingID).Status)
	assert.Equal(t, model.AgreementActive, w.store.agreement(a.ID).Status)
	assert.False(t, w.store.property(w.propertyID).IsAvailable)
	assert.Equal(t, 2, w.store.paymentCount(bookingID))

	// The lease ends with the owner terminating the agreement, which
	// cascades the booking to cancelled.
	_, err = w.facade.SetAgreementStatus(ctx, owner, a.ID, model.AgreementTerminated)
	require.NoError(t, err)
	assert.Equal(t, model.AgreementTerminated, w.store.agreement(a.ID).Status)
	assert.Equal(t, model.BookingCancelled, w.store.booking(bookingID).Status)

	categories := make([]model.NotificationCategory, 0, 8)
	for _, n := range w.sink.delivered() {
		categories = append(categories, n.category)
	}
	assert.Equal(t, []model.NotificationCategory{
		model.NotifBookingAccepted,
		model.NotifDurationProposed,
		model.NotifDurationDecided,
		model.NotifAgreementSigned,
		model.NotifDepositReceived,
		model.NotifRentReceived,
		model.NotifAgreementStatus,
	}, categories)
}
