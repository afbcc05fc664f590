package lease

import (
	"context"
	"sync"

	"github.com/renthub/home-rental/internal/model"
)

// memStore is an in-memory Store used by the tests in this package.
// Transact holds one mutex for the whole transaction, which serializes
// concurrent transactions the way row locks do in the SQL store, and
// runs fn against a copy of the state so a returned error rolls every
// write back.
type memStore struct {
	mu         sync.Mutex
	properties map[uint64]model.Property
	bookings   map[uint64]model.Booking
	agreements map[uint64]model.Agreement
	payments   map[uint64]model.Payment
	nextID     uint64

	// beginErrs is a queue of errors returned by Transact before fn
	// runs, used to simulate transient store outages.
	beginErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		properties: map[uint64]model.Property{},
		bookings:   map[uint64]model.Booking{},
		agreements: map[uint64]model.Agreement{},
		payments:   map[uint64]model.Payment{},
	}
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addProperty(p model.Property) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.properties[p.ID] = p
	return p.ID
}

func (s *memStore) booking(id uint64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) agreement(id uint64) model.Agreement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agreements[id]
}

func (s *memStore) agreementForBooking(bookingID uint64) (model.Agreement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agreements {
		if a.BookingID == bookingID {
			return a, true
		}
	}
	return model.Agreement{}, false
}

func (s *memStore) property(id uint64) model.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.properties[id]
}

func (s *memStore) paymentCount(bookingID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			n++
		}
	}
	return n
}

func (s *memStore) Transact(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.beginErrs) > 0 {
		err := s.beginErrs[0]
		s.beginErrs = s.beginErrs[1:]
		if err != nil {
			return err
		}
	}
	tx := &memTx{
		store:      s,
		properties: copyMap(s.properties),
		bookings:   copyMap(s.bookings),
		agreements: copyMap(s.agreements),
		payments:   copyMap(s.payments),
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.properties = tx.properties
	s.bookings = tx.bookings
	s.agreements = tx.agreements
	s.payments = tx.payments
	return nil
}

func copyMap[V any](src map[uint64]V) map[uint64]V {
	dst := make(map[uint64]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// memTx applies writes to the transaction's private copy of the state.
type memTx struct {
	store      *memStore
	properties map[uint64]model.Property
	bookings   map[uint64]model.Booking
	agreements map[uint64]model.Agreement
	payments   map[uint64]model.Payment
}

func (t *memTx) PropertyByID(ctx context.Context, id uint64) (*model.Property, error) {
	p, ok := t.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (t *memTx) SetPropertyAvailability(ctx context.Context, id uint64, available bool) error {
	p, ok := t.properties[id]
	if !ok {
		return ErrNotFound
	}
	p.IsAvailable = available
	t.properties[id] = p
	return nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	b.ID = t.store.id()
	t.bookings[b.ID] = *b
	return nil
}

func (t *memTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (t *memTx) UpdateBooking(ctx context.Context, id uint64, upd BookingUpdate) error {
	b, ok := t.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}
	if upd.RejectReason != nil {
		b.RejectReason = upd.RejectReason
	}
	if upd.DurationYears != nil {
		b.DurationYears = upd.DurationYears
	}
	if upd.DurationMonths != nil {
		b.DurationMonths = upd.DurationMonths
	}
	if upd.DurationApproved != nil {
		b.DurationApproved = upd.DurationApproved
	}
	if upd.DecidedAt != nil {
		b.DecidedAt = upd.DecidedAt
	}
	if upd.DurationDecidedAt != nil {
		b.DurationDecidedAt = upd.DurationDecidedAt
	}
	t.bookings[id] = b
	return nil
}

func (t *memTx) InsertAgreement(ctx context.Context, a *model.Agreement) error {
	for _, existing := range t.agreements {
		if existing.BookingID == a.BookingID {
			return ErrDuplicateAgreement
		}
	}
	a.ID = t.store.id()
	t.agreements[a.ID] = *a
	return nil
}

func (t *memTx) AgreementForUpdate(ctx context.Context, id uint64) (*model.Agreement, error) {
	a, ok := t.agreements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (t *memTx) AgreementByBooking(ctx context.Context, bookingID uint64) (*model.Agreement, error) {
	for _, a := range t.agreements {
		if a.BookingID == bookingID {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memTx) UpdateAgreement(ctx context.Context, id uint64, upd AgreementUpdate) error {
	a, ok := t.agreements[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.SignedAt != nil {
		a.SignedAt = upd.SignedAt
	}
	if upd.StartDate != nil {
		a.StartDate = upd.StartDate
	}
	t.agreements[id] = a
	return nil
}

func (t *memTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	if p.ExternalRef != "" {
		for _, existing := range t.payments {
			if existing.ExternalRef == p.ExternalRef {
				if p.Type == model.PaymentDeposit {
					return ErrAlreadyPaid
				}
				return ErrDuplicateReference
			}
		}
	}
	p.ID = t.store.id()
	t.payments[p.ID] = *p
	return nil
}

func (t *memTx) HasCompletedDeposit(ctx context.Context, bookingID uint64) (bool, error) {
	for _, p := range t.payments {
		if p.BookingID == bookingID && p.Type == model.PaymentDeposit && p.Status == model.PaymentCompleted {
			return true, nil
		}
	}
	return false, nil
}

// sinkNote is one delivered notification recorded by memSink.
type sinkNote struct {
	userID   uint64
	title    string
	category model.NotificationCategory
}

// memSink records delivered notifications and can be told to report
// delivery failure.
type memSink struct {
	mu    sync.Mutex
	notes []sinkNote
	fail  bool
}

func (s *memSink) Notify(ctx context.Context, userID uint64, title, body string, category model.NotificationCategory, relatedID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return false
	}
	s.notes = append(s.notes, sinkNote{userID: userID, title: title, category: category})
	return true
}

func (s *memSink) delivered() []sinkNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sinkNote, len(s.notes))
	copy(out, s.notes)
	return out
}
