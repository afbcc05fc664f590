package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/renthub/home-rental/internal/lease"
	"github.com/renthub/home-rental/internal/model"
)

// Store implements lease.Store on top of *sql.DB.  Each Transact call
// opens one database transaction; the booking row locks taken by the
// ForUpdate reads serialize concurrent lifecycle transitions on the
// same booking.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying pool for query repositories that share it.
func (s *Store) DB() *sql.DB { return s.db }

// Transact runs fn inside a single transaction.  On any error from fn
// the transaction is rolled back and the error returned unchanged;
// commit and begin failures are mapped to the store taxonomy.
func (s *Store) Transact(ctx context.Context, fn func(lease.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapStoreErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapStoreErr(err)
	}
	committed = true
	return nil
}

// mapStoreErr classifies low-level database failures.  Timeouts and
// broken connections become ErrStoreUnavailable so the facade can
// retry once; everything else passes through for the facade to wrap.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", lease.ErrStoreUnavailable, err)
	}
	return err
}

// storeTx implements lease.Tx over *sql.Tx.
type storeTx struct {
	tx *sql.Tx
}

const bookingColumns = `id, property_id, tenant_id, owner_id, start_date, end_date,
       duration_years, duration_months, status, reject_reason, duration_approved,
       rent_cents, deposit_cents, requested_at, decided_at, duration_decided_at,
       created_at, updated_at`

// scanBooking reads one bookings row from a row scanner.
func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	var (
		years, months    sql.NullInt64
		reason           sql.NullString
		durationApproved sql.NullBool
		decidedAt        sql.NullTime
		durationDecided  sql.NullTime
		status           string
	)
	err := row.Scan(
		&b.ID, &b.PropertyID, &b.TenantID, &b.OwnerID, &b.StartDate, &b.EndDate,
		&years, &months, &status, &reason, &durationApproved,
		&b.RentCents, &b.DepositCents, &b.RequestedAt, &decidedAt, &durationDecided,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lease.ErrNotFound
		}
		return nil, mapStoreErr(err)
	}
	b.Status = model.BookingStatus(status)
	if years.Valid {
		y := uint8(years.Int64)
		b.DurationYears = &y
	}
	if months.Valid {
		m := uint8(months.Int64)
		b.DurationMonths = &m
	}
	if reason.Valid {
		r := reason.String
		b.RejectReason = &r
	}
	if durationApproved.Valid {
		v := durationApproved.Bool
		b.DurationApproved = &v
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		b.DecidedAt = &t
	}
	if durationDecided.Valid {
		t := durationDecided.Time
		b.DurationDecidedAt = &t
	}
	return &b, nil
}

func (t *storeTx) PropertyByID(ctx context.Context, id uint64) (*model.Property, error) {
	const q = `SELECT id, owner_id, title, address, is_available, rent_cents, deposit_cents, created_at, updated_at
               FROM properties WHERE id = ?`
	var p model.Property
	err := t.tx.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Address, &p.IsAvailable,
		&p.RentCents, &p.DepositCents, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lease.ErrNotFound
		}
		return nil, mapStoreErr(err)
	}
	return &p, nil
}

func (t *storeTx) SetPropertyAvailability(ctx context.Context, id uint64, available bool) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE properties SET is_available = ? WHERE id = ?`, available, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// The row may already carry the target value; confirm it exists.
		var one int
		if scanErr := t.tx.QueryRowContext(ctx, `SELECT 1 FROM properties WHERE id = ?`, id).Scan(&one); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return lease.ErrNotFound
			}
			return mapStoreErr(scanErr)
		}
	}
	return nil
}

func (t *storeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (property_id, tenant_id, owner_id, start_date, end_date, status, rent_cents, deposit_cents, requested_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		b.PropertyID, b.TenantID, b.OwnerID, b.StartDate, b.EndDate,
		string(b.Status), b.RentCents, b.DepositCents, b.RequestedAt,
	)
	if err != nil {
		return mapStoreErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapStoreErr(err)
	}
	b.ID = uint64(id)
	return nil
}

// BookingForUpdate loads a booking under a row lock so concurrent
// decisions or deposit attempts on the same booking serialize.
func (t *storeTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	return scanBooking(t.tx.QueryRowContext(ctx, q, id))
}

func (t *storeTx) UpdateBooking(ctx context.Context, id uint64, upd lease.BookingUpdate) error {
	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.RejectReason != nil {
		sets = append(sets, "reject_reason = ?")
		args = append(args, *upd.RejectReason)
	}
	if upd.DurationYears != nil {
		sets = append(sets, "duration_years = ?")
		args = append(args, *upd.DurationYears)
	}
	if upd.DurationMonths != nil {
		sets = append(sets, "duration_months = ?")
		args = append(args, *upd.DurationMonths)
	}
	if upd.DurationApproved != nil {
		sets = append(sets, "duration_approved = ?")
		args = append(args, *upd.DurationApproved)
	}
	if upd.DecidedAt != nil {
		sets = append(sets, "decided_at = ?")
		args = append(args, *upd.DecidedAt)
	}
	if upd.DurationDecidedAt != nil {
		sets = append(sets, "duration_decided_at = ?")
		args = append(args, *upd.DurationDecidedAt)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE bookings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

const agreementColumns = `id, booking_id, property_id, tenant_id, owner_id, rent_cents, deposit_cents,
       electricity_rate, water_charge, garbage_charge, rules, status, signed_at, start_date,
       created_at, updated_at`

func scanAgreement(row *sql.Row) (*model.Agreement, error) {
	var a model.Agreement
	var (
		status    string
		signedAt  sql.NullTime
		startDate sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.BookingID, &a.PropertyID, &a.TenantID, &a.OwnerID,
		&a.RentCents, &a.DepositCents, &a.ElectricityRate, &a.WaterCharge, &a.GarbageCharge,
		&a.Rules, &status, &signedAt, &startDate, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lease.ErrNotFound
		}
		return nil, mapStoreErr(err)
	}
	a.Status = model.AgreementStatus(status)
	if signedAt.Valid {
		t := signedAt.Time
		a.SignedAt = &t
	}
	if startDate.Valid {
		t := startDate.Time
		a.StartDate = &t
	}
	return &a, nil
}

func (t *storeTx) InsertAgreement(ctx context.Context, a *model.Agreement) error {
	const q = `INSERT INTO agreements
               (booking_id, property_id, tenant_id, owner_id, rent_cents, deposit_cents,
                electricity_rate, water_charge, garbage_charge, rules, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		a.BookingID, a.PropertyID, a.TenantID, a.OwnerID, a.RentCents, a.DepositCents,
		a.ElectricityRate, a.WaterCharge, a.GarbageCharge, a.Rules, string(a.Status),
	)
	if err != nil {
		// The unique key on booking_id backs the one-agreement-per-booking
		// invariant even under concurrent generation attempts.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return lease.ErrDuplicateAgreement
		}
		return mapStoreErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapStoreErr(err)
	}
	a.ID = uint64(id)
	return nil
}

func (t *storeTx) AgreementForUpdate(ctx context.Context, id uint64) (*model.Agreement, error) {
	q := `SELECT ` + agreementColumns + ` FROM agreements WHERE id = ? FOR UPDATE`
	return scanAgreement(t.tx.QueryRowContext(ctx, q, id))
}

func (t *storeTx) AgreementByBooking(ctx context.Context, bookingID uint64) (*model.Agreement, error) {
	q := `SELECT ` + agreementColumns + ` FROM agreements WHERE booking_id = ?`
	return scanAgreement(t.tx.QueryRowContext(ctx, q, bookingID))
}

func (t *storeTx) UpdateAgreement(ctx context.Context, id uint64, upd lease.AgreementUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.SignedAt != nil {
		sets = append(sets, "signed_at = ?")
		args = append(args, *upd.SignedAt)
	}
	if upd.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *upd.StartDate)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE agreements SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (t *storeTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments
               (booking_id, tenant_id, owner_id, property_id, amount_cents, type, method,
                external_ref, status, month_label, notes)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		p.BookingID, p.TenantID, p.OwnerID, p.PropertyID, p.AmountCents,
		string(p.Type), p.Method, p.ExternalRef, string(p.Status), p.MonthLabel, p.Notes,
	)
	if err != nil {
		// external_ref carries a unique key.  For a deposit the
		// duplicate means the lease activation already happened; for
		// any other payment only this provider reference is stale.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			if p.Type == model.PaymentDeposit {
				return lease.ErrAlreadyPaid
			}
			return lease.ErrDuplicateReference
		}
		return mapStoreErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapStoreErr(err)
	}
	p.ID = uint64(id)
	p.CreatedAt = time.Now().UTC()
	return nil
}

// HasCompletedDeposit reports whether a completed security deposit
// already exists for the booking.  It runs inside the transaction that
// holds the booking row lock, so the check-then-insert sequence cannot
// race with a concurrent deposit.
func (t *storeTx) HasCompletedDeposit(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `SELECT COUNT(1) FROM payments WHERE booking_id = ? AND type = ? AND status = ?`
	var n int
	err := t.tx.QueryRowContext(ctx, q, bookingID, string(model.PaymentDeposit), string(model.PaymentCompleted)).Scan(&n)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return n > 0, nil
}
