package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PropertyRepo provides CRUD operations for property listings.  The
// orchestration core only flips availability (through the Store); the
// listing surface below is used by owner and public endpoints.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo returns a new PropertyRepo bound to the given database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

// ErrPropertyNotFound is returned when a property lookup matches no row.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyRecord mirrors the schema of the properties table.
type PropertyRecord struct {
	ID           uint64    `json:"id"`
	OwnerID      uint64    `json:"owner_id"`
	Title        string    `json:"title"`
	Address      string    `json:"address"`
	IsAvailable  bool      `json:"is_available"`
	RentCents    uint32    `json:"rent_cents"`
	DepositCents uint32    `json:"deposit_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Create inserts a new property owned by ownerID and populates the
// generated ID on the record.
func (r *PropertyRepo) Create(ctx context.Context, rec *PropertyRecord) error {
	const q = `INSERT INTO properties (owner_id, title, address, is_available, rent_cents, deposit_cents)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rec.OwnerID, rec.Title, rec.Address, rec.IsAvailable, rec.RentCents, rec.DepositCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// GetByID returns a single property or ErrPropertyNotFound.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*PropertyRecord, error) {
	const q = `SELECT id, owner_id, title, address, is_available, rent_cents, deposit_cents, created_at, updated_at
               FROM properties WHERE id = ?`
	var rec PropertyRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.Address, &rec.IsAvailable,
		&rec.RentCents, &rec.DepositCents, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListByOwner returns all properties listed by the given owner, newest
// first.  When none exist an empty slice is returned.
func (r *PropertyRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]PropertyRecord, error) {
	const q = `SELECT id, owner_id, title, address, is_available, rent_cents, deposit_cents, created_at, updated_at
               FROM properties WHERE owner_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, ownerID)
}

// ListAvailable returns all properties currently accepting bookings.
// Used by the public browse endpoint (cached at the middleware layer).
func (r *PropertyRepo) ListAvailable(ctx context.Context) ([]PropertyRecord, error) {
	const q = `SELECT id, owner_id, title, address, is_available, rent_cents, deposit_cents, created_at, updated_at
               FROM properties WHERE is_available = TRUE ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *PropertyRepo) list(ctx context.Context, q string, args ...interface{}) ([]PropertyRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs := make([]PropertyRecord, 0)
	for rows.Next() {
		var rec PropertyRecord
		if err := rows.Scan(
			&rec.ID, &rec.OwnerID, &rec.Title, &rec.Address, &rec.IsAvailable,
			&rec.RentCents, &rec.DepositCents, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// PropertyListingUpdate enumerates the listing fields an owner may
// change.  Nil pointers leave the column untouched.  Availability is
// included so an owner can relist a unit after a lease ends.
type PropertyListingUpdate struct {
	Title        *string
	Address      *string
	RentCents    *uint32
	DepositCents *uint32
	IsAvailable  *bool
}

// UpdateListing applies an owner-scoped listing update.  It verifies
// ownership first and returns ErrForbidden when the property belongs
// to another owner, ErrPropertyNotFound when it does not exist.
func (r *PropertyRepo) UpdateListing(ctx context.Context, propertyID, ownerID uint64, upd PropertyListingUpdate) error {
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM properties WHERE id = ?`, propertyID).Scan(&actualOwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPropertyNotFound
		}
		return err
	}
	if actualOwnerID != ownerID {
		return ErrForbidden
	}
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, *upd.Address)
	}
	if upd.RentCents != nil {
		sets = append(sets, "rent_cents = ?")
		args = append(args, *upd.RentCents)
	}
	if upd.DepositCents != nil {
		sets = append(sets, "deposit_cents = ?")
		args = append(args, *upd.DepositCents)
	}
	if upd.IsAvailable != nil {
		sets = append(sets, "is_available = ?")
		args = append(args, *upd.IsAvailable)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, propertyID)
	q := "UPDATE properties SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}
