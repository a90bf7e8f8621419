package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

// PropertyRepo provides persistence for the property table. Methods with
// a Tx suffix run inside a caller-owned transaction; the caller must
// commit or roll back.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo returns a new PropertyRepo bound to the given database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

const propertyColumns = `property_id, name, type, location, price_per_month, availability_status, sharing`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (model.Property, error) {
	var (
		p       model.Property
		sharing sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Location, &p.PricePerMonth, &p.AvailabilityStatus, &sharing); err != nil {
		return model.Property{}, err
	}
	if sharing.Valid {
		n := int(sharing.Int64)
		p.Sharing = &n
	}
	return p, nil
}

func (r *PropertyRepo) list(ctx context.Context, q string, args ...any) ([]model.Property, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every property ordered by id. Owners see all statuses.
func (r *PropertyRepo) List(ctx context.Context) ([]model.Property, error) {
	return r.list(ctx, `SELECT `+propertyColumns+` FROM property ORDER BY property_id`)
}

// ListAvailable returns only properties a tenant can book right now.
func (r *PropertyRepo) ListAvailable(ctx context.Context) ([]model.Property, error) {
	return r.list(ctx, `SELECT `+propertyColumns+` FROM property WHERE availability_status = ? ORDER BY property_id`, model.Available)
}

// Create inserts a new Available property and sets p.ID. Insert failures
// come back as *booking.StoreError.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
	var sharing any
	if p.Sharing != nil {
		sharing = *p.Sharing
	}
	p.AvailabilityStatus = model.Available
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO property (name, type, location, price_per_month, availability_status, sharing) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Type, p.Location, p.PricePerMonth.Round(2), p.AvailabilityStatus, sharing)
	if err != nil {
		return &booking.StoreError{Op: "create property", Err: classify(err)}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// SetAvailability lets an owner switch a property between Available and
// Not Available. A Booked property is only released by its booking, so
// it yields ErrConflict; a missing property yields sql.ErrNoRows.
func (r *PropertyRepo) SetAvailability(ctx context.Context, id uint64, status model.AvailabilityStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE property SET availability_status = ? WHERE property_id = ? AND availability_status <> ?`,
		status, id, model.Booked)
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	// Zero rows: missing, Booked, or already in the requested state.
	return r.explainNoop(ctx, id)
}

// Delete removes a property that is not Booked. Bookings that reference
// it are kept; the schema has no foreign key from booking to property.
func (r *PropertyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM property WHERE property_id = ? AND availability_status <> ?`, id, model.Booked)
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	if err := r.explainNoop(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

func (r *PropertyRepo) explainNoop(ctx context.Context, id uint64) error {
	var status model.AvailabilityStatus
	err := r.db.QueryRowContext(ctx, `SELECT availability_status FROM property WHERE property_id = ?`, id).Scan(&status)
	if err != nil {
		return err
	}
	if status == model.Booked {
		return ErrConflict
	}
	return nil
}

const availabilityQuery = `SELECT availability_status, price_per_month FROM property WHERE property_id = ?`

// AvailabilityTx reads status and price without locking.
func (r *PropertyRepo) AvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Availability, error) {
	return scanAvailability(tx.QueryRowContext(ctx, availabilityQuery, id), id)
}

// LockAvailabilityTx reads status and price with SELECT ... FOR UPDATE so
// the row stays locked until the transaction ends.
func (r *PropertyRepo) LockAvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Availability, error) {
	return scanAvailability(tx.QueryRowContext(ctx, availabilityQuery+` FOR UPDATE`, id), id)
}

func scanAvailability(row *sql.Row, id uint64) (model.Availability, error) {
	a := model.Availability{PropertyID: id}
	if err := row.Scan(&a.Status, &a.Price); err != nil {
		return model.Availability{}, classify(err)
	}
	return a, nil
}

// SetStatusTx updates availability_status. With a non-empty from the
// update only matches a row currently in that state. It returns the
// number of rows changed.
func (r *PropertyRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status, from model.AvailabilityStatus) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if from != "" {
		res, err = tx.ExecContext(ctx,
			`UPDATE property SET availability_status = ? WHERE property_id = ? AND availability_status = ?`, status, id, from)
	} else {
		res, err = tx.ExecContext(ctx, `UPDATE property SET availability_status = ? WHERE property_id = ?`, status, id)
	}
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}
