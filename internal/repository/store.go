package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

// Store runs booking transactions against MySQL. Each Begin opens one
// *sql.Tx and hands out per-table views bound to it.
type Store struct {
	db         *sql.DB
	opts       *sql.TxOptions
	properties *PropertyRepo
	bookings   *BookingRepo
	residents  *ResidentRepo
	payments   *PaymentRepo
}

// NewStore returns a Store whose transactions use the given isolation
// level. sql.LevelDefault leaves the server setting in place.
func NewStore(db *sql.DB, isolation sql.IsolationLevel) *Store {
	return &Store{
		db:         db,
		opts:       &sql.TxOptions{Isolation: isolation},
		properties: NewPropertyRepo(db),
		bookings:   NewBookingRepo(db),
		residents:  NewResidentRepo(db),
		payments:   NewPaymentRepo(db),
	}
}

// Begin implements booking.Store.
func (s *Store) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := s.db.BeginTx(ctx, s.opts)
	if err != nil {
		return nil, classify(err)
	}
	return &storeTx{s: s, tx: tx}, nil
}

type storeTx struct {
	s  *Store
	tx *sql.Tx
}

func (t *storeTx) Properties() booking.PropertyStore { return propertyTx(*t) }
func (t *storeTx) Bookings() booking.BookingStore    { return bookingTx(*t) }
func (t *storeTx) Residents() booking.ResidentStore  { return residentTx(*t) }
func (t *storeTx) Payments() booking.PaymentStore    { return paymentTx(*t) }

func (t *storeTx) Commit() error { return classify(t.tx.Commit()) }

// Rollback after Commit or a previous Rollback is a no-op.
func (t *storeTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// notFound converts sql.ErrNoRows into the engine's NotFound kind.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	return err
}

type propertyTx storeTx

func (p propertyTx) Availability(ctx context.Context, id uint64) (model.Availability, error) {
	a, err := p.s.properties.AvailabilityTx(ctx, p.tx, id)
	return a, notFound(err)
}

func (p propertyTx) LockAvailability(ctx context.Context, id uint64) (model.Availability, error) {
	a, err := p.s.properties.LockAvailabilityTx(ctx, p.tx, id)
	return a, notFound(err)
}

func (p propertyTx) SetStatus(ctx context.Context, id uint64, status, from model.AvailabilityStatus) (int64, error) {
	return p.s.properties.SetStatusTx(ctx, p.tx, id, status, from)
}

type bookingTx storeTx

func (b bookingTx) Insert(ctx context.Context, bk *model.Booking) error {
	return b.s.bookings.CreateTx(ctx, b.tx, bk)
}

func (b bookingTx) LockForUser(ctx context.Context, bookingID, userID uint64) (model.Booking, error) {
	bk, err := b.s.bookings.GetForUserTx(ctx, b.tx, bookingID, userID)
	return bk, notFound(err)
}

func (b bookingTx) Lock(ctx context.Context, bookingID uint64) (model.Booking, error) {
	bk, err := b.s.bookings.GetTx(ctx, b.tx, bookingID)
	return bk, notFound(err)
}

// SetStatus runs after Lock or LockForUser, so the row is known to
// exist. MySQL reports zero affected rows for a no-op update, so the
// count is not checked.
func (b bookingTx) SetStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	_, err := b.s.bookings.UpdateStatusTx(ctx, b.tx, bookingID, status)
	return err
}

type residentTx storeTx

func (r residentTx) Add(ctx context.Context, res model.Resident) error {
	return r.s.residents.AddTx(ctx, r.tx, res)
}

func (r residentTx) Remove(ctx context.Context, res model.Resident) error {
	return r.s.residents.RemoveTx(ctx, r.tx, res)
}

type paymentTx storeTx

func (p paymentTx) Insert(ctx context.Context, pm *model.Payment) error {
	return p.s.payments.CreateTx(ctx, p.tx, pm)
}
