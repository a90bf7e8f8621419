package booking

import (
	"context"

	"github.com/iliyamo/rims/internal/model"
)

// Store opens transactions against the relational store. Every workflow
// runs on exactly one Tx, released by Commit or Rollback.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one unit of work. Table accessors are bound to the transaction.
// Rollback after Commit is allowed and does nothing.
type Tx interface {
	Properties() PropertyStore
	Bookings() BookingStore
	Residents() ResidentStore
	Payments() PaymentStore
	Commit() error
	Rollback() error
}

// PropertyStore reads and updates property availability. Lookups of a
// missing property return ErrNotFound.
type PropertyStore interface {
	// Availability reads status and price without locking.
	Availability(ctx context.Context, propertyID uint64) (model.Availability, error)
	// LockAvailability reads status and price and holds a row lock on the
	// property until the transaction ends.
	LockAvailability(ctx context.Context, propertyID uint64) (model.Availability, error)
	// SetStatus moves the property to status. When from is non-empty the
	// update only applies if the current status equals from. It returns the
	// number of rows changed.
	SetStatus(ctx context.Context, propertyID uint64, status, from model.AvailabilityStatus) (int64, error)
}

// BookingStore persists booking rows. Lookups of a missing booking return
// ErrNotFound.
type BookingStore interface {
	// Insert stores b and sets b.ID to the generated identity.
	Insert(ctx context.Context, b *model.Booking) error
	// LockForUser loads and locks the booking only if it belongs to userID.
	LockForUser(ctx context.Context, bookingID, userID uint64) (model.Booking, error)
	// Lock loads and locks the booking regardless of owner.
	Lock(ctx context.Context, bookingID uint64) (model.Booking, error)
	SetStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error
}

// ResidentStore inserts and deletes roster rows.
type ResidentStore interface {
	Add(ctx context.Context, r model.Resident) error
	Remove(ctx context.Context, r model.Resident) error
}

// PaymentStore appends payment rows and sets p.ID.
type PaymentStore interface {
	Insert(ctx context.Context, p *model.Payment) error
}
