package booking

import (
	"context"
	"time"

	"github.com/iliyamo/rims/internal/model"
)

// Ledger creates and cancels booking rows inside one transaction.
type Ledger struct {
	bookings BookingStore
	clock    Clock
}

// NewLedger binds a Ledger to tx; clock decides what "today" is.
func NewLedger(tx Tx, clock Clock) Ledger {
	return Ledger{bookings: tx.Bookings(), clock: clock}
}

// ValidateDates checks that start is not before today and end is not
// before start. All three are compared as calendar dates.
func ValidateDates(start, end, today time.Time) error {
	start, end, today = DateOf(start), DateOf(end), DateOf(today)
	if start.Before(today) || end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// Create validates the date range and inserts an Active booking,
// returning its generated id.
func (l Ledger) Create(ctx context.Context, userID, propertyID uint64, start, end time.Time) (uint64, error) {
	if err := ValidateDates(start, end, Today(l.clock)); err != nil {
		return 0, err
	}
	b := model.Booking{
		UserID:     userID,
		PropertyID: propertyID,
		StartDate:  DateOf(start),
		EndDate:    DateOf(end),
		Status:     model.BookingActive,
	}
	if err := l.bookings.Insert(ctx, &b); err != nil {
		return 0, err
	}
	if b.ID == 0 {
		return 0, &StoreError{Op: "create booking", Err: errNoGeneratedID}
	}
	return b.ID, nil
}

// Find loads the booking only if it belongs to userID; otherwise
// ErrNotFound. The row stays locked until the transaction ends.
func (l Ledger) Find(ctx context.Context, bookingID, userID uint64) (model.Booking, error) {
	return l.bookings.LockForUser(ctx, bookingID, userID)
}

// Cancel moves b to Cancelled. A booking that is already Cancelled is
// reported with ErrAlreadyCancelled and nothing is written.
func (l Ledger) Cancel(ctx context.Context, b *model.Booking) error {
	switch b.Status {
	case model.BookingCancelled:
		return ErrAlreadyCancelled
	case model.BookingCompleted:
		return ErrAlreadyCompleted
	}
	if err := l.bookings.SetStatus(ctx, b.ID, model.BookingCancelled); err != nil {
		return err
	}
	b.Status = model.BookingCancelled
	return nil
}
