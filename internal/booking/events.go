package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rims/internal/model"
)

// EventKind names a committed booking transition. The values double as
// message routing keys.
type EventKind string

const (
	EventConfirmed EventKind = "booking.confirmed"
	EventCancelled EventKind = "booking.cancelled"
	EventCompleted EventKind = "booking.completed"
)

// Event describes a booking transition after its transaction committed.
// Payment fields are only set for EventConfirmed.
type Event struct {
	Kind          EventKind
	BookingID     uint64
	UserID        uint64
	PropertyID    uint64
	StartDate     time.Time
	EndDate       time.Time
	Amount        decimal.Decimal
	PaymentMethod string
	PaymentStatus model.PaymentStatus
	At            time.Time
}

// Listener observes committed transitions. Listeners run after commit and
// cannot fail the workflow; they log their own errors.
type Listener interface {
	BookingChanged(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev Event)

func (f ListenerFunc) BookingChanged(ctx context.Context, ev Event) { f(ctx, ev) }
