// Package access hands out role-scoped handles. A Browser can only read,
// a Tenant can book and cancel its own bookings, an Owner manages
// properties and overrides booking status. Handlers receive exactly one
// handle per request, chosen from the token's role claim.
package access

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

// ErrUnknownRole is returned by For for a role claim it does not know.
var ErrUnknownRole = errors.New("unknown role")

// Workflows are the transactional operations of the booking engine.
type Workflows interface {
	Book(ctx context.Context, req booking.BookRequest) (booking.BookResult, error)
	Cancel(ctx context.Context, bookingID, userID uint64) error
	SetBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error
}

// AvailabilityReader answers single-property availability reads.
type AvailabilityReader interface {
	GetAvailability(ctx context.Context, propertyID uint64) (model.Availability, error)
}

// Catalog is the property table outside booking workflows. Missing rows
// are reported as sql.ErrNoRows.
type Catalog interface {
	List(ctx context.Context) ([]model.Property, error)
	ListAvailable(ctx context.Context) ([]model.Property, error)
	Create(ctx context.Context, p *model.Property) error
	SetAvailability(ctx context.Context, id uint64, status model.AvailabilityStatus) error
	Delete(ctx context.Context, id uint64) error
}

// History lists bookings for display.
type History interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingSummary, error)
	ListPreviousByUser(ctx context.Context, userID uint64) ([]model.BookingSummary, error)
	ListAll(ctx context.Context, status model.BookingStatus) ([]model.BookingSummary, error)
}

// Payments lists the payments recorded for a booking.
type Payments interface {
	ListByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error)
}

// Roster lists the residents of a property.
type Roster interface {
	ListByProperty(ctx context.Context, propertyID uint64) ([]uint64, error)
}

// Verifier re-checks a tenant's credentials at payment time.
type Verifier interface {
	Verify(ctx context.Context, userID uint64, email, password string) (bool, error)
}

// Invalidator drops cached availability for a property.
type Invalidator interface {
	Forget(ctx context.Context, propertyID uint64)
}

// Deps wires the handles to their collaborators. Invalidator and Log are
// optional.
type Deps struct {
	Workflows    Workflows
	Availability AvailabilityReader
	Catalog      Catalog
	History      History
	Payments     Payments
	Roster       Roster
	Verifier     Verifier
	Invalidator  Invalidator
	Log          logrus.FieldLogger
}

// Role is implemented by *Browser, *Tenant and *Owner.
type Role interface {
	Name() string
}

// For returns the handle for a role claim. An empty role yields a Browser.
func For(role string, userID uint64, d Deps) (Role, error) {
	if d.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		d.Log = l
	}
	switch role {
	case "":
		return &Browser{d: d}, nil
	case model.RoleTenant:
		return &Tenant{Browser: Browser{d: d}, userID: userID}, nil
	case model.RoleOwner:
		return &Owner{Browser: Browser{d: d}, userID: userID}, nil
	}
	return nil, ErrUnknownRole
}

func (d Deps) forget(ctx context.Context, propertyID uint64) {
	if d.Invalidator != nil {
		d.Invalidator.Forget(ctx, propertyID)
	}
}
