package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

var (
	ErrInvalidProperty = errors.New("invalid property")
	ErrInvalidStatus   = errors.New("status must be Available or Not Available")
	ErrUnknownFilter   = errors.New("unknown booking status filter")
)

// maxPrice is the first monthly rent price_per_month DECIMAL(10,2) cannot hold.
var maxPrice = decimal.New(1, 8)

// Owner administers properties and bookings.
type Owner struct {
	Browser
	userID uint64
}

func (o *Owner) Name() string { return model.RoleOwner }

func (o *Owner) log() logrus.FieldLogger {
	return o.d.Log.WithField("owner_id", o.userID)
}

// Properties lists every property in every state.
func (o *Owner) Properties(ctx context.Context) ([]model.Property, error) {
	return o.d.Catalog.List(ctx)
}

// ValidateProperty checks a new listing. PG listings need a positive
// sharing count; other types must not carry one.
func ValidateProperty(p model.Property) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Location) == "" {
		return fmt.Errorf("%w: name and location are required", ErrInvalidProperty)
	}
	switch p.Type {
	case model.TypePG:
		if p.Sharing == nil || *p.Sharing <= 0 {
			return fmt.Errorf("%w: PG listings need a positive sharing count", ErrInvalidProperty)
		}
	case model.TypeApartment, model.TypeHouse:
		if p.Sharing != nil {
			return fmt.Errorf("%w: sharing applies to PG listings only", ErrInvalidProperty)
		}
	default:
		return fmt.Errorf("%w: type must be PG, Apartment or House", ErrInvalidProperty)
	}
	if p.PricePerMonth.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProperty)
	}
	if p.PricePerMonth.Round(2).GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price must be below %s", ErrInvalidProperty, maxPrice)
	}
	return nil
}

// AddProperty validates and stores a new Available listing.
func (o *Owner) AddProperty(ctx context.Context, p model.Property) (model.Property, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Location = strings.TrimSpace(p.Location)
	if err := ValidateProperty(p); err != nil {
		return model.Property{}, err
	}
	p.PricePerMonth = p.PricePerMonth.Round(2)
	if err := o.d.Catalog.Create(ctx, &p); err != nil {
		return model.Property{}, err
	}
	o.log().WithField("property_id", p.ID).Info("property added")
	return p, nil
}

// SetAvailability switches a property between Available and Not
// Available. Booked is only set by the book workflow.
func (o *Owner) SetAvailability(ctx context.Context, propertyID uint64, status model.AvailabilityStatus) error {
	if status != model.Available && status != model.NotAvailable {
		return ErrInvalidStatus
	}
	if err := o.d.Catalog.SetAvailability(ctx, propertyID, status); err != nil {
		return notFound(err)
	}
	o.d.forget(ctx, propertyID)
	o.log().WithFields(logrus.Fields{"property_id": propertyID, "status": status}).Info("availability changed")
	return nil
}

// DeleteProperty removes a property that is not Booked.
func (o *Owner) DeleteProperty(ctx context.Context, propertyID uint64) error {
	if err := o.d.Catalog.Delete(ctx, propertyID); err != nil {
		return notFound(err)
	}
	o.d.forget(ctx, propertyID)
	o.log().WithField("property_id", propertyID).Info("property deleted")
	return nil
}

// Residents lists the user ids currently residing at a property.
func (o *Owner) Residents(ctx context.Context, propertyID uint64) ([]uint64, error) {
	return o.d.Roster.ListByProperty(ctx, propertyID)
}

// Bookings lists all bookings, optionally only those with status.
func (o *Owner) Bookings(ctx context.Context, status model.BookingStatus) ([]model.BookingSummary, error) {
	if status != "" && !status.Valid() {
		return nil, ErrUnknownFilter
	}
	return o.d.History.ListAll(ctx, status)
}

// SetBookingStatus closes an Active booking as Completed or Cancelled.
func (o *Owner) SetBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	return o.d.Workflows.SetBookingStatus(ctx, bookingID, status)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	return err
}
