package booking

import (
	"context"

	"github.com/iliyamo/rims/internal/model"
)

// Registry is the property availability view of one transaction.
type Registry struct {
	props PropertyStore
}

// NewRegistry binds a Registry to tx.
func NewRegistry(tx Tx) Registry { return Registry{props: tx.Properties()} }

// GetAvailability returns the property's status and price.
func (r Registry) GetAvailability(ctx context.Context, propertyID uint64) (model.Availability, error) {
	return r.props.Availability(ctx, propertyID)
}

// LockAvailability is GetAvailability with a row lock held until the
// transaction ends, so no concurrent workflow can book the same property
// between the check and MarkBooked.
func (r Registry) LockAvailability(ctx context.Context, propertyID uint64) (model.Availability, error) {
	return r.props.LockAvailability(ctx, propertyID)
}

// MarkBooked moves an Available property to Booked. If the property is no
// longer Available the update matches nothing and ErrPropertyUnavailable
// is returned.
func (r Registry) MarkBooked(ctx context.Context, propertyID uint64) error {
	n, err := r.props.SetStatus(ctx, propertyID, model.Booked, model.Available)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPropertyUnavailable
	}
	return nil
}

// MarkAvailable moves the property back to Available. A property that
// was deleted in the meantime matches no row, which is not an error.
func (r Registry) MarkAvailable(ctx context.Context, propertyID uint64) error {
	_, err := r.props.SetStatus(ctx, propertyID, model.Available, "")
	return err
}
