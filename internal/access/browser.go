package access

import (
	"context"

	"github.com/iliyamo/rims/internal/model"
)

// Browser is the anonymous, read-only handle.
type Browser struct {
	d Deps
}

func (b *Browser) Name() string { return "browser" }

// AvailableProperties lists properties that can be booked now.
func (b *Browser) AvailableProperties(ctx context.Context) ([]model.Property, error) {
	return b.d.Catalog.ListAvailable(ctx)
}

// Availability reads one property's status and price.
func (b *Browser) Availability(ctx context.Context, propertyID uint64) (model.Availability, error) {
	return b.d.Availability.GetAvailability(ctx, propertyID)
}
