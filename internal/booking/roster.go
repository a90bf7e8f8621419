package booking

import (
	"context"

	"github.com/iliyamo/rims/internal/model"
)

// Roster tracks who occupies which property. It does no checking of its
// own; the Coordinator calls it in lockstep with booking transitions.
type Roster struct {
	residents ResidentStore
}

func NewRoster(tx Tx) Roster { return Roster{residents: tx.Residents()} }

func (r Roster) AddResident(ctx context.Context, userID, propertyID uint64) error {
	return r.residents.Add(ctx, model.Resident{UserID: userID, PropertyID: propertyID})
}

func (r Roster) RemoveResident(ctx context.Context, userID, propertyID uint64) error {
	return r.residents.Remove(ctx, model.Resident{UserID: userID, PropertyID: propertyID})
}
