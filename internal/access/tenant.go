package access

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/model"
)

// Tenant acts for one registered tenant. Every operation is scoped to
// that user id.
type Tenant struct {
	Browser
	userID uint64
}

func (t *Tenant) Name() string    { return model.RoleTenant }
func (t *Tenant) UserID() uint64 { return t.userID }

// BookInput is what a tenant submits to book a property. With PayNow the
// email and password are re-checked; the payment is Paid only when they
// belong to this tenant.
type BookInput struct {
	PropertyID    uint64
	StartDate     time.Time
	EndDate       time.Time
	PaymentMethod string
	PayNow        bool
	Email         string
	Password      string
}

// Book verifies payment credentials outside the transaction, then runs
// the book workflow.
func (t *Tenant) Book(ctx context.Context, in BookInput) (booking.BookResult, error) {
	verified := false
	if in.PayNow && t.d.Verifier != nil {
		ok, err := t.d.Verifier.Verify(ctx, t.userID, in.Email, in.Password)
		if err != nil {
			t.d.Log.WithError(err).WithFields(logrus.Fields{
				"user_id":     t.userID,
				"property_id": in.PropertyID,
			}).Warn("payment verification failed; payment will be Pending")
		}
		verified = ok && err == nil
	}
	return t.d.Workflows.Book(ctx, booking.BookRequest{
		UserID:        t.userID,
		PropertyID:    in.PropertyID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		PaymentMethod: in.PaymentMethod,
		Verified:      verified,
	})
}

// Cancel cancels one of the tenant's own bookings.
func (t *Tenant) Cancel(ctx context.Context, bookingID uint64) error {
	return t.d.Workflows.Cancel(ctx, bookingID, t.userID)
}

// Bookings lists all of the tenant's bookings, newest first.
func (t *Tenant) Bookings(ctx context.Context) ([]model.BookingSummary, error) {
	return t.d.History.ListByUser(ctx, t.userID)
}

// BookingDetail is one booking with the payments recorded for it.
type BookingDetail struct {
	model.BookingSummary
	Payments []model.Payment `json:"payments"`
}

// Booking returns one of the tenant's own bookings with its payments.
// Another user's booking is reported as booking.ErrNotFound.
func (t *Tenant) Booking(ctx context.Context, bookingID uint64) (BookingDetail, error) {
	list, err := t.d.History.ListByUser(ctx, t.userID)
	if err != nil {
		return BookingDetail{}, err
	}
	for _, b := range list {
		if b.ID != bookingID {
			continue
		}
		d := BookingDetail{BookingSummary: b, Payments: []model.Payment{}}
		if t.d.Payments != nil {
			if d.Payments, err = t.d.Payments.ListByBooking(ctx, bookingID); err != nil {
				return BookingDetail{}, err
			}
		}
		return d, nil
	}
	return BookingDetail{}, booking.ErrNotFound
}

// PreviousBookings lists the tenant's Cancelled and Completed bookings.
func (t *Tenant) PreviousBookings(ctx context.Context) ([]model.BookingSummary, error) {
	return t.d.History.ListPreviousByUser(ctx, t.userID)
}
