package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rims/internal/model"
)

var errNoGeneratedID = errors.New("store did not report a generated id")

// Recorder persists the payment outcome of a booking.
type Recorder struct {
	payments PaymentStore
	clock    Clock
}

func NewRecorder(tx Tx, clock Clock) Recorder {
	return Recorder{payments: tx.Payments(), clock: clock}
}

// PaymentStatusFor maps the verification result to the stored status.
func PaymentStatusFor(verified bool) model.PaymentStatus {
	if verified {
		return model.PaymentPaid
	}
	return model.PaymentPending
}

// RoundAmount rounds to cents, half away from zero.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// RecordPayment stores one payment row for bookingID and returns its
// status: Paid when the payer was verified, Pending otherwise.
func (r Recorder) RecordPayment(ctx context.Context, bookingID uint64, amount decimal.Decimal, method string, verified bool) (model.Payment, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		method = model.DefaultPaymentMethod
	}
	p := model.Payment{
		BookingID: bookingID,
		Amount:    RoundAmount(amount),
		Method:    method,
		Status:    PaymentStatusFor(verified),
		Date:      Today(r.clock),
	}
	if err := r.payments.Insert(ctx, &p); err != nil {
		return model.Payment{}, err
	}
	return p, nil
}
