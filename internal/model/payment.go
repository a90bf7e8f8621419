package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome stored in payment.status.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// DefaultPaymentMethod is used when the tenant does not name one.
const DefaultPaymentMethod = "Cash"

// Payment is an append-only record of the amount charged for a booking.
// Cancelling the booking leaves its payment untouched.
type Payment struct {
	ID        uint64          `json:"payment_id"`
	BookingID uint64          `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    PaymentStatus   `json:"status"`
	Date      time.Time       `json:"date"`
}
