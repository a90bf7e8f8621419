// Package queue carries committed booking transitions over RabbitMQ: a
// publisher hooked into the coordinator and a consumer that keeps an
// append-only booking log.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/rims/internal/booking"
)

// BookingEvent is the JSON body of every message. It holds enough for a
// consumer to log or notify without querying the database.
type BookingEvent struct {
	EventID       string `json:"event_id"`
	Kind          string `json:"kind"`
	BookingID     uint64 `json:"booking_id"`
	UserID        uint64 `json:"user_id"`
	PropertyID    uint64 `json:"property_id"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	Amount        string `json:"amount,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

const dateLayout = "2006-01-02"

// NewBookingEvent converts an engine event into its wire form.
func NewBookingEvent(id string, ev booking.Event) BookingEvent {
	out := BookingEvent{
		EventID:       id,
		Kind:          string(ev.Kind),
		BookingID:     ev.BookingID,
		UserID:        ev.UserID,
		PropertyID:    ev.PropertyID,
		PaymentMethod: ev.PaymentMethod,
		PaymentStatus: string(ev.PaymentStatus),
		OccurredAt:    ev.At.UTC().Format(time.RFC3339),
	}
	if !ev.StartDate.IsZero() {
		out.StartDate = ev.StartDate.Format(dateLayout)
		out.EndDate = ev.EndDate.Format(dateLayout)
	}
	if ev.Kind == booking.EventConfirmed {
		out.Amount = ev.Amount.StringFixed(2)
	}
	return out
}

// LogLine renders the event as one line of logs/booking.log.
func (e BookingEvent) LogLine() string {
	switch booking.EventKind(e.Kind) {
	case booking.EventConfirmed:
		return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | user_id=%d | property_id=%d | stay=%s..%s | amount=%s | method=%s | payment=%s\n",
			e.OccurredAt, e.BookingID, e.UserID, e.PropertyID, e.StartDate, e.EndDate, e.Amount, e.PaymentMethod, e.PaymentStatus)
	case booking.EventCancelled:
		return fmt.Sprintf("[%s] Booking cancelled | booking_id=%d | user_id=%d | property_id=%d\n",
			e.OccurredAt, e.BookingID, e.UserID, e.PropertyID)
	case booking.EventCompleted:
		return fmt.Sprintf("[%s] Booking completed | booking_id=%d | user_id=%d | property_id=%d\n",
			e.OccurredAt, e.BookingID, e.UserID, e.PropertyID)
	}
	return fmt.Sprintf("[%s] Booking event %s | booking_id=%d\n", e.OccurredAt, e.Kind, e.BookingID)
}
