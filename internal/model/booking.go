package model

import "time"

// BookingStatus is the lifecycle state stored in booking.status.
type BookingStatus string

const (
	BookingActive    BookingStatus = "Active"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingActive, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking records a tenant's reservation of a property for a date range.
// Rows are never deleted; they move from Active to Cancelled or Completed.
//
// Fields:
//
//	ID         – primary key identifier.
//	UserID     – tenant who made the booking.
//	PropertyID – property being rented. The property may since have been
//	             deleted by an owner.
//	StartDate  – first day of the stay (date only, UTC midnight).
//	EndDate    – last day of the stay, never before StartDate.
//	Status     – Active, Cancelled or Completed.
type Booking struct {
	ID         uint64        `json:"booking_id"`
	UserID     uint64        `json:"user_id"`
	PropertyID uint64        `json:"property_id"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	Status     BookingStatus `json:"status"`
}

// BookingSummary is a booking joined with its property name for listings.
// PropertyName is empty when the property no longer exists.
type BookingSummary struct {
	Booking
	PropertyName string `json:"property_name"`
	UserName     string `json:"user_name,omitempty"`
}

// Resident links a user to the property they occupy under an Active
// booking. It mirrors the `resident` table whose key is (user_id, property_id).
type Resident struct {
	UserID     uint64 `json:"user_id"`
	PropertyID uint64 `json:"property_id"`
}
