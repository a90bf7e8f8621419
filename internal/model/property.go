package model

import "github.com/shopspring/decimal"

// AvailabilityStatus is the bookable state of a property as stored in
// property.availability_status.
type AvailabilityStatus string

const (
	Available    AvailabilityStatus = "Available"
	Booked       AvailabilityStatus = "Booked"
	NotAvailable AvailabilityStatus = "Not Available"
)

// Valid reports whether s is one of the known availability states.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case Available, Booked, NotAvailable:
		return true
	}
	return false
}

// PropertyType values accepted for property.type. Only PG listings carry
// a sharing count.
const (
	TypePG        = "PG"
	TypeApartment = "Apartment"
	TypeHouse     = "House"
)

// Property represents a rentable listing in the `property` table.
//
// Fields:
//
//	ID                 – primary key identifier.
//	Name               – display name.
//	Type               – PG, Apartment or House.
//	Location           – free-form address or area.
//	PricePerMonth      – monthly rent, two decimal places.
//	AvailabilityStatus – Available, Booked or Not Available.
//	Sharing            – number of occupants sharing a PG room (nil otherwise).
type Property struct {
	ID                 uint64             `json:"property_id"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	Location           string             `json:"location"`
	PricePerMonth      decimal.Decimal    `json:"price_per_month"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	Sharing            *int               `json:"sharing,omitempty"`
}

// Availability is the subset of a property the booking engine reads
// before reserving it.
type Availability struct {
	PropertyID uint64             `json:"property_id"`
	Status     AvailabilityStatus `json:"availability_status"`
	Price      decimal.Decimal    `json:"price_per_month"`
}
