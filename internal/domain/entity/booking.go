package entity

import (
	"travel-booking-service/pkg/apperror"
)

// CollectionBookings holds flight bookings
const CollectionBookings = "bookings"

// Passenger is one traveller on a flight booking
type Passenger struct {
	FirstName      string  `json:"firstName" validate:"required,max=100"`
	LastName       string  `json:"lastName" validate:"required,max=100"`
	Type           string  `json:"type" validate:"required,oneof=adult child infant"`
	DateOfBirth    *string `json:"dateOfBirth,omitempty" validate:"omitempty,isodate"`
	PassportNumber *string `json:"passportNumber,omitempty" validate:"omitempty,passport"`
}

// FlightDetails describes the booked itinerary
type FlightDetails struct {
	AirlineCode   string  `json:"airlineCode" validate:"required,airline"`
	FlightNumber  string  `json:"flightNumber" validate:"required,max=10"`
	Origin        string  `json:"origin" validate:"required,iata"`
	Destination   string  `json:"destination" validate:"required,iata,nefield=Origin"`
	DepartureDate string  `json:"departureDate" validate:"required,isodate"`
	ReturnDate    *string `json:"returnDate,omitempty" validate:"omitempty,isodate"`
	CabinClass    string  `json:"cabinClass" validate:"required,oneof=economy premium_economy business first"`
}

// Booking is a flight booking
type Booking struct {
	Meta
	UserID     string        `json:"userId" validate:"required"`
	Email      string        `json:"email" validate:"required,email"`
	Phone      *string       `json:"phone,omitempty" validate:"omitempty,max=20"`
	Flight     FlightDetails `json:"flight"`
	Passengers []Passenger   `json:"passengers" validate:"required,min=1,max=9,dive"`
	TotalPrice float64       `json:"totalPrice" validate:"gt=0"`
	Currency   string        `json:"currency" validate:"required,currency"`
	Notes      *string       `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Lifecycle
}

// BookingFromRecord builds a booking from its store record
func BookingFromRecord(id string, rec Record) (*Booking, error) {
	b := &Booking{}
	if err := decodeEntity(id, rec, b, &b.Meta); err != nil {
		return nil, err
	}
	b.Lifecycle = b.Lifecycle.withDefaults()
	if b.Currency == "" {
		b.Currency = DefaultCurrency
	}
	return b, nil
}

// BookingCodec wires bookings into the generic document service
var BookingCodec = Codec[*Booking]{
	Collection: CollectionBookings,
	FromRecord: BookingFromRecord,
	ToRecord:   func(b *Booking) Record { return b.ToRecord() },
}

func (b *Booking) ToRecord() Record {
	return encodeRecord(b)
}

// Validate checks tag rules plus the return-after-departure constraint
func (b *Booking) Validate() error {
	violations := ValidateStruct(b)
	if b.Flight.ReturnDate != nil {
		if after, ok := dateAfter(b.Flight.DepartureDate, *b.Flight.ReturnDate); ok && after {
			violations = append(violations, apperror.FieldViolation{
				Field:   "flight.returnDate",
				Message: "flight.returnDate must not be before flight.departureDate",
				Code:    "gtefield",
			})
		}
	}
	return validationResult(violations)
}

// WithUpdates returns a copy with partial applied and a fresh updatedAt
func (b *Booking) WithUpdates(partial Record) (*Booking, error) {
	return WithUpdates(b, partial, BookingFromRecord)
}

func (b *Booking) clone() *Booking {
	c, err := BookingFromRecord(b.ID, b.ToRecord())
	if err != nil {
		panic(err)
	}
	return c
}

func (b *Booking) withLifecycle(l Lifecycle, err error) (*Booking, error) {
	if err != nil {
		return nil, err
	}
	c := b.clone()
	c.Lifecycle = l
	c.UpdatedAt = FormatTimestamp(Now())
	return c, nil
}

func (b *Booking) Cancel(reason string) (*Booking, error) {
	return b.withLifecycle(b.Lifecycle.Cancel(reason))
}

func (b *Booking) Confirm() (*Booking, error) {
	return b.withLifecycle(b.Lifecycle.Confirm())
}

func (b *Booking) MarkAsPaid(reference, method string) (*Booking, error) {
	return b.withLifecycle(b.Lifecycle.MarkAsPaid(reference, method))
}

func (b *Booking) MarkPaymentFailed() (*Booking, error) {
	return b.withLifecycle(b.Lifecycle.MarkPaymentFailed())
}

func (b *Booking) Complete() (*Booking, error) {
	return b.withLifecycle(b.Lifecycle.Complete())
}

func (b *Booking) Refund() (*Booking, error) {
	return b.withLifecycle(b.Lifecycle.Refund())
}
