package dto

import (
	"travel-booking-service/internal/domain/entity"
)

// CreateBookingRequest is the body of POST /api/bookings
type CreateBookingRequest struct {
	Email      string               `json:"email" validate:"required,email"`
	Phone      *string              `json:"phone,omitempty" validate:"omitempty,max=20"`
	Flight     entity.FlightDetails `json:"flight"`
	Passengers []entity.Passenger   `json:"passengers" validate:"required,min=1,max=9,dive"`
	TotalPrice float64              `json:"totalPrice" validate:"gt=0"`
	Currency   string               `json:"currency" validate:"required,currency"`
	Notes      *string              `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateBookingRequest) Defaults() {
	r.Currency = currencyOrDefault(r.Currency)
	r.Flight.AirlineCode = upper(r.Flight.AirlineCode)
	r.Flight.Origin = upper(r.Flight.Origin)
	r.Flight.Destination = upper(r.Flight.Destination)
	for i := range r.Passengers {
		r.Passengers[i].PassportNumber = upperPtr(r.Passengers[i].PassportNumber)
	}
}

// ToEntity builds a pending booking owned by userID
func (r *CreateBookingRequest) ToEntity(userID string) *entity.Booking {
	return &entity.Booking{
		UserID:     userID,
		Email:      r.Email,
		Phone:      r.Phone,
		Flight:     r.Flight,
		Passengers: r.Passengers,
		TotalPrice: r.TotalPrice,
		Currency:   r.Currency,
		Notes:      r.Notes,
	}
}

// BookingListQuery filters GET /api/bookings. UserID, From and To are honoured for admins only.
type BookingListQuery struct {
	PageQuery
	Status string `form:"status" validate:"omitempty,oneof=pending confirmed cancelled completed refunded"`
	UserID string `form:"userId" validate:"omitempty,max=128"`
	From   string `form:"from" validate:"omitempty,isodate"`
	To     string `form:"to" validate:"omitempty,isodate"`
}

// BookingStreamQuery narrows the booking stream to one status
type BookingStreamQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=pending confirmed cancelled completed refunded"`
}

// CancelRequest is the optional body of a cancel call
type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// PaymentRequest records a successful payment
type PaymentRequest struct {
	TransactionReference string `json:"transactionReference" validate:"required,max=100"`
	PaymentMethod        string `json:"paymentMethod" validate:"required,oneof=card paypal bank_transfer wallet"`
}

// CreateHotelBookingRequest is the body of POST /api/hotel-bookings
type CreateHotelBookingRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	HotelID    string  `json:"hotelId" validate:"required,max=128"`
	HotelName  string  `json:"hotelName" validate:"required,max=200"`
	City       string  `json:"city" validate:"required,max=100"`
	Country    *string `json:"country,omitempty" validate:"omitempty,country"`
	CheckIn    string  `json:"checkIn" validate:"required,isodate"`
	CheckOut   string  `json:"checkOut" validate:"required,isodate"`
	Rooms      int     `json:"rooms" validate:"gte=1,lte=10"`
	Guests     int     `json:"guests" validate:"gte=1,lte=30"`
	RoomType   *string `json:"roomType,omitempty" validate:"omitempty,max=100"`
	TotalPrice float64 `json:"totalPrice" validate:"gt=0"`
	Currency   string  `json:"currency" validate:"required,currency"`
}

func (r *CreateHotelBookingRequest) Defaults() {
	r.Currency = currencyOrDefault(r.Currency)
	r.Country = upperPtr(r.Country)
	if r.Rooms == 0 {
		r.Rooms = 1
	}
	if r.Guests == 0 {
		r.Guests = 1
	}
}

func (r *CreateHotelBookingRequest) ToEntity(userID string) *entity.HotelBooking {
	return &entity.HotelBooking{
		UserID:     userID,
		Email:      r.Email,
		HotelID:    r.HotelID,
		HotelName:  r.HotelName,
		City:       r.City,
		Country:    r.Country,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		Rooms:      r.Rooms,
		Guests:     r.Guests,
		RoomType:   r.RoomType,
		TotalPrice: r.TotalPrice,
		Currency:   r.Currency,
	}
}
