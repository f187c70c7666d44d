package entity

import (
	"travel-booking-service/pkg/apperror"
)

// CollectionHotelBookings holds hotel bookings
const CollectionHotelBookings = "hotelBookings"

// HotelBooking is a hotel stay reservation
type HotelBooking struct {
	Meta
	UserID     string  `json:"userId" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	HotelID    string  `json:"hotelId" validate:"required"`
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
	Lifecycle
}

func HotelBookingFromRecord(id string, rec Record) (*HotelBooking, error) {
	h := &HotelBooking{}
	if err := decodeEntity(id, rec, h, &h.Meta); err != nil {
		return nil, err
	}
	h.Lifecycle = h.Lifecycle.withDefaults()
	if h.Currency == "" {
		h.Currency = DefaultCurrency
	}
	return h, nil
}

var HotelBookingCodec = Codec[*HotelBooking]{
	Collection: CollectionHotelBookings,
	FromRecord: HotelBookingFromRecord,
	ToRecord:   func(h *HotelBooking) Record { return h.ToRecord() },
}

func (h *HotelBooking) ToRecord() Record {
	return encodeRecord(h)
}

func (h *HotelBooking) Validate() error {
	violations := ValidateStruct(h)
	if after, ok := dateAfter(h.CheckOut, h.CheckIn); ok && !after {
		violations = append(violations, apperror.FieldViolation{
			Field:   "checkOut",
			Message: "checkOut must be after checkIn",
			Code:    "gtfield",
		})
	}
	return validationResult(violations)
}

func (h *HotelBooking) WithUpdates(partial Record) (*HotelBooking, error) {
	return WithUpdates(h, partial, HotelBookingFromRecord)
}

func (h *HotelBooking) withLifecycle(l Lifecycle, err error) (*HotelBooking, error) {
	if err != nil {
		return nil, err
	}
	c, err := HotelBookingFromRecord(h.ID, h.ToRecord())
	if err != nil {
		return nil, err
	}
	c.Lifecycle = l
	c.UpdatedAt = FormatTimestamp(Now())
	return c, nil
}

func (h *HotelBooking) Cancel(reason string) (*HotelBooking, error) {
	return h.withLifecycle(h.Lifecycle.Cancel(reason))
}

func (h *HotelBooking) Confirm() (*HotelBooking, error) {
	return h.withLifecycle(h.Lifecycle.Confirm())
}

func (h *HotelBooking) MarkAsPaid(reference, method string) (*HotelBooking, error) {
	return h.withLifecycle(h.Lifecycle.MarkAsPaid(reference, method))
}

func (h *HotelBooking) Complete() (*HotelBooking, error) {
	return h.withLifecycle(h.Lifecycle.Complete())
}

func (h *HotelBooking) Refund() (*HotelBooking, error) {
	return h.withLifecycle(h.Lifecycle.Refund())
}

// Nights is the length of the stay
func (h *HotelBooking) Nights() int {
	in, err1 := ParseTimestamp(h.CheckIn)
	out, err2 := ParseTimestamp(h.CheckOut)
	if err1 != nil || err2 != nil || !out.After(in) {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}
