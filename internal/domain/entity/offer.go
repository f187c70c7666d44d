package entity

import (
	"math"
	"time"

	"travel-booking-service/pkg/apperror"
)

const (
	CollectionOffers = "offers"
	CollectionDeals  = "deals"
)

// Offer is a marketing offer shown on the landing pages
type Offer struct {
	Meta
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,slug,max=120"`
	Description string   `json:"description" validate:"required,max=5000"`
	Category    string   `json:"category" validate:"required,oneof=flight hotel university package"`
	ImageURL    *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Currency    string   `json:"currency" validate:"required,currency"`
	ValidFrom   string   `json:"validFrom" validate:"required,timestamp"`
	ValidUntil  string   `json:"validUntil" validate:"required,timestamp"`
	Priority    int      `json:"priority" validate:"gte=0,lte=100"`
	Active      bool     `json:"active"`
}

func OfferFromRecord(id string, rec Record) (*Offer, error) {
	o := &Offer{}
	if err := decodeEntity(id, rec, o, &o.Meta); err != nil {
		return nil, err
	}
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
	if o.ValidFrom != "" {
		o.ValidFrom = NormalizeTimestamp(o.ValidFrom)
	}
	if o.ValidUntil != "" {
		o.ValidUntil = NormalizeTimestamp(o.ValidUntil)
	}
	return o, nil
}

var OfferCodec = Codec[*Offer]{
	Collection: CollectionOffers,
	FromRecord: OfferFromRecord,
	ToRecord:   func(o *Offer) Record { return o.ToRecord() },
}

func (o *Offer) ToRecord() Record {
	return encodeRecord(o)
}

func (o *Offer) Validate() error {
	violations := ValidateStruct(o)
	if o.ValidFrom != "" && o.ValidUntil != "" && o.ValidUntil <= o.ValidFrom {
		violations = append(violations, apperror.FieldViolation{
			Field:   "validUntil",
			Message: "validUntil must be after validFrom",
			Code:    "gtfield",
		})
	}
	return validationResult(violations)
}

func (o *Offer) WithUpdates(partial Record) (*Offer, error) {
	return WithUpdates(o, partial, OfferFromRecord)
}

// IsValidAt reports whether the offer is active and t falls in [validFrom, validUntil)
func (o *Offer) IsValidAt(t time.Time) bool {
	if !o.Active {
		return false
	}
	now := FormatTimestamp(t)
	return now >= o.ValidFrom && now < o.ValidUntil
}

func (o *Offer) Deactivate() (*Offer, error) {
	if !o.Active {
		return nil, apperror.Precondition("offer is already inactive")
	}
	return o.WithUpdates(Record{"active": false})
}

// Deal is a discounted fare or package
type Deal struct {
	Meta
	Title           string  `json:"title" validate:"required,max=200"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category        string  `json:"category" validate:"required,oneof=flight hotel university package"`
	Origin          *string `json:"origin,omitempty" validate:"omitempty,iata"`
	Destination     *string `json:"destination,omitempty" validate:"omitempty,iata"`
	OriginalPrice   float64 `json:"originalPrice" validate:"gt=0"`
	DiscountedPrice float64 `json:"discountedPrice" validate:"gt=0,ltfield=OriginalPrice"`
	Currency        string  `json:"currency" validate:"required,currency"`
	ExpiresAt       string  `json:"expiresAt" validate:"required,timestamp"`
	Active          bool    `json:"active"`
}

func DealFromRecord(id string, rec Record) (*Deal, error) {
	d := &Deal{}
	if err := decodeEntity(id, rec, d, &d.Meta); err != nil {
		return nil, err
	}
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if d.ExpiresAt != "" {
		d.ExpiresAt = NormalizeTimestamp(d.ExpiresAt)
	}
	return d, nil
}

var DealCodec = Codec[*Deal]{
	Collection: CollectionDeals,
	FromRecord: DealFromRecord,
	ToRecord:   func(d *Deal) Record { return d.ToRecord() },
}

func (d *Deal) ToRecord() Record {
	return encodeRecord(d)
}

func (d *Deal) Validate() error {
	return validationResult(ValidateStruct(d))
}

func (d *Deal) WithUpdates(partial Record) (*Deal, error) {
	return WithUpdates(d, partial, DealFromRecord)
}

// DiscountPercent is the saving rounded to a whole percent
func (d *Deal) DiscountPercent() int {
	if d.OriginalPrice <= 0 || d.DiscountedPrice >= d.OriginalPrice {
		return 0
	}
	return int(math.Round((d.OriginalPrice - d.DiscountedPrice) / d.OriginalPrice * 100))
}

func (d *Deal) IsExpiredAt(t time.Time) bool {
	return FormatTimestamp(t) >= d.ExpiresAt
}

func (d *Deal) Deactivate() (*Deal, error) {
	if !d.Active {
		return nil, apperror.Precondition("deal is already inactive")
	}
	return d.WithUpdates(Record{"active": false})
}
