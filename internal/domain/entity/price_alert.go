package entity

import (
	"time"

	"travel-booking-service/pkg/apperror"
)

const CollectionPriceAlerts = "priceAlerts"

// Price alert status values
const (
	AlertStatusActive    = "active"
	AlertStatusTriggered = "triggered"
	AlertStatusPaused    = "paused"
	AlertStatusExpired   = "expired"
)

// PriceAlert watches a route and fires when the observed price drops to the target
type PriceAlert struct {
	Meta
	UserID        string   `json:"userId" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	Origin        string   `json:"origin" validate:"required,iata"`
	Destination   string   `json:"destination" validate:"required,iata,nefield=Origin"`
	DepartureDate *string  `json:"departureDate,omitempty" validate:"omitempty,isodate"`
	TargetPrice   float64  `json:"targetPrice" validate:"gt=0"`
	Currency      string   `json:"currency" validate:"required,currency"`
	Status        string   `json:"status" validate:"required,oneof=active triggered paused expired"`
	LastPrice     *float64 `json:"lastPrice,omitempty"`
	LowestPrice   *float64 `json:"lowestPrice,omitempty"`
	LastCheckedAt *string  `json:"lastCheckedAt,omitempty"`
	TriggeredAt   *string  `json:"triggeredAt,omitempty"`
	ExpiresAt     *string  `json:"expiresAt,omitempty" validate:"omitempty,timestamp"`
}

func PriceAlertFromRecord(id string, rec Record) (*PriceAlert, error) {
	a := &PriceAlert{}
	if err := decodeEntity(id, rec, a, &a.Meta); err != nil {
		return nil, err
	}
	if a.Status == "" {
		a.Status = AlertStatusActive
	}
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	return a, nil
}

var PriceAlertCodec = Codec[*PriceAlert]{
	Collection: CollectionPriceAlerts,
	FromRecord: PriceAlertFromRecord,
	ToRecord:   func(a *PriceAlert) Record { return a.ToRecord() },
}

func (a *PriceAlert) ToRecord() Record {
	return encodeRecord(a)
}

func (a *PriceAlert) Validate() error {
	return validationResult(ValidateStruct(a))
}

func (a *PriceAlert) WithUpdates(partial Record) (*PriceAlert, error) {
	return WithUpdates(a, partial, PriceAlertFromRecord)
}

func (a *PriceAlert) Pause() (*PriceAlert, error) {
	if a.Status != AlertStatusActive {
		return nil, apperror.Precondition("cannot pause a price alert with status %s", a.Status)
	}
	return a.WithUpdates(Record{"status": AlertStatusPaused})
}

func (a *PriceAlert) Resume() (*PriceAlert, error) {
	if a.Status != AlertStatusPaused {
		return nil, apperror.Precondition("cannot resume a price alert with status %s", a.Status)
	}
	return a.WithUpdates(Record{"status": AlertStatusActive})
}

// RecordPrice stores an observed price. The alert triggers when price <= targetPrice;
// the returned bool reports whether this observation triggered it.
func (a *PriceAlert) RecordPrice(price float64, at time.Time) (*PriceAlert, bool, error) {
	if a.Status != AlertStatusActive {
		return nil, false, apperror.Precondition("cannot record a price on a price alert with status %s", a.Status)
	}
	if price <= 0 {
		return nil, false, apperror.Precondition("observed price must be positive")
	}
	stamp := FormatTimestamp(at)
	partial := Record{"lastPrice": price, "lastCheckedAt": stamp}
	if a.LowestPrice == nil || price < *a.LowestPrice {
		partial["lowestPrice"] = price
	}
	triggered := price <= a.TargetPrice
	if triggered {
		partial["status"] = AlertStatusTriggered
		partial["triggeredAt"] = stamp
	}
	next, err := a.WithUpdates(partial)
	if err != nil {
		return nil, false, err
	}
	return next, triggered, nil
}

func (a *PriceAlert) Expire() (*PriceAlert, error) {
	if a.Status == AlertStatusExpired {
		return nil, apperror.Precondition("price alert is already expired")
	}
	return a.WithUpdates(Record{"status": AlertStatusExpired})
}

// IsDueForExpiry reports whether the alert's expiry or departure date has passed at now
func (a *PriceAlert) IsDueForExpiry(now time.Time) bool {
	if a.Status == AlertStatusExpired {
		return false
	}
	if a.ExpiresAt != nil {
		if t, err := ParseTimestamp(*a.ExpiresAt); err == nil && !now.Before(t) {
			return true
		}
	}
	if a.DepartureDate != nil {
		if after, ok := dateAfter(now.UTC().Format(DateLayout), *a.DepartureDate); ok && after {
			return true
		}
	}
	return false
}
