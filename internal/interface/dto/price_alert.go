package dto

import (
	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/usecase"
)

// PriceAlertRequest is the body of POST /api/price-alerts
type PriceAlertRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Origin        string  `json:"origin" validate:"required,iata"`
	Destination   string  `json:"destination" validate:"required,iata,nefield=Origin"`
	DepartureDate *string `json:"departureDate,omitempty" validate:"omitempty,isodate"`
	TargetPrice   float64 `json:"targetPrice" validate:"gt=0"`
	Currency      string  `json:"currency" validate:"required,currency"`
	ExpiresAt     *string `json:"expiresAt,omitempty" validate:"omitempty,timestamp"`
}

func (r *PriceAlertRequest) Defaults() {
	r.Origin = upper(r.Origin)
	r.Destination = upper(r.Destination)
	r.Currency = currencyOrDefault(r.Currency)
}

func (r *PriceAlertRequest) ToEntity(userID string) *entity.PriceAlert {
	return &entity.PriceAlert{
		UserID:        userID,
		Email:         r.Email,
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: r.DepartureDate,
		TargetPrice:   r.TargetPrice,
		Currency:      r.Currency,
		ExpiresAt:     r.ExpiresAt,
	}
}

// PriceObservationRequest reports a fare seen for a route
type PriceObservationRequest struct {
	Origin        string  `json:"origin" validate:"required,iata"`
	Destination   string  `json:"destination" validate:"required,iata,nefield=Origin"`
	Price         float64 `json:"price" validate:"gt=0"`
	Currency      string  `json:"currency" validate:"required,currency"`
	DepartureDate *string `json:"departureDate,omitempty" validate:"omitempty,isodate"`
}

func (r *PriceObservationRequest) Defaults() {
	r.Origin = upper(r.Origin)
	r.Destination = upper(r.Destination)
	r.Currency = currencyOrDefault(r.Currency)
}

func (r *PriceObservationRequest) ToObservation() usecase.PriceObservation {
	obs := usecase.PriceObservation{
		Origin:      r.Origin,
		Destination: r.Destination,
		Price:       r.Price,
		Currency:    r.Currency,
	}
	if r.DepartureDate != nil {
		obs.DepartureDate = *r.DepartureDate
	}
	return obs
}
