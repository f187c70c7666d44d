package dto

import (
	"strings"

	"travel-booking-service/internal/domain/entity"
)

// OfferRequest is the create body and, partially, the update body
type OfferRequest struct {
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
	Active      *bool    `json:"active,omitempty"`
}

func (r *OfferRequest) Defaults() {
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.Currency = currencyOrDefault(r.Currency)
	if r.ValidFrom == "" {
		r.ValidFrom = entity.FormatTimestamp(entity.Now())
	}
	if r.Active == nil {
		active := true
		r.Active = &active
	}
}

func (r *OfferRequest) ToEntity() *entity.Offer {
	return &entity.Offer{
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Price:       r.Price,
		Currency:    r.Currency,
		ValidFrom:   r.ValidFrom,
		ValidUntil:  r.ValidUntil,
		Priority:    r.Priority,
		Active:      r.Active == nil || *r.Active,
	}
}

// CategoryQuery filters offers and deals by category with pagination
type CategoryQuery struct {
	PageQuery
	Category string `form:"category" validate:"omitempty,oneof=flight hotel university package"`
}

// DealRequest is the body of POST /api/deals
type DealRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category        string  `json:"category" validate:"required,oneof=flight hotel university package"`
	Origin          *string `json:"origin,omitempty" validate:"omitempty,iata"`
	Destination     *string `json:"destination,omitempty" validate:"omitempty,iata"`
	OriginalPrice   float64 `json:"originalPrice" validate:"gt=0"`
	DiscountedPrice float64 `json:"discountedPrice" validate:"gt=0,ltfield=OriginalPrice"`
	Currency        string  `json:"currency" validate:"required,currency"`
	ExpiresAt       string  `json:"expiresAt" validate:"required,timestamp"`
}

func (r *DealRequest) Defaults() {
	r.Currency = currencyOrDefault(r.Currency)
	r.Origin = upperPtr(r.Origin)
	r.Destination = upperPtr(r.Destination)
}

func (r *DealRequest) ToEntity() *entity.Deal {
	return &entity.Deal{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Origin:          r.Origin,
		Destination:     r.Destination,
		OriginalPrice:   r.OriginalPrice,
		DiscountedPrice: r.DiscountedPrice,
		Currency:        r.Currency,
		ExpiresAt:       r.ExpiresAt,
		Active:          true,
	}
}
