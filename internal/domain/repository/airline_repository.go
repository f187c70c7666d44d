package repository

import (
	"context"

	"travel-booking-service/internal/domain/entity"
)

// AirlineRepository defines the interface for airline reference lookups
type AirlineRepository interface {
	// GetByCode returns nil, nil when the code is unknown
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
	Upsert(ctx context.Context, airline *entity.Airline) error
}
