package repository

import (
	"context"

	"travel-booking-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference lookups
type AirportRepository interface {
	// GetByCode returns nil, nil when the code is unknown
	GetByCode(ctx context.Context, code string) (*entity.Airport, error)
	Upsert(ctx context.Context, airport *entity.Airport) error
}
