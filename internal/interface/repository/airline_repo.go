package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;size:3;uniqueIndex"`
	Name      string         `gorm:"column:name"`
	Country   string         `gorm:"column:country;size:2"`
	Active    bool           `gorm:"column:active"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

// GetByCode finds an airline by code
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&airline)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get airline %s: %w", code, result.Error)
	}

	return &entity.Airline{
		ID:        airline.ID,
		Code:      airline.Code,
		Name:      airline.Name,
		Country:   airline.Country,
		Active:    airline.Active,
		UpdatedAt: airline.UpdatedAt,
	}, nil
}

// Upsert inserts the airline or refreshes it when the code exists
func (r *GormAirlineRepository) Upsert(ctx context.Context, airline *entity.Airline) error {
	row := &Airlines{
		Code:    strings.ToUpper(airline.Code),
		Name:    airline.Name,
		Country: airline.Country,
		Active:  airline.Active,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "country", "active", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert airline %s: %w", airline.Code, err)
	}
	return nil
}

// ReferenceModels lists the catalog tables for AutoMigrate
func ReferenceModels() []interface{} {
	return []interface{}{&Airlines{}, &Airports{}}
}
