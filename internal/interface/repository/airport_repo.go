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

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;size:3;uniqueIndex"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	Country     string         `gorm:"column:country;size:2"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// GetByCode finds an airport by its IATA code
func (r *GormAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("airportcode = ?", strings.ToUpper(code)).First(&airport)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get airport %s: %w", code, result.Error)
	}

	return &entity.Airport{
		ID:        airport.ID,
		Code:      airport.AirportCode,
		Name:      airport.AirportName,
		CityCode:  airport.CityCode,
		CityName:  airport.CityName,
		Country:   airport.Country,
		GmtTz:     airport.GmtTz,
		TzName:    airport.TzName,
		UpdatedAt: airport.UpdatedAt,
	}, nil
}

// Upsert inserts the airport or refreshes it when the code exists
func (r *GormAirportRepository) Upsert(ctx context.Context, airport *entity.Airport) error {
	row := &Airports{
		AirportCode: strings.ToUpper(airport.Code),
		AirportName: airport.Name,
		CityCode:    airport.CityCode,
		CityName:    airport.CityName,
		Country:     airport.Country,
		GmtTz:       airport.GmtTz,
		TzName:      airport.TzName,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "airportcode"}},
		DoUpdates: clause.AssignmentColumns([]string{"airport_name", "citycode", "cityname", "country", "gmttz", "tzname", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert airport %s: %w", airport.Code, err)
	}
	return nil
}
