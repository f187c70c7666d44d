package entity

import (
	"time"
)

// Airport is an airport from the reference catalog, with its timezone
type Airport struct {
	ID        uint      `json:"-"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CityCode  string    `json:"cityCode,omitempty"`
	CityName  string    `json:"cityName"`
	Country   string    `json:"country,omitempty"`
	GmtTz     string    `json:"gmtOffset,omitempty"`
	TzName    string    `json:"timezone,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Location resolves the airport timezone, falling back to UTC
func (a *Airport) Location() *time.Location {
	if a.TzName == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TzName)
	if err != nil {
		return time.UTC
	}
	return loc
}
