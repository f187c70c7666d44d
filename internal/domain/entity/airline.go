package entity

import (
	"time"
)

// Airline is a carrier from the reference catalog
type Airline struct {
	ID        uint      `json:"-"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updatedAt"`
}
