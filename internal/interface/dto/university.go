package dto

import (
	"strings"

	"travel-booking-service/internal/domain/entity"
)

// UniversityRequest is the create body and, partially, the update body
type UniversityRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,slug,max=120"`
	Country     string   `json:"country" validate:"required,country"`
	City        string   `json:"city" validate:"required,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Website     *string  `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL     *string  `json:"logoUrl,omitempty" validate:"omitempty,url"`
	Ranking     *int     `json:"ranking,omitempty" validate:"omitempty,gte=1"`
	TuitionFrom *float64 `json:"tuitionFrom,omitempty" validate:"omitempty,gte=0"`
	Currency    string   `json:"currency" validate:"required,currency"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
	Featured    bool     `json:"featured"`
}

func (r *UniversityRequest) Defaults() {
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.Country = upper(r.Country)
	r.Currency = currencyOrDefault(r.Currency)
}

func (r *UniversityRequest) ToEntity() *entity.University {
	return &entity.University{
		Name:        r.Name,
		Slug:        r.Slug,
		Country:     r.Country,
		City:        r.City,
		Description: r.Description,
		Website:     r.Website,
		LogoURL:     r.LogoURL,
		Ranking:     r.Ranking,
		TuitionFrom: r.TuitionFrom,
		Currency:    r.Currency,
		Tags:        r.Tags,
		Featured:    r.Featured,
	}
}

// UniversityListQuery filters GET /api/universities
type UniversityListQuery struct {
	PageQuery
	Country  string `form:"country" validate:"omitempty,country"`
	Featured *bool  `form:"featured"`
}

func (q *UniversityListQuery) Defaults() {
	q.PageQuery.Defaults()
	q.Country = upper(q.Country)
}

// ProgramRequest is the body of POST /api/universities/:id/programs
type ProgramRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	Degree         string   `json:"degree" validate:"required,oneof=bachelor master phd diploma"`
	Field          string   `json:"field" validate:"required,max=100"`
	DurationMonths int      `json:"durationMonths" validate:"gte=1,lte=120"`
	Tuition        *float64 `json:"tuition,omitempty" validate:"omitempty,gte=0"`
	Currency       string   `json:"currency" validate:"required,currency"`
	Language       string   `json:"language" validate:"omitempty,max=40"`
	IntakeMonths   []int    `json:"intakeMonths,omitempty" validate:"omitempty,max=12,dive,gte=1,lte=12"`
	Deadline       *string  `json:"applicationDeadline,omitempty" validate:"omitempty,isodate"`
}

func (r *ProgramRequest) Defaults() {
	r.Currency = currencyOrDefault(r.Currency)
	r.Degree = strings.ToLower(strings.TrimSpace(r.Degree))
}

func (r *ProgramRequest) ToEntity() *entity.Program {
	return &entity.Program{
		Name:           r.Name,
		Degree:         r.Degree,
		Field:          r.Field,
		DurationMonths: r.DurationMonths,
		Tuition:        r.Tuition,
		Currency:       r.Currency,
		Language:       r.Language,
		IntakeMonths:   r.IntakeMonths,
		Deadline:       r.Deadline,
	}
}

// ProgramListQuery filters a university's programs by degree
type ProgramListQuery struct {
	Degree string `form:"degree" validate:"omitempty,oneof=bachelor master phd diploma"`
}
