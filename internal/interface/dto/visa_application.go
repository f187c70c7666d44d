package dto

import (
	"travel-booking-service/internal/domain/entity"
)

// VisaApplicationRequest is the create body and, partially, the update body
type VisaApplicationRequest struct {
	Email              string  `json:"email" validate:"required,email"`
	FullName           string  `json:"fullName" validate:"required,max=200"`
	Nationality        string  `json:"nationality" validate:"required,country"`
	DestinationCountry string  `json:"destinationCountry" validate:"required,country"`
	VisaType           string  `json:"visaType" validate:"required,oneof=tourist student business work transit"`
	PassportNumber     string  `json:"passportNumber" validate:"required,passport"`
	TravelDate         string  `json:"travelDate" validate:"required,isodate"`
	UniversityID       *string `json:"universityId,omitempty" validate:"omitempty,max=128"`
	ProgramID          *string `json:"programId,omitempty" validate:"omitempty,max=128"`
}

func (r *VisaApplicationRequest) Defaults() {
	r.Nationality = upper(r.Nationality)
	r.DestinationCountry = upper(r.DestinationCountry)
	r.PassportNumber = upper(r.PassportNumber)
}

func (r *VisaApplicationRequest) ToEntity(userID string) *entity.VisaApplication {
	return &entity.VisaApplication{
		UserID:             userID,
		Email:              r.Email,
		FullName:           r.FullName,
		Nationality:        r.Nationality,
		DestinationCountry: r.DestinationCountry,
		VisaType:           r.VisaType,
		PassportNumber:     r.PassportNumber,
		TravelDate:         r.TravelDate,
		UniversityID:       r.UniversityID,
		ProgramID:          r.ProgramID,
	}
}

// VisaListQuery filters GET /api/visa-applications; Status is honoured for admins only
type VisaListQuery struct {
	PageQuery
	Status string `form:"status" validate:"omitempty,oneof=draft submitted under_review approved rejected withdrawn"`
}

// DecisionRequest carries the reviewer's note on approve or reject
type DecisionRequest struct {
	Note string `json:"note" validate:"omitempty,max=2000"`
}

// UploadURLRequest asks for a presigned document upload
type UploadURLRequest struct {
	FileName    string `json:"fileName" validate:"required,max=200"`
	ContentType string `json:"contentType" validate:"required,oneof=application/pdf image/jpeg image/png"`
}
