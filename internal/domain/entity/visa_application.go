package entity

import (
	"travel-booking-service/pkg/apperror"
)

const CollectionVisaApplications = "visaApplications"

// Visa application status values
const (
	VisaStatusDraft       = "draft"
	VisaStatusSubmitted   = "submitted"
	VisaStatusUnderReview = "under_review"
	VisaStatusApproved    = "approved"
	VisaStatusRejected    = "rejected"
	VisaStatusWithdrawn   = "withdrawn"
)

// VisaDocument is a file attached to an application in object storage
type VisaDocument struct {
	Name        string `json:"name" validate:"required,max=200"`
	Key         string `json:"key" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	UploadedAt  string `json:"uploadedAt" validate:"required,timestamp"`
}

// VisaApplication tracks a student or travel visa request
type VisaApplication struct {
	Meta
	UserID             string         `json:"userId" validate:"required"`
	Email              string         `json:"email" validate:"required,email"`
	FullName           string         `json:"fullName" validate:"required,max=200"`
	Nationality        string         `json:"nationality" validate:"required,country"`
	DestinationCountry string         `json:"destinationCountry" validate:"required,country"`
	VisaType           string         `json:"visaType" validate:"required,oneof=tourist student business work transit"`
	PassportNumber     string         `json:"passportNumber" validate:"required,passport"`
	TravelDate         string         `json:"travelDate" validate:"required,isodate"`
	UniversityID       *string        `json:"universityId,omitempty"`
	ProgramID          *string        `json:"programId,omitempty"`
	Documents          []VisaDocument `json:"documents,omitempty" validate:"omitempty,max=20,dive"`
	Status             string         `json:"status" validate:"required,oneof=draft submitted under_review approved rejected withdrawn"`
	SubmittedAt        *string        `json:"submittedAt,omitempty"`
	ReviewedAt         *string        `json:"reviewedAt,omitempty"`
	DecidedAt          *string        `json:"decidedAt,omitempty"`
	DecisionNote       *string        `json:"decisionNote,omitempty" validate:"omitempty,max=2000"`
}

func VisaApplicationFromRecord(id string, rec Record) (*VisaApplication, error) {
	v := &VisaApplication{}
	if err := decodeEntity(id, rec, v, &v.Meta); err != nil {
		return nil, err
	}
	if v.Status == "" {
		v.Status = VisaStatusDraft
	}
	return v, nil
}

var VisaApplicationCodec = Codec[*VisaApplication]{
	Collection: CollectionVisaApplications,
	FromRecord: VisaApplicationFromRecord,
	ToRecord:   func(v *VisaApplication) Record { return v.ToRecord() },
}

func (v *VisaApplication) ToRecord() Record {
	return encodeRecord(v)
}

func (v *VisaApplication) Validate() error {
	violations := ValidateStruct(v)
	if v.VisaType == "student" && v.UniversityID == nil {
		violations = append(violations, apperror.FieldViolation{
			Field:   "universityId",
			Message: "universityId is required for student visas",
			Code:    "required_if",
		})
	}
	return validationResult(violations)
}

func (v *VisaApplication) WithUpdates(partial Record) (*VisaApplication, error) {
	return WithUpdates(v, partial, VisaApplicationFromRecord)
}

// IsEditable reports whether applicant details may still change
func (v *VisaApplication) IsEditable() bool {
	return v.Status == VisaStatusDraft
}

func (v *VisaApplication) transition(from []string, to string, stamp func(*VisaApplication, *string)) (*VisaApplication, error) {
	allowed := false
	for _, s := range from {
		if v.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperror.Precondition("cannot move visa application from %s to %s", v.Status, to)
	}
	c, err := VisaApplicationFromRecord(v.ID, v.ToRecord())
	if err != nil {
		return nil, err
	}
	now := timestampPtr(Now())
	c.Status = to
	c.UpdatedAt = *now
	if stamp != nil {
		stamp(c, now)
	}
	return c, nil
}

func (v *VisaApplication) Submit() (*VisaApplication, error) {
	if len(v.Documents) == 0 {
		return nil, apperror.Precondition("at least one document must be uploaded before submitting")
	}
	return v.transition([]string{VisaStatusDraft}, VisaStatusSubmitted, func(c *VisaApplication, at *string) {
		c.SubmittedAt = at
	})
}

func (v *VisaApplication) StartReview() (*VisaApplication, error) {
	return v.transition([]string{VisaStatusSubmitted}, VisaStatusUnderReview, func(c *VisaApplication, at *string) {
		c.ReviewedAt = at
	})
}

func (v *VisaApplication) Approve(note string) (*VisaApplication, error) {
	return v.decide(VisaStatusApproved, note)
}

func (v *VisaApplication) Reject(note string) (*VisaApplication, error) {
	if note == "" {
		return nil, apperror.Precondition("a rejection requires a decision note")
	}
	return v.decide(VisaStatusRejected, note)
}

func (v *VisaApplication) decide(to, note string) (*VisaApplication, error) {
	return v.transition([]string{VisaStatusUnderReview}, to, func(c *VisaApplication, at *string) {
		c.DecidedAt = at
		if note != "" {
			c.DecisionNote = &note
		}
	})
}

func (v *VisaApplication) Withdraw() (*VisaApplication, error) {
	return v.transition([]string{VisaStatusDraft, VisaStatusSubmitted, VisaStatusUnderReview}, VisaStatusWithdrawn, nil)
}

// AddDocument attaches an uploaded file; only drafts accept documents
func (v *VisaApplication) AddDocument(doc VisaDocument) (*VisaApplication, error) {
	if !v.IsEditable() {
		return nil, apperror.Precondition("documents can only be added to draft applications, status is %s", v.Status)
	}
	docs := make([]VisaDocument, 0, len(v.Documents)+1)
	docs = append(docs, v.Documents...)
	docs = append(docs, doc)
	return v.WithUpdates(Record{"documents": encodeList(docs)})
}

func encodeList(v interface{}) interface{} {
	return encodeRecord(map[string]interface{}{"v": v})["v"]
}
