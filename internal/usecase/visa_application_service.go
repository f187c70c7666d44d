package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// visaProtectedFields are managed by the workflow and ignored in applicant updates
var visaProtectedFields = []string{
	"userId", "status", "documents", "submittedAt", "reviewedAt", "decidedAt", "decisionNote",
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UniversityFinder resolves universities referenced by student visa applications
type UniversityFinder interface {
	Get(ctx context.Context, id string) (*entity.University, error)
}

// VisaApplicationService manages visa applications and their documents
type VisaApplicationService struct {
	docs          *DocumentService[*entity.VisaApplication]
	storage       repository.ObjectStorage
	universities  UniversityFinder
	notifications NotificationEnqueuer
	logger        logger.Logger
}

// NewVisaApplicationService creates a new visa application service. storage,
// universities and notifications are optional.
func NewVisaApplicationService(
	store repository.DocumentStore,
	storage repository.ObjectStorage,
	universities UniversityFinder,
	notifications NotificationEnqueuer,
	logger logger.Logger,
	m *metrics.Metrics,
) *VisaApplicationService {
	return &VisaApplicationService{
		docs:          NewDocumentService(store, entity.VisaApplicationCodec, logger, m),
		storage:       storage,
		universities:  universities,
		notifications: notifications,
		logger:        logger,
	}
}

// Create stores a new draft application
func (s *VisaApplicationService) Create(ctx context.Context, v *entity.VisaApplication) (*entity.VisaApplication, error) {
	v.Status = entity.VisaStatusDraft
	v.Documents = nil
	v.SubmittedAt, v.ReviewedAt, v.DecidedAt, v.DecisionNote = nil, nil, nil, nil
	v.Nationality = strings.ToUpper(v.Nationality)
	v.DestinationCountry = strings.ToUpper(v.DestinationCountry)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUniversity(ctx, v.UniversityID); err != nil {
		return nil, err
	}
	created, err := s.docs.Create(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Visa application created", "id", created.ID, "userID", created.UserID, "visaType", created.VisaType)
	return created, nil
}

func (s *VisaApplicationService) checkUniversity(ctx context.Context, id *string) error {
	if id == nil || s.universities == nil {
		return nil
	}
	if _, err := s.universities.Get(ctx, *id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Validation([]apperror.FieldViolation{{
				Field:   "universityId",
				Message: fmt.Sprintf("unknown university %s", *id),
				Code:    "exists",
			}})
		}
		return err
	}
	return nil
}

func (s *VisaApplicationService) Get(ctx context.Context, id string) (*entity.VisaApplication, error) {
	return getOrNotFound(ctx, s.docs, id, "visa application")
}

func (s *VisaApplicationService) ListByUser(ctx context.Context, userID string, page PageRequest) (*Page[*entity.VisaApplication], error) {
	return s.docs.FindPaginated(ctx, page.apply(QueryOptions{
		Where:   []repository.Filter{repository.Where("userId", repository.OpEqual, userID)},
		OrderBy: newestFirst(),
	}))
}

func (s *VisaApplicationService) ListByStatus(ctx context.Context, status string, page PageRequest) (*Page[*entity.VisaApplication], error) {
	q := QueryOptions{OrderBy: newestFirst()}
	if status != "" {
		q.Where = []repository.Filter{repository.Where("status", repository.OpEqual, status)}
	}
	return s.docs.FindPaginated(ctx, page.apply(q))
}

// Update changes applicant details of a draft application
func (s *VisaApplicationService) Update(ctx context.Context, id string, partial entity.Record) (*entity.VisaApplication, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsEditable() {
		return nil, apperror.Precondition("visa application with status %s can no longer be edited", current.Status)
	}

	changes := make(entity.Record, len(partial))
	for k, v := range partial {
		changes[k] = v
	}
	for _, field := range visaProtectedFields {
		delete(changes, field)
	}

	merged, err := current.WithUpdates(changes)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldViolation{{Field: "body", Message: err.Error(), Code: "type"}})
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if _, ok := changes["universityId"]; ok {
		if err := s.checkUniversity(ctx, merged.UniversityID); err != nil {
			return nil, err
		}
	}
	return s.docs.Update(ctx, id, changes)
}

func (s *VisaApplicationService) transition(ctx context.Context, id string, notify bool, fn func(*entity.VisaApplication) (*entity.VisaApplication, error)) (*entity.VisaApplication, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	updated, err := s.docs.Update(ctx, id, next.ToRecord())
	if err != nil {
		return nil, err
	}
	s.logger.Info("Visa application status changed", "id", id, "from", current.Status, "to", updated.Status)

	if notify && s.notifications != nil {
		data := map[string]interface{}{
			"applicationId":      updated.ID,
			"fullName":           updated.FullName,
			"destinationCountry": updated.DestinationCountry,
			"visaType":           updated.VisaType,
			"status":             updated.Status,
		}
		if updated.DecisionNote != nil {
			data["note"] = *updated.DecisionNote
		}
		if err := s.notifications.Enqueue(ctx, entity.NotificationVisaStatusChanged, updated.UserID, updated.Email, data); err != nil {
			s.logger.Error("Failed to enqueue visa notification", "id", id, "error", err)
		}
	}
	return updated, nil
}

func (s *VisaApplicationService) Submit(ctx context.Context, id string) (*entity.VisaApplication, error) {
	return s.transition(ctx, id, true, (*entity.VisaApplication).Submit)
}

func (s *VisaApplicationService) StartReview(ctx context.Context, id string) (*entity.VisaApplication, error) {
	return s.transition(ctx, id, true, (*entity.VisaApplication).StartReview)
}

func (s *VisaApplicationService) Approve(ctx context.Context, id, note string) (*entity.VisaApplication, error) {
	return s.transition(ctx, id, true, func(v *entity.VisaApplication) (*entity.VisaApplication, error) {
		return v.Approve(note)
	})
}

func (s *VisaApplicationService) Reject(ctx context.Context, id, note string) (*entity.VisaApplication, error) {
	return s.transition(ctx, id, true, func(v *entity.VisaApplication) (*entity.VisaApplication, error) {
		return v.Reject(note)
	})
}

func (s *VisaApplicationService) Withdraw(ctx context.Context, id string) (*entity.VisaApplication, error) {
	return s.transition(ctx, id, false, (*entity.VisaApplication).Withdraw)
}

// RequestDocumentUpload issues a presigned upload URL and records the document on the draft
func (s *VisaApplicationService) RequestDocumentUpload(ctx context.Context, id, name, contentType string) (*repository.PresignedUpload, *entity.VisaApplication, error) {
	if s.storage == nil {
		return nil, nil, apperror.Precondition("document uploads are not configured")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !current.IsEditable() {
		return nil, nil, apperror.Precondition("documents can only be added to draft applications, status is %s", current.Status)
	}

	key := DocumentKey(id, name)
	upload, err := s.storage.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	next, err := current.AddDocument(entity.VisaDocument{
		Name:        name,
		Key:         key,
		ContentType: contentType,
		UploadedAt:  entity.FormatTimestamp(entity.Now()),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, nil, err
	}
	updated, err := s.docs.Update(ctx, id, entity.Record{"documents": next.ToRecord()["documents"]})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("Visa document upload requested", "id", id, "key", key)
	return upload, updated, nil
}

// DocumentKey is the object key a visa document is stored under
func DocumentKey(applicationID, name string) string {
	base := unsafeFileChars.ReplaceAllString(path.Base(name), "_")
	if base == "" || base == "." || base == "_" {
		base = "document"
	}
	return fmt.Sprintf("visa-applications/%s/%s-%s", applicationID, uuid.NewString(), base)
}

func (s *VisaApplicationService) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}
