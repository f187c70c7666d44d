package usecase

import (
	"context"
	"fmt"
	"strings"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// UniversityFilter narrows university listings
type UniversityFilter struct {
	Country  string
	Featured *bool
}

// UniversityService manages universities and their programs
type UniversityService struct {
	universities *DocumentService[*entity.University]
	programs     *DocumentService[*entity.Program]
	logger       logger.Logger
}

func NewUniversityService(store repository.DocumentStore, logger logger.Logger, m *metrics.Metrics) *UniversityService {
	return &UniversityService{
		universities: NewDocumentService(store, entity.UniversityCodec, logger, m),
		programs:     NewDocumentService(store, entity.ProgramCodec, logger, m),
		logger:       logger,
	}
}

func (s *UniversityService) Create(ctx context.Context, u *entity.University) (*entity.University, error) {
	u.Slug = strings.ToLower(u.Slug)
	u.Country = strings.ToUpper(u.Country)
	if u.Currency == "" {
		u.Currency = entity.DefaultCurrency
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, u.Slug, ""); err != nil {
		return nil, err
	}
	created, err := s.universities.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("University created", "id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *UniversityService) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	existing, found, err := s.universities.FindOne(ctx, QueryOptions{
		Where: []repository.Filter{repository.Where("slug", repository.OpEqual, slug)},
	})
	if err != nil {
		return err
	}
	if found && existing.ID != exceptID {
		return apperror.Conflict("university slug %q is already taken", slug)
	}
	return nil
}

// Update applies an admin partial update; slug changes stay unique
func (s *UniversityService) Update(ctx context.Context, id string, partial entity.Record) (*entity.University, error) {
	return patch(ctx, s.universities, id, "university", partial, func(current, merged *entity.University) error {
		if merged.Slug == current.Slug {
			return nil
		}
		return s.ensureSlugFree(ctx, merged.Slug, id)
	})
}

// SetFeatured toggles the featured flag
func (s *UniversityService) SetFeatured(ctx context.Context, id string, featured bool) (*entity.University, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := current.Unfeature()
	if featured {
		next, err = current.Feature()
	}
	if err != nil {
		return nil, err
	}
	return s.universities.Update(ctx, id, entity.Record{"featured": next.Featured})
}

// Delete removes a university together with its programs
func (s *UniversityService) Delete(ctx context.Context, id string) error {
	programs, err := s.ListPrograms(ctx, id, "")
	if err != nil {
		return err
	}
	for _, p := range programs {
		if err := s.programs.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to delete program %s: %w", p.ID, err)
		}
	}
	if err := s.universities.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("University deleted", "id", id, "programs", len(programs))
	return nil
}

func (s *UniversityService) Get(ctx context.Context, id string) (*entity.University, error) {
	return getOrNotFound(ctx, s.universities, id, "university")
}

func (s *UniversityService) GetBySlug(ctx context.Context, slug string) (*entity.University, error) {
	u, found, err := s.universities.FindOne(ctx, QueryOptions{
		Where: []repository.Filter{repository.Where("slug", repository.OpEqual, strings.ToLower(slug))},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound("university %q not found", slug)
	}
	return u, nil
}

// List pages through universities by name
func (s *UniversityService) List(ctx context.Context, filter UniversityFilter, page PageRequest) (*Page[*entity.University], error) {
	var where []repository.Filter
	if filter.Country != "" {
		where = append(where, repository.Where("country", repository.OpEqual, strings.ToUpper(filter.Country)))
	}
	if filter.Featured != nil {
		where = append(where, repository.Where("featured", repository.OpEqual, *filter.Featured))
	}
	return s.universities.FindPaginated(ctx, page.apply(QueryOptions{
		Where:   where,
		OrderBy: []repository.Order{repository.OrderBy("name", repository.Asc)},
	}))
}

// CreateProgram adds a program to an existing university
func (s *UniversityService) CreateProgram(ctx context.Context, universityID string, p *entity.Program) (*entity.Program, error) {
	if _, err := s.Get(ctx, universityID); err != nil {
		return nil, err
	}
	p.UniversityID = universityID
	if p.Currency == "" {
		p.Currency = entity.DefaultCurrency
	}
	if p.Language == "" {
		p.Language = "English"
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.programs.Create(ctx, p)
}

// ListPrograms returns a university's programs by name, optionally for one degree
func (s *UniversityService) ListPrograms(ctx context.Context, universityID, degree string) ([]*entity.Program, error) {
	where := []repository.Filter{repository.Where("universityId", repository.OpEqual, universityID)}
	if degree != "" {
		where = append(where, repository.Where("degree", repository.OpEqual, degree))
	}
	return s.programs.FindAllOrdered(ctx, QueryOptions{
		Where:   where,
		OrderBy: []repository.Order{repository.OrderBy("name", repository.Asc)},
	})
}

func (s *UniversityService) GetProgram(ctx context.Context, id string) (*entity.Program, error) {
	return getOrNotFound(ctx, s.programs, id, "program")
}

func (s *UniversityService) DeleteProgram(ctx context.Context, id string) error {
	return s.programs.Delete(ctx, id)
}
