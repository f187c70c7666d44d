package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// OfferService manages marketing offers and deals
type OfferService struct {
	offers *DocumentService[*entity.Offer]
	deals  *DocumentService[*entity.Deal]
	logger logger.Logger
}

func NewOfferService(store repository.DocumentStore, logger logger.Logger, m *metrics.Metrics) *OfferService {
	return &OfferService{
		offers: NewDocumentService(store, entity.OfferCodec, logger, m),
		deals:  NewDocumentService(store, entity.DealCodec, logger, m),
		logger: logger,
	}
}

func (s *OfferService) Create(ctx context.Context, o *entity.Offer) (*entity.Offer, error) {
	o.Slug = strings.ToLower(o.Slug)
	if o.Currency == "" {
		o.Currency = entity.DefaultCurrency
	}
	o.ValidFrom = canonicalTimestamp(o.ValidFrom)
	o.ValidUntil = canonicalTimestamp(o.ValidUntil)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, o.Slug, ""); err != nil {
		return nil, err
	}
	created, err := s.offers.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Offer created", "id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *OfferService) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	existing, found, err := s.offers.FindOne(ctx, QueryOptions{
		Where: []repository.Filter{repository.Where("slug", repository.OpEqual, slug)},
	})
	if err != nil {
		return err
	}
	if found && existing.ID != exceptID {
		return apperror.Conflict("offer slug %q is already taken", slug)
	}
	return nil
}

func (s *OfferService) Update(ctx context.Context, id string, partial entity.Record) (*entity.Offer, error) {
	return patch(ctx, s.offers, id, "offer", partial, func(current, merged *entity.Offer) error {
		if merged.Slug == current.Slug {
			return nil
		}
		return s.ensureSlugFree(ctx, merged.Slug, id)
	})
}

func (s *OfferService) Delete(ctx context.Context, id string) error {
	return s.offers.Delete(ctx, id)
}

func (s *OfferService) Get(ctx context.Context, id string) (*entity.Offer, error) {
	return getOrNotFound(ctx, s.offers, id, "offer")
}

func (s *OfferService) GetBySlug(ctx context.Context, slug string) (*entity.Offer, error) {
	o, found, err := s.offers.FindOne(ctx, QueryOptions{
		Where: []repository.Filter{repository.Where("slug", repository.OpEqual, strings.ToLower(slug))},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound("offer %q not found", slug)
	}
	return o, nil
}

// ListActive pages through active offers that have not ended, soonest ending first.
// Offers that have not started yet are dropped from the page, so a page may hold
// fewer items than the limit while HasMore is still set.
func (s *OfferService) ListActive(ctx context.Context, category string, page PageRequest) (*Page[*entity.Offer], error) {
	now := entity.Now()
	where := []repository.Filter{
		repository.Where("active", repository.OpEqual, true),
		repository.Where("validUntil", repository.OpGreater, entity.FormatTimestamp(now)),
	}
	if category != "" {
		where = append(where, repository.Where("category", repository.OpEqual, category))
	}
	result, err := s.offers.FindPaginated(ctx, page.apply(QueryOptions{
		Where:   where,
		OrderBy: []repository.Order{repository.OrderBy("validUntil", repository.Asc)},
	}))
	if err != nil {
		return nil, err
	}
	live := result.Data[:0]
	for _, o := range result.Data {
		if o.IsValidAt(now) {
			live = append(live, o)
		}
	}
	result.Data = live
	return result, nil
}

func (s *OfferService) CreateDeal(ctx context.Context, d *entity.Deal) (*entity.Deal, error) {
	if d.Currency == "" {
		d.Currency = entity.DefaultCurrency
	}
	d.ExpiresAt = canonicalTimestamp(d.ExpiresAt)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.deals.Create(ctx, d)
}

func (s *OfferService) GetDeal(ctx context.Context, id string) (*entity.Deal, error) {
	return getOrNotFound(ctx, s.deals, id, "deal")
}

// ListDeals pages through active unexpired deals, soonest expiring first
func (s *OfferService) ListDeals(ctx context.Context, category string, page PageRequest) (*Page[*entity.Deal], error) {
	where := []repository.Filter{
		repository.Where("active", repository.OpEqual, true),
		repository.Where("expiresAt", repository.OpGreater, entity.FormatTimestamp(entity.Now())),
	}
	if category != "" {
		where = append(where, repository.Where("category", repository.OpEqual, category))
	}
	return s.deals.FindPaginated(ctx, page.apply(QueryOptions{
		Where:   where,
		OrderBy: []repository.Order{repository.OrderBy("expiresAt", repository.Asc)},
	}))
}

func (s *OfferService) DeleteDeal(ctx context.Context, id string) error {
	return s.deals.Delete(ctx, id)
}

// ExpireDue deactivates offers and deals that ended at or before now
func (s *OfferService) ExpireDue(ctx context.Context, now time.Time) (offers int, deals int, err error) {
	cutoff := entity.FormatTimestamp(now)

	endedOffers, err := s.offers.FindAllOrdered(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("active", repository.OpEqual, true),
			repository.Where("validUntil", repository.OpLessEqual, cutoff),
		},
	})
	if err != nil {
		return 0, 0, err
	}
	for _, o := range endedOffers {
		next, err := o.Deactivate()
		if err != nil {
			return offers, deals, err
		}
		if _, err := s.offers.Update(ctx, o.ID, entity.Record{"active": next.Active}); err != nil {
			return offers, deals, fmt.Errorf("failed to deactivate offer %s: %w", o.ID, err)
		}
		offers++
	}

	endedDeals, err := s.deals.FindAllOrdered(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("active", repository.OpEqual, true),
			repository.Where("expiresAt", repository.OpLessEqual, cutoff),
		},
	})
	if err != nil {
		return offers, 0, err
	}
	for _, d := range endedDeals {
		next, err := d.Deactivate()
		if err != nil {
			return offers, deals, err
		}
		if _, err := s.deals.Update(ctx, d.ID, entity.Record{"active": next.Active}); err != nil {
			return offers, deals, fmt.Errorf("failed to deactivate deal %s: %w", d.ID, err)
		}
		deals++
	}

	if offers+deals > 0 {
		s.logger.Info("Deactivated ended offers and deals", "offers", offers, "deals", deals)
	}
	return offers, deals, nil
}
