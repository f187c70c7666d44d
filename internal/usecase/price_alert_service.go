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

// MaxAlertsPerUser caps the non-expired alerts a user may hold
const MaxAlertsPerUser = 20

// PriceObservation is an observed fare for a route
type PriceObservation struct {
	Origin        string
	Destination   string
	Price         float64
	Currency      string
	DepartureDate string
}

// PriceAlertService manages price alerts and evaluates observed prices against them
type PriceAlertService struct {
	docs          *DocumentService[*entity.PriceAlert]
	notifications NotificationEnqueuer
	logger        logger.Logger
}

func NewPriceAlertService(store repository.DocumentStore, notifications NotificationEnqueuer, logger logger.Logger, m *metrics.Metrics) *PriceAlertService {
	return &PriceAlertService{
		docs:          NewDocumentService(store, entity.PriceAlertCodec, logger, m),
		notifications: notifications,
		logger:        logger,
	}
}

// Create stores a new active alert
func (s *PriceAlertService) Create(ctx context.Context, a *entity.PriceAlert) (*entity.PriceAlert, error) {
	a.Status = entity.AlertStatusActive
	a.LastPrice, a.LowestPrice, a.LastCheckedAt, a.TriggeredAt = nil, nil, nil, nil
	a.Origin = strings.ToUpper(a.Origin)
	a.Destination = strings.ToUpper(a.Destination)
	if a.Currency == "" {
		a.Currency = entity.DefaultCurrency
	}
	if a.ExpiresAt != nil {
		normalized := canonicalTimestamp(*a.ExpiresAt)
		a.ExpiresAt = &normalized
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	open, err := s.docs.FindAllOrdered(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("userId", repository.OpEqual, a.UserID),
			repository.Where("status", repository.OpIn, []string{entity.AlertStatusActive, entity.AlertStatusPaused, entity.AlertStatusTriggered}),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(open) >= MaxAlertsPerUser {
		return nil, apperror.Precondition("a user may hold at most %d price alerts", MaxAlertsPerUser)
	}

	return s.docs.Create(ctx, a)
}

func (s *PriceAlertService) Get(ctx context.Context, id string) (*entity.PriceAlert, error) {
	return getOrNotFound(ctx, s.docs, id, "price alert")
}

// ListByUser returns all of a user's alerts, newest first
func (s *PriceAlertService) ListByUser(ctx context.Context, userID string) ([]*entity.PriceAlert, error) {
	return s.docs.FindAllOrdered(ctx, QueryOptions{
		Where:   []repository.Filter{repository.Where("userId", repository.OpEqual, userID)},
		OrderBy: newestFirst(),
	})
}

func (s *PriceAlertService) save(ctx context.Context, id string, fn func(*entity.PriceAlert) (*entity.PriceAlert, error)) (*entity.PriceAlert, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	return s.docs.Update(ctx, id, next.ToRecord())
}

func (s *PriceAlertService) Pause(ctx context.Context, id string) (*entity.PriceAlert, error) {
	return s.save(ctx, id, (*entity.PriceAlert).Pause)
}

func (s *PriceAlertService) Resume(ctx context.Context, id string) (*entity.PriceAlert, error) {
	return s.save(ctx, id, (*entity.PriceAlert).Resume)
}

func (s *PriceAlertService) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}

// RecordPrice evaluates an observed price against every active alert on the route and
// returns the alerts it triggered. Alerts pinned to another departure date or another
// currency are left alone.
func (s *PriceAlertService) RecordPrice(ctx context.Context, obs PriceObservation) ([]*entity.PriceAlert, error) {
	if obs.Price <= 0 {
		return nil, apperror.Precondition("observed price must be positive")
	}
	alerts, err := s.docs.FindAllOrdered(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("origin", repository.OpEqual, strings.ToUpper(obs.Origin)),
			repository.Where("destination", repository.OpEqual, strings.ToUpper(obs.Destination)),
			repository.Where("status", repository.OpEqual, entity.AlertStatusActive),
		},
	})
	if err != nil {
		return nil, err
	}

	now := entity.Now()
	triggered := make([]*entity.PriceAlert, 0)
	for _, alert := range alerts {
		if obs.Currency != "" && !strings.EqualFold(obs.Currency, alert.Currency) {
			continue
		}
		if alert.DepartureDate != nil && obs.DepartureDate != "" && *alert.DepartureDate != obs.DepartureDate {
			continue
		}
		next, fired, err := alert.RecordPrice(obs.Price, now)
		if err != nil {
			return triggered, err
		}
		updated, err := s.docs.Update(ctx, alert.ID, next.ToRecord())
		if err != nil {
			return triggered, fmt.Errorf("failed to record price on alert %s: %w", alert.ID, err)
		}
		if !fired {
			continue
		}
		triggered = append(triggered, updated)
		s.logger.Info("Price alert triggered", "id", updated.ID, "price", obs.Price, "target", updated.TargetPrice)
		if s.notifications != nil {
			data := map[string]interface{}{
				"alertId":     updated.ID,
				"origin":      updated.Origin,
				"destination": updated.Destination,
				"price":       obs.Price,
				"targetPrice": updated.TargetPrice,
				"currency":    updated.Currency,
			}
			if err := s.notifications.Enqueue(ctx, entity.NotificationPriceAlertTriggered, updated.UserID, updated.Email, data); err != nil {
				s.logger.Error("Failed to enqueue price alert notification", "id", updated.ID, "error", err)
			}
		}
	}
	return triggered, nil
}

// ExpireDue expires alerts whose expiry or departure date has passed at now
func (s *PriceAlertService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	open, err := s.docs.FindAllOrdered(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("status", repository.OpIn, []string{entity.AlertStatusActive, entity.AlertStatusPaused, entity.AlertStatusTriggered}),
		},
	})
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, alert := range open {
		if !alert.IsDueForExpiry(now) {
			continue
		}
		next, err := alert.Expire()
		if err != nil {
			return expired, err
		}
		if _, err := s.docs.Update(ctx, alert.ID, entity.Record{"status": next.Status}); err != nil {
			return expired, fmt.Errorf("failed to expire alert %s: %w", alert.ID, err)
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("Expired price alerts", "count", expired)
	}
	return expired, nil
}
