package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// DefaultDispatchBatch bounds how many pending notifications one ProcessPending run handles
const DefaultDispatchBatch = 100

// DefaultStaleTimeout is how long a PROCESSING entry may sit before it is retried
const DefaultStaleTimeout = 10 * time.Minute

// PreferencesProvider resolves a user's notification preferences
type PreferencesProvider interface {
	GetPreferences(ctx context.Context, userID string) (*entity.NotificationPreferences, error)
}

// NotificationService manages the notification outbox and its dispatch
type NotificationService struct {
	docs         *DocumentService[*entity.Notification]
	preferences  PreferencesProvider
	router       TemplateRouter
	notifier     repository.Notifier
	logger       logger.Logger
	metrics      *metrics.Metrics
	batchSize    int
	staleTimeout time.Duration
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	store repository.DocumentStore,
	preferences PreferencesProvider,
	router TemplateRouter,
	notifier repository.Notifier,
	logger logger.Logger,
	m *metrics.Metrics,
) *NotificationService {
	return &NotificationService{
		docs:         NewDocumentService(store, entity.NotificationCodec, logger, m),
		preferences:  preferences,
		router:       router,
		notifier:     notifier,
		logger:       logger,
		metrics:      m,
		batchSize:    DefaultDispatchBatch,
		staleTimeout: DefaultStaleTimeout,
	}
}

// SetBatchSize bounds how many pending entries one ProcessPending run claims
func (s *NotificationService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// SetStaleTimeout overrides how long a claimed entry may stay PROCESSING
func (s *NotificationService) SetStaleTimeout(d time.Duration) {
	s.staleTimeout = d
}

// Enqueue records a notification for delivery. Users who opted out of the kind get
// a SKIPPED entry so the decision stays auditable.
func (s *NotificationService) Enqueue(ctx context.Context, kind, userID, email string, data map[string]interface{}) error {
	status := entity.NotificationStatusPending
	var reason *string
	if s.preferences != nil {
		prefs, err := s.preferences.GetPreferences(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load notification preferences: %w", err)
		}
		if !prefs.Allows(kind) {
			status = entity.NotificationStatusSkipped
			r := "user opted out"
			reason = &r
		}
	}

	n := &entity.Notification{
		Kind:      kind,
		UserID:    userID,
		Recipient: email,
		Data:      data,
		Status:    status,
		LastError: reason,
	}
	if err := n.Validate(); err != nil {
		return err
	}
	created, err := s.docs.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	s.metrics.RecordNotification(kind, status)
	s.logger.Debug("Notification enqueued", "id", created.ID, "kind", kind, "status", status)
	return nil
}

// Get returns a notification by id
func (s *NotificationService) Get(ctx context.Context, id string) (*entity.Notification, error) {
	return getOrNotFound(ctx, s.docs, id, "notification")
}

// ProcessNotification delivers a single pending notification
func (s *NotificationService) ProcessNotification(ctx context.Context, n *entity.Notification) error {
	template := s.router.GetTemplate(n.Kind)
	if template == nil {
		s.logger.Debug("No template found for notification", "id", n.ID, "kind", n.Kind)
		skipped, err := n.MarkSkipped("no matching template")
		if err != nil {
			return err
		}
		return s.save(ctx, skipped)
	}

	claimed, err := n.MarkProcessing(entity.Now())
	if err != nil {
		return err
	}
	if err := s.save(ctx, claimed); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	msg, err := template.Render(claimed)
	if err == nil {
		var messageID string
		messageID, err = s.notifier.Send(ctx, msg)
		if err == nil {
			sent, markErr := claimed.MarkSent(messageID, entity.Now())
			if markErr != nil {
				return markErr
			}
			s.logger.Info("Notification sent", "id", n.ID, "kind", n.Kind, "messageID", messageID)
			return s.save(ctx, sent)
		}
	}

	s.logger.Error("Failed to deliver notification", "id", n.ID, "kind", n.Kind, "attempt", claimed.Attempts, "error", err)
	failed, markErr := claimed.MarkFailed(err)
	if markErr != nil {
		return markErr
	}
	// Mark as failed but don't return error - let other notifications continue
	return s.save(ctx, failed)
}

func (s *NotificationService) save(ctx context.Context, n *entity.Notification) error {
	if _, err := s.docs.Update(ctx, n.ID, n.ToRecord()); err != nil {
		return err
	}
	if n.Status != entity.NotificationStatusProcessing && n.Status != entity.NotificationStatusPending {
		s.metrics.RecordNotification(n.Kind, n.Status)
	}
	return nil
}

// ResetStale returns entries stuck in PROCESSING past the stale timeout to PENDING
func (s *NotificationService) ResetStale(ctx context.Context) (int, error) {
	processing, err := s.docs.FindAllOrdered(ctx, QueryOptions{
		Where: []repository.Filter{repository.Where("status", repository.OpEqual, entity.NotificationStatusProcessing)},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to find processing notifications: %w", err)
	}

	now := entity.Now()
	reset := 0
	for _, n := range processing {
		if !n.IsStale(now, s.staleTimeout) {
			continue
		}
		if _, err := s.docs.Update(ctx, n.ID, entity.Record{
			"status":    entity.NotificationStatusPending,
			"lastError": "reset from stale PROCESSING state",
		}); err != nil {
			return reset, fmt.Errorf("failed to reset notification %s: %w", n.ID, err)
		}
		reset++
	}
	if reset > 0 {
		s.logger.Warn("Reset stale notifications", "count", reset)
	}
	return reset, nil
}

// ProcessPending processes any notifications that were queued or failed
func (s *NotificationService) ProcessPending(ctx context.Context) error {
	// Reset stale processing notifications
	if _, err := s.ResetStale(ctx); err != nil {
		s.logger.Error("Failed to reset stale notifications", "error", err)
	}

	pending, err := s.docs.FindAllOrdered(ctx, QueryOptions{
		Where:   []repository.Filter{repository.Where("status", repository.OpEqual, entity.NotificationStatusPending)},
		OrderBy: []repository.Order{repository.OrderBy("createdAt", repository.Asc)},
		Limit:   s.batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to find pending notifications: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	s.logger.Info("Processing pending notifications", "count", len(pending))

	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ProcessNotification(ctx, n); err != nil {
			s.logger.Error("Failed to process pending notification", "id", n.ID, "error", err)
		}
	}

	return nil
}
