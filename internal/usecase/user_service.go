package usecase

import (
	"context"
	"strings"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// userProtectedFields cannot be changed through profile updates
var userProtectedFields = []string{"admin", "lastLoginAt"}

// UserService manages profiles, notification preferences and push subscriptions
type UserService struct {
	users       *DocumentService[*entity.User]
	preferences *DocumentService[*entity.NotificationPreferences]
	push        *DocumentService[*entity.PushSubscription]
	logger      logger.Logger
}

func NewUserService(store repository.DocumentStore, logger logger.Logger, m *metrics.Metrics) *UserService {
	return &UserService{
		users:       NewDocumentService(store, entity.UserCodec, logger, m),
		preferences: NewDocumentService(store, entity.NotificationPreferencesCodec, logger, m),
		push:        NewDocumentService(store, entity.PushSubscriptionCodec, logger, m),
		logger:      logger,
	}
}

// Upsert creates the profile on first sign-in and otherwise applies profile changes.
// The email always follows the identity provider.
func (s *UserService) Upsert(ctx context.Context, userID, email string, profile entity.Record) (*entity.User, error) {
	changes := make(entity.Record, len(profile)+2)
	for k, v := range profile {
		changes[k] = v
	}
	for _, field := range userProtectedFields {
		delete(changes, field)
	}
	changes["email"] = email
	changes["lastLoginAt"] = entity.FormatTimestamp(entity.Now())

	_, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found {
		return patch(ctx, s.users, userID, "user", changes, nil)
	}

	u, err := entity.UserFromRecord(userID, changes)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldViolation{{Field: "body", Message: err.Error(), Code: "type"}})
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	created, err := s.users.CreateWithID(ctx, userID, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered", "userID", userID)
	return created, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*entity.User, error) {
	return getOrNotFound(ctx, s.users, userID, "user")
}

// IsAdmin reports whether the stored profile carries the admin flag
func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	u, found, err := s.users.FindByID(ctx, userID)
	if err != nil || !found {
		return false, err
	}
	return u.Admin, nil
}

func (s *UserService) SetAdmin(ctx context.Context, userID string, admin bool) (*entity.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	updated, err := s.users.Update(ctx, userID, entity.Record{"admin": admin})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User admin flag changed", "userID", userID, "admin", admin)
	return updated, nil
}

// GetPreferences returns stored preferences or the defaults for users who never saved any
func (s *UserService) GetPreferences(ctx context.Context, userID string) (*entity.NotificationPreferences, error) {
	prefs, found, err := s.preferences.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return entity.DefaultNotificationPreferences(userID), nil
	}
	return prefs, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID string, partial entity.Record) (*entity.NotificationPreferences, error) {
	_, found, err := s.preferences.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found {
		return patch(ctx, s.preferences, userID, "notification preferences", partial, nil)
	}
	prefs, err := entity.DefaultNotificationPreferences(userID).WithUpdates(partial)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldViolation{{Field: "body", Message: err.Error(), Code: "type"}})
	}
	return s.preferences.CreateWithID(ctx, userID, prefs)
}

// AddPushSubscription registers an endpoint; registering a known endpoint again returns it
func (s *UserService) AddPushSubscription(ctx context.Context, userID string, sub *entity.PushSubscription) (*entity.PushSubscription, error) {
	sub.UserID = userID
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	existing, found, err := s.push.FindOne(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("userId", repository.OpEqual, userID),
			repository.Where("endpoint", repository.OpEqual, strings.TrimSpace(sub.Endpoint)),
		},
	})
	if err != nil {
		return nil, err
	}
	if found {
		return existing, nil
	}
	return s.push.Create(ctx, sub)
}

func (s *UserService) ListPushSubscriptions(ctx context.Context, userID string) ([]*entity.PushSubscription, error) {
	return s.push.FindAllOrdered(ctx, QueryOptions{
		Where:   []repository.Filter{repository.Where("userId", repository.OpEqual, userID)},
		OrderBy: newestFirst(),
	})
}

// RemovePushSubscription deletes one of the user's subscriptions
func (s *UserService) RemovePushSubscription(ctx context.Context, userID, id string) error {
	sub, found, err := s.push.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !found || sub.UserID != userID {
		return apperror.NotFound("push subscription %s not found", id)
	}
	return s.push.Delete(ctx, id)
}
