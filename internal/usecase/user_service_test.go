package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/pkg/apperror"
)

func newUserService() *UserService {
	log, m := testDeps()
	return NewUserService(newTestStore(), log, m)
}

func newPushSubscription(endpoint string) *entity.PushSubscription {
	return &entity.PushSubscription{
		Endpoint: endpoint,
		Keys:     map[string]string{"p256dh": "BNc...", "auth": "tBH..."},
	}
}

func TestUserService_Upsert(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	svc := newUserService()

	created, err := svc.Upsert(ctx, "u1", "ana@example.com", entity.Record{
		"displayName": "Ana",
		"admin":       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.ID)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.False(t, created.Admin, "admin cannot be self-assigned")
	require.NotNil(t, created.LastLoginAt)

	updated, err := svc.Upsert(ctx, "u1", "ana.lee@example.com", entity.Record{"phone": "+6281234"})
	require.NoError(t, err)
	assert.Equal(t, "ana.lee@example.com", updated.Email)
	require.NotNil(t, updated.DisplayName)
	assert.Equal(t, "Ana", *updated.DisplayName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Greater(t, *updated.LastLoginAt, *created.LastLoginAt)

	_, err = svc.Upsert(ctx, "u2", "ben@example.com", entity.Record{"photoUrl": "not a url"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "photoUrl", apperror.DetailsOf(err)[0].Field)
}

func TestUserService_Admin(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()

	_, err := svc.SetAdmin(ctx, "ghost", true)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Upsert(ctx, "u1", "ana@example.com", nil)
	require.NoError(t, err)

	isAdmin, err := svc.IsAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	u, err := svc.SetAdmin(ctx, "u1", true)
	require.NoError(t, err)
	assert.True(t, u.Admin)

	isAdmin, err = svc.IsAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = svc.IsAdmin(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestUserService_Preferences(t *testing.T) {
	ctx := context.Background()
	svc := newUserService()

	defaults, err := svc.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, defaults.Email)
	assert.False(t, defaults.Marketing)
	assert.True(t, defaults.Allows(entity.NotificationBookingConfirmed))

	saved, err := svc.UpdatePreferences(ctx, "u1", entity.Record{"marketing": true})
	require.NoError(t, err)
	assert.True(t, saved.Marketing)
	assert.True(t, saved.BookingUpdates, "unspecified fields keep their defaults")

	saved, err = svc.UpdatePreferences(ctx, "u1", entity.Record{"email": false})
	require.NoError(t, err)
	assert.False(t, saved.Email)
	assert.True(t, saved.Marketing)

	got, err := svc.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.Allows(entity.NotificationMarketing))
}

func TestUserService_PushSubscriptions(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	svc := newUserService()

	first, err := svc.AddPushSubscription(ctx, "u1", newPushSubscription("https://push.example.com/a"))
	require.NoError(t, err)
	again, err := svc.AddPushSubscription(ctx, "u1", newPushSubscription("https://push.example.com/a"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "same endpoint is registered once")

	second, err := svc.AddPushSubscription(ctx, "u1", newPushSubscription("https://push.example.com/b"))
	require.NoError(t, err)

	bad := newPushSubscription("https://push.example.com/c")
	bad.Keys = map[string]string{"secret": "x"}
	_, err = svc.AddPushSubscription(ctx, "u1", bad)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	subs, err := svc.ListPushSubscriptions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, second.ID, subs[0].ID)

	err = svc.RemovePushSubscription(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "other users cannot remove it")

	require.NoError(t, svc.RemovePushSubscription(ctx, "u1", first.ID))
	subs, err = svc.ListPushSubscriptions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
