package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/pkg/apperror"
)

func newPriceAlert(userID string, target float64) *entity.PriceAlert {
	return &entity.PriceAlert{
		UserID:      userID,
		Email:       userID + "@example.com",
		Origin:      "CGK",
		Destination: "SIN",
		TargetPrice: target,
	}
}

func newPriceAlertService() (*PriceAlertService, *recordingEnqueuer) {
	log, m := testDeps()
	notes := &recordingEnqueuer{}
	return NewPriceAlertService(newTestStore(), notes, log, m), notes
}

func TestPriceAlertService_RecordPriceTriggersMatchingAlerts(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	svc, notes := newPriceAlertService()

	cheap, err := svc.Create(ctx, newPriceAlert("u1", 100))
	require.NoError(t, err)
	generous, err := svc.Create(ctx, newPriceAlert("u2", 150))
	require.NoError(t, err)
	paused, err := svc.Create(ctx, newPriceAlert("u3", 200))
	require.NoError(t, err)
	_, err = svc.Pause(ctx, paused.ID)
	require.NoError(t, err)

	other := newPriceAlert("u4", 500)
	other.Destination = "KUL"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	triggered, err := svc.RecordPrice(ctx, PriceObservation{Origin: "cgk", Destination: "sin", Price: 120})
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, generous.ID, triggered[0].ID)
	assert.Equal(t, entity.AlertStatusTriggered, triggered[0].Status)

	stillActive, err := svc.Get(ctx, cheap.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusActive, stillActive.Status)
	require.NotNil(t, stillActive.LastPrice)
	assert.Equal(t, 120.0, *stillActive.LastPrice)
	assert.Equal(t, 120.0, *stillActive.LowestPrice)

	stillPaused, err := svc.Get(ctx, paused.ID)
	require.NoError(t, err)
	assert.Nil(t, stillPaused.LastPrice)

	require.Equal(t, []string{entity.NotificationPriceAlertTriggered}, notes.kinds())
	assert.Equal(t, "u2", notes.items[0].userID)
	assert.Equal(t, 120.0, notes.items[0].data["price"])

	_, err = svc.RecordPrice(ctx, PriceObservation{Origin: "CGK", Destination: "SIN", Price: 0})
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
}

func TestPriceAlertService_RecordPriceHonoursCurrencyAndDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPriceAlertService()

	dated := newPriceAlert("u1", 100)
	date := "2025-10-01"
	dated.DepartureDate = &date
	dated, err := svc.Create(ctx, dated)
	require.NoError(t, err)

	triggered, err := svc.RecordPrice(ctx, PriceObservation{Origin: "CGK", Destination: "SIN", Price: 50, DepartureDate: "2025-11-01"})
	require.NoError(t, err)
	assert.Empty(t, triggered)

	triggered, err = svc.RecordPrice(ctx, PriceObservation{Origin: "CGK", Destination: "SIN", Price: 50, Currency: "EUR"})
	require.NoError(t, err)
	assert.Empty(t, triggered)

	triggered, err = svc.RecordPrice(ctx, PriceObservation{Origin: "CGK", Destination: "SIN", Price: 50, Currency: "usd", DepartureDate: date})
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, dated.ID, triggered[0].ID)
}

func TestPriceAlertService_PauseResume(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPriceAlertService()

	a, err := svc.Create(ctx, newPriceAlert("u1", 100))
	require.NoError(t, err)

	_, err = svc.Resume(ctx, a.ID)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	paused, err := svc.Pause(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusPaused, paused.Status)

	resumed, err := svc.Resume(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusActive, resumed.Status)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Pause(ctx, a.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPriceAlertService_LimitPerUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPriceAlertService()

	for i := 0; i < MaxAlertsPerUser; i++ {
		_, err := svc.Create(ctx, newPriceAlert("u1", float64(100+i)))
		require.NoError(t, err, fmt.Sprintf("alert %d", i))
	}
	_, err := svc.Create(ctx, newPriceAlert("u1", 99))
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	_, err = svc.Create(ctx, newPriceAlert("u2", 99))
	assert.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, MaxAlertsPerUser)
}

func TestPriceAlertService_ExpireDue(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	svc, _ := newPriceAlertService()

	expiring := newPriceAlert("u1", 100)
	at := "2025-03-02T00:00:00Z"
	expiring.ExpiresAt = &at
	expiring, err := svc.Create(ctx, expiring)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02T00:00:00.000Z", *expiring.ExpiresAt)

	departed := newPriceAlert("u1", 100)
	date := "2025-03-05"
	departed.DepartureDate = &date
	departed, err = svc.Create(ctx, departed)
	require.NoError(t, err)

	open, err := svc.Create(ctx, newPriceAlert("u1", 100))
	require.NoError(t, err)

	n, err := svc.ExpireDue(ctx, testStart)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.ExpireDue(ctx, testStart.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.ExpireDue(ctx, testStart.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for id, want := range map[string]string{
		expiring.ID: entity.AlertStatusExpired,
		departed.ID: entity.AlertStatusExpired,
		open.ID:     entity.AlertStatusActive,
	} {
		got, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, id)
	}
}
