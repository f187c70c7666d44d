package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/pkg/apperror"
)

func activeAlert() *PriceAlert {
	return &PriceAlert{
		Meta:        Meta{ID: "a1", CreatedAt: "2025-01-01T00:00:00.000Z", UpdatedAt: "2025-01-01T00:00:00.000Z"},
		UserID:      "user-1",
		Email:       "watcher@example.com",
		Origin:      "CGK",
		Destination: "NRT",
		TargetPrice: 400,
		Currency:    "USD",
		Status:      AlertStatusActive,
	}
}

func TestPriceAlert_RecordPrice(t *testing.T) {
	withClock(t, fixedNow)
	a := activeAlert()
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	above, triggered, err := a.RecordPrice(450, at)
	require.NoError(t, err)
	assert.False(t, triggered)
	assert.Equal(t, AlertStatusActive, above.Status)
	require.NotNil(t, above.LowestPrice)
	assert.Equal(t, 450.0, *above.LowestPrice)

	hit, triggered, err := above.RecordPrice(400, at)
	require.NoError(t, err)
	assert.True(t, triggered)
	assert.Equal(t, AlertStatusTriggered, hit.Status)
	require.NotNil(t, hit.TriggeredAt)
	assert.Equal(t, "2025-05-01T08:00:00.000Z", *hit.TriggeredAt)
	assert.Equal(t, 400.0, *hit.LowestPrice)

	_, _, err = hit.RecordPrice(300, at)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	_, _, err = a.RecordPrice(0, at)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
}

func TestPriceAlert_PauseResumeExpire(t *testing.T) {
	a := activeAlert()

	paused, err := a.Pause()
	require.NoError(t, err)
	assert.Equal(t, AlertStatusPaused, paused.Status)

	_, err = paused.Pause()
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	resumed, err := paused.Resume()
	require.NoError(t, err)
	assert.Equal(t, AlertStatusActive, resumed.Status)

	expired, err := paused.Expire()
	require.NoError(t, err)
	assert.Equal(t, AlertStatusExpired, expired.Status)

	_, err = expired.Expire()
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
	_, err = expired.Resume()
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
}

func TestPriceAlert_IsDueForExpiry(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	past, future := "2025-06-09T00:00:00.000Z", "2025-06-11T00:00:00.000Z"
	departed, upcoming := "2025-06-09", "2025-06-10"

	tests := []struct {
		name      string
		expiresAt *string
		departure *string
		status    string
		want      bool
	}{
		{"no dates", nil, nil, AlertStatusActive, false},
		{"expiry passed", &past, nil, AlertStatusActive, true},
		{"expiry ahead", &future, nil, AlertStatusPaused, false},
		{"departure passed", nil, &departed, AlertStatusTriggered, true},
		{"departure today", nil, &upcoming, AlertStatusActive, false},
		{"already expired", &past, nil, AlertStatusExpired, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := activeAlert()
			a.ExpiresAt = tt.expiresAt
			a.DepartureDate = tt.departure
			a.Status = tt.status
			assert.Equal(t, tt.want, a.IsDueForExpiry(now))
		})
	}
}
