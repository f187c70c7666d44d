package usecase

import (
	"sync"
	"testing"
	"time"

	"travel-booking-service/internal/domain/entity"
	storage "travel-booking-service/internal/interface/repository"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// tickingClock makes entity.Now advance one second per call
func tickingClock(t *testing.T, start time.Time) {
	t.Helper()
	var mu sync.Mutex
	next := start
	prev := entity.Now
	entity.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
	t.Cleanup(func() { entity.Now = prev })
}

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestStore() *storage.MemoryDocumentStore {
	return storage.NewMemoryDocumentStore()
}

func testDeps() (logger.Logger, *metrics.Metrics) {
	return logger.NewNopLogger(), metrics.NewNopMetrics()
}

func newUniversity(name, country string) *entity.University {
	return &entity.University{
		Name:     name,
		Slug:     "uni-" + country,
		Country:  country,
		City:     "City",
		Currency: "USD",
	}
}

func newBooking(userID string) *entity.Booking {
	return &entity.Booking{
		UserID: userID,
		Email:  userID + "@example.com",
		Flight: entity.FlightDetails{
			AirlineCode:   "GA",
			FlightNumber:  "GA88",
			Origin:        "CGK",
			Destination:   "DPS",
			DepartureDate: "2025-08-01",
			CabinClass:    "economy",
		},
		Passengers: []entity.Passenger{{FirstName: "Ana", LastName: "Lee", Type: "adult"}},
		TotalPrice: 150,
		Currency:   "USD",
		Lifecycle:  entity.NewLifecycle(),
	}
}
