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

// ReferenceCatalog groups the optional reference lookups used to validate bookings
type ReferenceCatalog struct {
	Airlines repository.AirlineRepository
	Airports repository.AirportRepository
}

// BookingService manages flight bookings
type BookingService struct {
	docs          *DocumentService[*entity.Booking]
	catalog       ReferenceCatalog
	notifications NotificationEnqueuer
	logger        logger.Logger
}

// NewBookingService creates a new booking service. catalog and notifications may be empty.
func NewBookingService(
	store repository.DocumentStore,
	catalog ReferenceCatalog,
	notifications NotificationEnqueuer,
	logger logger.Logger,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		docs:          NewDocumentService(store, entity.BookingCodec, logger, m),
		catalog:       catalog,
		notifications: notifications,
		logger:        logger,
	}
}

// Documents exposes the generic service for the bookings collection
func (s *BookingService) Documents() *DocumentService[*entity.Booking] {
	return s.docs
}

// Create stores a new booking in pending state
func (s *BookingService) Create(ctx context.Context, b *entity.Booking) (*entity.Booking, error) {
	b.Lifecycle = entity.NewLifecycle()
	if b.Currency == "" {
		b.Currency = entity.DefaultCurrency
	}
	b.Flight.AirlineCode = strings.ToUpper(b.Flight.AirlineCode)
	b.Flight.Origin = strings.ToUpper(b.Flight.Origin)
	b.Flight.Destination = strings.ToUpper(b.Flight.Destination)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, b.Flight); err != nil {
		return nil, err
	}

	created, err := s.docs.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Booking created", "id", created.ID, "userID", created.UserID)
	return created, nil
}

// checkReferences rejects airline and airport codes the catalog does not know
func (s *BookingService) checkReferences(ctx context.Context, flight entity.FlightDetails) error {
	var violations []apperror.FieldViolation
	if s.catalog.Airlines != nil {
		airline, err := s.catalog.Airlines.GetByCode(ctx, flight.AirlineCode)
		if err != nil {
			return fmt.Errorf("failed to look up airline: %w", err)
		}
		if airline == nil || !airline.Active {
			violations = append(violations, apperror.FieldViolation{
				Field:   "flight.airlineCode",
				Message: fmt.Sprintf("unknown airline %s", flight.AirlineCode),
				Code:    "exists",
			})
		}
	}
	if s.catalog.Airports != nil {
		for _, ref := range []struct{ field, code string }{
			{"flight.origin", flight.Origin},
			{"flight.destination", flight.Destination},
		} {
			airport, err := s.catalog.Airports.GetByCode(ctx, ref.code)
			if err != nil {
				return fmt.Errorf("failed to look up airport: %w", err)
			}
			if airport == nil {
				violations = append(violations, apperror.FieldViolation{
					Field:   ref.field,
					Message: fmt.Sprintf("unknown airport %s", ref.code),
					Code:    "exists",
				})
			}
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return apperror.Validation(violations)
}

// Get returns a booking or a NotFound error
func (s *BookingService) Get(ctx context.Context, id string) (*entity.Booking, error) {
	return getOrNotFound(ctx, s.docs, id, "booking")
}

// ListByUser pages through a user's bookings, newest first, optionally by status
func (s *BookingService) ListByUser(ctx context.Context, userID, status string, page PageRequest) (*Page[*entity.Booking], error) {
	where := []repository.Filter{repository.Where("userId", repository.OpEqual, userID)}
	if status != "" {
		where = append(where, repository.Where("status", repository.OpEqual, status))
	}
	return s.docs.FindPaginated(ctx, page.apply(QueryOptions{Where: where, OrderBy: newestFirst()}))
}

// ListByStatus pages through all bookings with status, newest first
func (s *BookingService) ListByStatus(ctx context.Context, status string, page PageRequest) (*Page[*entity.Booking], error) {
	q := QueryOptions{OrderBy: newestFirst()}
	if status != "" {
		q.Where = []repository.Filter{repository.Where("status", repository.OpEqual, status)}
	}
	return s.docs.FindPaginated(ctx, page.apply(q))
}

// ListByDateRange pages through bookings departing within r, earliest first. userID and
// status narrow the range when set.
func (s *BookingService) ListByDateRange(ctx context.Context, r DateRange, userID, status string, page PageRequest) (*Page[*entity.Booking], error) {
	return s.docs.FindPaginated(ctx, page.apply(rangeQuery("flight.departureDate", r, userID, status)))
}

// transition re-reads the booking, applies fn and persists the lifecycle fields
func (s *BookingService) transition(ctx context.Context, id, kind string, fn func(*entity.Booking) (*entity.Booking, error)) (*entity.Booking, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	updated, err := s.docs.Update(ctx, id, next.LifecycleRecord())
	if err != nil {
		return nil, err
	}
	s.logger.Info("Booking status changed", "id", id, "from", current.Status, "to", updated.Status, "paymentStatus", updated.PaymentStatus)
	if kind != "" {
		s.notify(ctx, kind, updated)
	}
	return updated, nil
}

func (s *BookingService) notify(ctx context.Context, kind string, b *entity.Booking) {
	if s.notifications == nil {
		return
	}
	data := map[string]interface{}{
		"bookingId":    b.ID,
		"flightNumber": b.Flight.FlightNumber,
		"origin":       b.Flight.Origin,
		"destination":  b.Flight.Destination,
		"date":         b.Flight.DepartureDate,
		"totalPrice":   b.TotalPrice,
		"currency":     b.Currency,
	}
	if b.CancellationReason != nil {
		data["reason"] = *b.CancellationReason
	}
	if err := s.notifications.Enqueue(ctx, kind, b.UserID, b.Email, data); err != nil {
		s.logger.Error("Failed to enqueue booking notification", "id", b.ID, "kind", kind, "error", err)
	}
}

func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*entity.Booking, error) {
	return s.transition(ctx, id, entity.NotificationBookingCancelled, func(b *entity.Booking) (*entity.Booking, error) {
		return b.Cancel(reason)
	})
}

func (s *BookingService) Confirm(ctx context.Context, id string) (*entity.Booking, error) {
	return s.transition(ctx, id, entity.NotificationBookingConfirmed, (*entity.Booking).Confirm)
}

func (s *BookingService) MarkAsPaid(ctx context.Context, id, reference, method string) (*entity.Booking, error) {
	return s.transition(ctx, id, entity.NotificationBookingPaid, func(b *entity.Booking) (*entity.Booking, error) {
		return b.MarkAsPaid(reference, method)
	})
}

func (s *BookingService) MarkPaymentFailed(ctx context.Context, id string) (*entity.Booking, error) {
	return s.transition(ctx, id, "", (*entity.Booking).MarkPaymentFailed)
}

func (s *BookingService) Complete(ctx context.Context, id string) (*entity.Booking, error) {
	return s.transition(ctx, id, "", (*entity.Booking).Complete)
}

func (s *BookingService) Refund(ctx context.Context, id string) (*entity.Booking, error) {
	return s.transition(ctx, id, entity.NotificationBookingRefunded, (*entity.Booking).Refund)
}

// Delete removes a booking; missing bookings are ignored
func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}

// Watch subscribes to a user's bookings, newest first
func (s *BookingService) Watch(ctx context.Context, userID string) (*Subscription[*entity.Booking], error) {
	return s.docs.Subscribe(ctx, QueryOptions{
		Where:   []repository.Filter{repository.Where("userId", repository.OpEqual, userID)},
		OrderBy: newestFirst(),
	})
}

// WatchStatus subscribes to a user's bookings with status
func (s *BookingService) WatchStatus(ctx context.Context, userID, status string) (*Subscription[*entity.Booking], error) {
	return s.docs.Subscribe(ctx, QueryOptions{
		Where: []repository.Filter{
			repository.Where("userId", repository.OpEqual, userID),
			repository.Where("status", repository.OpEqual, status),
		},
		OrderBy: newestFirst(),
	})
}
