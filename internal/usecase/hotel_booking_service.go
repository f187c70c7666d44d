package usecase

import (
	"context"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

// HotelBookingService manages hotel bookings
type HotelBookingService struct {
	docs          *DocumentService[*entity.HotelBooking]
	notifications NotificationEnqueuer
	logger        logger.Logger
}

func NewHotelBookingService(store repository.DocumentStore, notifications NotificationEnqueuer, logger logger.Logger, m *metrics.Metrics) *HotelBookingService {
	return &HotelBookingService{
		docs:          NewDocumentService(store, entity.HotelBookingCodec, logger, m),
		notifications: notifications,
		logger:        logger,
	}
}

func (s *HotelBookingService) Create(ctx context.Context, h *entity.HotelBooking) (*entity.HotelBooking, error) {
	h.Lifecycle = entity.NewLifecycle()
	if h.Currency == "" {
		h.Currency = entity.DefaultCurrency
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	created, err := s.docs.Create(ctx, h)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Hotel booking created", "id", created.ID, "userID", created.UserID, "nights", created.Nights())
	return created, nil
}

func (s *HotelBookingService) Get(ctx context.Context, id string) (*entity.HotelBooking, error) {
	return getOrNotFound(ctx, s.docs, id, "hotel booking")
}

func (s *HotelBookingService) ListByUser(ctx context.Context, userID, status string, page PageRequest) (*Page[*entity.HotelBooking], error) {
	where := []repository.Filter{repository.Where("userId", repository.OpEqual, userID)}
	if status != "" {
		where = append(where, repository.Where("status", repository.OpEqual, status))
	}
	return s.docs.FindPaginated(ctx, page.apply(QueryOptions{Where: where, OrderBy: newestFirst()}))
}

func (s *HotelBookingService) ListByStatus(ctx context.Context, status string, page PageRequest) (*Page[*entity.HotelBooking], error) {
	q := QueryOptions{OrderBy: newestFirst()}
	if status != "" {
		q.Where = []repository.Filter{repository.Where("status", repository.OpEqual, status)}
	}
	return s.docs.FindPaginated(ctx, page.apply(q))
}

// ListByCheckInRange pages through stays checking in within r, earliest first
func (s *HotelBookingService) ListByCheckInRange(ctx context.Context, r DateRange, userID, status string, page PageRequest) (*Page[*entity.HotelBooking], error) {
	return s.docs.FindPaginated(ctx, page.apply(rangeQuery("checkIn", r, userID, status)))
}

func (s *HotelBookingService) transition(ctx context.Context, id, kind string, fn func(*entity.HotelBooking) (*entity.HotelBooking, error)) (*entity.HotelBooking, error) {
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
	s.logger.Info("Hotel booking status changed", "id", id, "from", current.Status, "to", updated.Status)
	if kind != "" && s.notifications != nil {
		data := map[string]interface{}{
			"bookingId":  updated.ID,
			"hotelName":  updated.HotelName,
			"city":       updated.City,
			"date":       updated.CheckIn,
			"checkOut":   updated.CheckOut,
			"totalPrice": updated.TotalPrice,
			"currency":   updated.Currency,
		}
		if err := s.notifications.Enqueue(ctx, kind, updated.UserID, updated.Email, data); err != nil {
			s.logger.Error("Failed to enqueue hotel booking notification", "id", id, "kind", kind, "error", err)
		}
	}
	return updated, nil
}

func (s *HotelBookingService) Cancel(ctx context.Context, id, reason string) (*entity.HotelBooking, error) {
	return s.transition(ctx, id, entity.NotificationBookingCancelled, func(h *entity.HotelBooking) (*entity.HotelBooking, error) {
		return h.Cancel(reason)
	})
}

func (s *HotelBookingService) Confirm(ctx context.Context, id string) (*entity.HotelBooking, error) {
	return s.transition(ctx, id, entity.NotificationBookingConfirmed, (*entity.HotelBooking).Confirm)
}

func (s *HotelBookingService) MarkAsPaid(ctx context.Context, id, reference, method string) (*entity.HotelBooking, error) {
	return s.transition(ctx, id, entity.NotificationBookingPaid, func(h *entity.HotelBooking) (*entity.HotelBooking, error) {
		return h.MarkAsPaid(reference, method)
	})
}

func (s *HotelBookingService) Complete(ctx context.Context, id string) (*entity.HotelBooking, error) {
	return s.transition(ctx, id, "", (*entity.HotelBooking).Complete)
}

func (s *HotelBookingService) Refund(ctx context.Context, id string) (*entity.HotelBooking, error) {
	return s.transition(ctx, id, entity.NotificationBookingRefunded, (*entity.HotelBooking).Refund)
}

func (s *HotelBookingService) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, id)
}
