package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking-service/pkg/logger"
)

// Job names
const (
	NotificationDispatch = "notification-dispatch"
	Expiry               = "expiry-sweep"
)

type NotificationProcessor interface {
	ProcessPending(ctx context.Context) error
}

type AlertExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type OfferExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (offers int, deals int, err error)
}

// DispatchNotifications sends queued notifications through the outbox
func DispatchNotifications(notifications NotificationProcessor) Func {
	return notifications.ProcessPending
}

// ExpireListings deactivates alerts, offers and deals past their end date. Both
// sweeps run even when the first fails.
func ExpireListings(alerts AlertExpirer, offers OfferExpirer, now func() time.Time, log logger.Logger) Func {
	return func(ctx context.Context) error {
		at := now()
		var errs []error

		expiredAlerts, err := alerts.ExpireDue(ctx, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("price alerts: %w", err))
		}
		expiredOffers, expiredDeals, err := offers.ExpireDue(ctx, at)
		if err != nil {
			errs = append(errs, fmt.Errorf("offers: %w", err))
		}

		if expiredAlerts+expiredOffers+expiredDeals > 0 {
			log.Info("Expired listings", "alerts", expiredAlerts, "offers", expiredOffers, "deals", expiredDeals)
		}
		return errors.Join(errs...)
	}
}
