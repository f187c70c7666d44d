package usecase

import (
	"context"
)

// NotificationEnqueuer queues user notifications; domain services treat it as optional
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, kind, userID, email string, data map[string]interface{}) error
}
