package gmail

import (
	"context"

	"github.com/google/uuid"

	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/logger"
)

// LogNotifier only logs outbound messages; used when Gmail is not configured
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(logger logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg repository.OutboundMessage) (string, error) {
	id := uuid.NewString()
	n.logger.Info("Email not sent, no mail provider configured", "to", msg.To, "subject", msg.Subject, "messageID", id)
	return id, nil
}
