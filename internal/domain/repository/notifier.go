package repository

import (
	"context"
)

// OutboundMessage is a rendered notification ready to send
type OutboundMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Notifier delivers rendered notifications and returns the provider message id
type Notifier interface {
	Send(ctx context.Context, msg OutboundMessage) (string, error)
}
