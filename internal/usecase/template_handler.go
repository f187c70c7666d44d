package usecase

import (
	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

// NotificationTemplate renders outbox entries of the kinds it supports
type NotificationTemplate interface {
	// CanRender determines if this template handles the notification kind
	CanRender(kind string) bool

	// Render builds the outbound message for the notification
	Render(n *entity.Notification) (repository.OutboundMessage, error)
}

// TemplateRouter routes notifications to the template for their kind
type TemplateRouter interface {
	// Register registers a template
	Register(template NotificationTemplate)

	// GetTemplate returns the template for kind, or nil
	GetTemplate(kind string) NotificationTemplate
}
