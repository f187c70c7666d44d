package router

import (
	"fmt"

	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
)

// KindRouter routes notifications to the template registered for their kind
type KindRouter struct {
	templates []usecase.NotificationTemplate
	logger    logger.Logger
}

// NewKindRouter creates a new kind router
func NewKindRouter(logger logger.Logger) *KindRouter {
	return &KindRouter{
		templates: make([]usecase.NotificationTemplate, 0),
		logger:    logger,
	}
}

// Register registers a template; earlier registrations win for overlapping kinds
func (r *KindRouter) Register(template usecase.NotificationTemplate) {
	r.templates = append(r.templates, template)
	r.logger.Info("Registered notification template", "template", fmt.Sprintf("%T", template))
}

// GetTemplate returns the template for kind, or nil
func (r *KindRouter) GetTemplate(kind string) usecase.NotificationTemplate {
	for _, template := range r.templates {
		if template.CanRender(kind) {
			return template
		}
	}
	return nil
}
