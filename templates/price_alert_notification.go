package templates

import (
	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

// PriceAlertNotificationTemplate renders triggered price alerts
type PriceAlertNotificationTemplate struct {
	layout layout
}

func NewPriceAlertNotificationTemplate() *PriceAlertNotificationTemplate {
	return &PriceAlertNotificationTemplate{
		layout: newLayout("price-alert",
			`Price drop: {{.origin}} to {{.destination}} now {{money .price}} {{.currency}}`,
			"A fare you are watching dropped to {{money .price}} {{.currency}} (your target was {{money .targetPrice}}).\n\nRoute: {{.origin}} to {{.destination}}\nAlert: {{.alertId}}\n",
			`<p>A fare you are watching dropped to <strong>{{money .price}} {{.currency}}</strong> (your target was {{money .targetPrice}}).</p><p>Route: {{.origin}} to {{.destination}}<br>Alert: {{.alertId}}</p>`),
	}
}

func (t *PriceAlertNotificationTemplate) CanRender(kind string) bool {
	return kind == entity.NotificationPriceAlertTriggered
}

func (t *PriceAlertNotificationTemplate) Render(n *entity.Notification) (repository.OutboundMessage, error) {
	return t.layout.render(n)
}
