package templates

import (
	"fmt"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

const bookingSummaryText = `{{if .flightNumber}}Flight {{.flightNumber}} from {{.origin}} to {{.destination}} on {{.date}}{{else}}{{.hotelName}}, {{.city}} from {{.date}} to {{.checkOut}}{{end}}
Total: {{money .totalPrice}} {{.currency}}
Reference: {{.bookingId}}`

const bookingSummaryHTML = `<p>{{if .flightNumber}}Flight <strong>{{.flightNumber}}</strong> from {{.origin}} to {{.destination}} on {{.date}}{{else}}<strong>{{.hotelName}}</strong>, {{.city}} from {{.date}} to {{.checkOut}}{{end}}</p>
<p>Total: {{money .totalPrice}} {{.currency}}<br>Reference: {{.bookingId}}</p>`

// BookingNotificationTemplate renders booking lifecycle notifications for flights and hotels
type BookingNotificationTemplate struct {
	layouts map[string]layout
}

// NewBookingNotificationTemplate creates the booking lifecycle templates
func NewBookingNotificationTemplate() *BookingNotificationTemplate {
	return &BookingNotificationTemplate{
		layouts: map[string]layout{
			entity.NotificationBookingConfirmed: newLayout("booking-confirmed",
				`Your booking {{.bookingId}} is confirmed`,
				"Good news, your booking is confirmed.\n\n"+bookingSummaryText+"\n",
				`<p>Good news, your booking is confirmed.</p>`+bookingSummaryHTML),
			entity.NotificationBookingPaid: newLayout("booking-paid",
				`Payment received for booking {{.bookingId}}`,
				"We received your payment.\n\n"+bookingSummaryText+"\n",
				`<p>We received your payment.</p>`+bookingSummaryHTML),
			entity.NotificationBookingCancelled: newLayout("booking-cancelled",
				`Booking {{.bookingId}} was cancelled`,
				"Your booking was cancelled.{{with .reason}} Reason: {{.}}{{end}}\n\n"+bookingSummaryText+"\n",
				`<p>Your booking was cancelled.{{with .reason}} Reason: {{.}}{{end}}</p>`+bookingSummaryHTML),
			entity.NotificationBookingRefunded: newLayout("booking-refunded",
				`Refund issued for booking {{.bookingId}}`,
				"Your refund is on its way.\n\n"+bookingSummaryText+"\n",
				`<p>Your refund is on its way.</p>`+bookingSummaryHTML),
		},
	}
}

// CanRender determines if this template handles the notification kind
func (t *BookingNotificationTemplate) CanRender(kind string) bool {
	_, ok := t.layouts[kind]
	return ok
}

// Render builds the outbound message for the notification
func (t *BookingNotificationTemplate) Render(n *entity.Notification) (repository.OutboundMessage, error) {
	l, ok := t.layouts[n.Kind]
	if !ok {
		return repository.OutboundMessage{}, fmt.Errorf("no booking template for kind %s", n.Kind)
	}
	return l.render(n)
}
