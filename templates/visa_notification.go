package templates

import (
	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
)

// VisaNotificationTemplate renders visa application status changes
type VisaNotificationTemplate struct {
	layout layout
}

func NewVisaNotificationTemplate() *VisaNotificationTemplate {
	return &VisaNotificationTemplate{
		layout: newLayout("visa-status",
			`Your {{.visaType}} visa application for {{.destinationCountry}} is {{title .status}}`,
			"Hello {{.fullName}},\n\nYour {{.visaType}} visa application for {{.destinationCountry}} is now {{title .status}}.{{with .note}}\n\nNote from the reviewer: {{.}}{{end}}\n\nApplication: {{.applicationId}}\n",
			`<p>Hello {{.fullName}},</p><p>Your {{.visaType}} visa application for {{.destinationCountry}} is now <strong>{{title .status}}</strong>.</p>{{with .note}}<p>Note from the reviewer: {{.}}</p>{{end}}<p>Application: {{.applicationId}}</p>`),
	}
}

func (t *VisaNotificationTemplate) CanRender(kind string) bool {
	return kind == entity.NotificationVisaStatusChanged
}

func (t *VisaNotificationTemplate) Render(n *entity.Notification) (repository.OutboundMessage, error) {
	return t.layout.render(n)
}
