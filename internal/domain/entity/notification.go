package entity

import (
	"time"

	"travel-booking-service/pkg/apperror"
)

const CollectionNotifications = "notifications"

// Notification kinds
const (
	NotificationBookingConfirmed    = "booking_confirmed"
	NotificationBookingPaid         = "booking_paid"
	NotificationBookingCancelled    = "booking_cancelled"
	NotificationBookingRefunded     = "booking_refunded"
	NotificationPriceAlertTriggered = "price_alert_triggered"
	NotificationVisaStatusChanged   = "visa_status_changed"
	NotificationMarketing           = "marketing"
)

// Outbox status values
const (
	NotificationStatusPending    = "PENDING"
	NotificationStatusProcessing = "PROCESSING"
	NotificationStatusSent       = "SENT"
	NotificationStatusFailed     = "FAILED"
	NotificationStatusSkipped    = "SKIPPED"
)

// MaxNotificationAttempts bounds retries of a failed send
const MaxNotificationAttempts = 3

// Notification is an outbox entry delivered by the dispatcher
type Notification struct {
	Meta
	Kind         string                 `json:"kind" validate:"required"`
	UserID       string                 `json:"userId" validate:"required"`
	Recipient    string                 `json:"recipient" validate:"required,email"`
	Data         map[string]interface{} `json:"data,omitempty"`
	Status       string                 `json:"status" validate:"required,oneof=PENDING PROCESSING SENT FAILED SKIPPED"`
	Attempts     int                    `json:"attempts"`
	LastError    *string                `json:"lastError,omitempty"`
	MessageID    *string                `json:"messageId,omitempty"`
	ProcessingAt *string                `json:"processingAt,omitempty"`
	SentAt       *string                `json:"sentAt,omitempty"`
}

func NotificationFromRecord(id string, rec Record) (*Notification, error) {
	n := &Notification{}
	if err := decodeEntity(id, rec, n, &n.Meta); err != nil {
		return nil, err
	}
	if n.Status == "" {
		n.Status = NotificationStatusPending
	}
	return n, nil
}

var NotificationCodec = Codec[*Notification]{
	Collection: CollectionNotifications,
	FromRecord: NotificationFromRecord,
	ToRecord:   func(n *Notification) Record { return n.ToRecord() },
}

func (n *Notification) ToRecord() Record {
	return encodeRecord(n)
}

func (n *Notification) Validate() error {
	return validationResult(ValidateStruct(n))
}

func (n *Notification) WithUpdates(partial Record) (*Notification, error) {
	return WithUpdates(n, partial, NotificationFromRecord)
}

func (n *Notification) MarkProcessing(at time.Time) (*Notification, error) {
	if n.Status != NotificationStatusPending {
		return nil, apperror.Precondition("cannot process a notification with status %s", n.Status)
	}
	return n.WithUpdates(Record{
		"status":       NotificationStatusProcessing,
		"processingAt": FormatTimestamp(at),
		"attempts":     n.Attempts + 1,
	})
}

func (n *Notification) MarkSent(messageID string, at time.Time) (*Notification, error) {
	if n.Status != NotificationStatusProcessing {
		return nil, apperror.Precondition("cannot mark a notification with status %s as sent", n.Status)
	}
	partial := Record{"status": NotificationStatusSent, "sentAt": FormatTimestamp(at)}
	if messageID != "" {
		partial["messageId"] = messageID
	}
	return n.WithUpdates(partial)
}

// MarkFailed records a send error. Entries under the attempt limit go back to PENDING.
func (n *Notification) MarkFailed(cause error) (*Notification, error) {
	if n.Status != NotificationStatusProcessing {
		return nil, apperror.Precondition("cannot mark a notification with status %s as failed", n.Status)
	}
	status := NotificationStatusFailed
	if n.Attempts < MaxNotificationAttempts {
		status = NotificationStatusPending
	}
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return n.WithUpdates(Record{"status": status, "lastError": msg})
}

func (n *Notification) MarkSkipped(reason string) (*Notification, error) {
	if n.Status != NotificationStatusPending && n.Status != NotificationStatusProcessing {
		return nil, apperror.Precondition("cannot skip a notification with status %s", n.Status)
	}
	return n.WithUpdates(Record{"status": NotificationStatusSkipped, "lastError": reason})
}

// IsStale reports whether a PROCESSING entry was claimed longer than timeout ago
func (n *Notification) IsStale(now time.Time, timeout time.Duration) bool {
	if n.Status != NotificationStatusProcessing || n.ProcessingAt == nil {
		return false
	}
	t, err := ParseTimestamp(*n.ProcessingAt)
	if err != nil {
		return true
	}
	return now.Sub(t) > timeout
}
