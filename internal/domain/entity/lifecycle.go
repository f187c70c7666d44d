package entity

import (
	"travel-booking-service/pkg/apperror"
)

// Booking status values
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusRefunded  = "refunded"
)

// Payment status values
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Lifecycle is the status/payment state shared by flight and hotel bookings.
// Every transition returns a new value; the receiver is left untouched.
type Lifecycle struct {
	Status               string  `json:"status" validate:"required,oneof=pending confirmed cancelled completed refunded"`
	PaymentStatus        string  `json:"paymentStatus" validate:"required,oneof=pending paid failed refunded"`
	PaymentMethod        *string `json:"paymentMethod,omitempty"`
	TransactionReference *string `json:"transactionReference,omitempty"`
	PaidAt               *string `json:"paidAt,omitempty"`
	ConfirmedAt          *string `json:"confirmedAt,omitempty"`
	CancelledAt          *string `json:"cancelledAt,omitempty"`
	CancellationReason   *string `json:"cancellationReason,omitempty"`
	CompletedAt          *string `json:"completedAt,omitempty"`
	RefundedAt           *string `json:"refundedAt,omitempty"`
}

// LifecycleRecord is the partial record persisted after a status transition
func (l Lifecycle) LifecycleRecord() Record {
	return encodeRecord(l)
}

// NewLifecycle is the state of a freshly created booking
func NewLifecycle() Lifecycle {
	return Lifecycle{Status: BookingStatusPending, PaymentStatus: PaymentStatusPending}
}

func (l Lifecycle) withDefaults() Lifecycle {
	if l.Status == "" {
		l.Status = BookingStatusPending
	}
	if l.PaymentStatus == "" {
		l.PaymentStatus = PaymentStatusPending
	}
	return l
}

// CanCancel reports whether Cancel would succeed
func (l Lifecycle) CanCancel() bool {
	if l.PaymentStatus == PaymentStatusRefunded {
		return false
	}
	return l.Status == BookingStatusPending || l.Status == BookingStatusConfirmed
}

// Cancel moves pending or confirmed bookings to cancelled
func (l Lifecycle) Cancel(reason string) (Lifecycle, error) {
	if !l.CanCancel() {
		return l, apperror.Precondition("cannot cancel a booking with status %s and payment status %s", l.Status, l.PaymentStatus)
	}
	l.Status = BookingStatusCancelled
	l.CancelledAt = timestampPtr(Now())
	if reason != "" {
		l.CancellationReason = &reason
	}
	return l, nil
}

// Confirm moves a pending booking to confirmed
func (l Lifecycle) Confirm() (Lifecycle, error) {
	if l.Status != BookingStatusPending {
		return l, apperror.Precondition("cannot confirm a booking with status %s", l.Status)
	}
	l.Status = BookingStatusConfirmed
	l.ConfirmedAt = timestampPtr(Now())
	return l, nil
}

// MarkAsPaid records a payment; the booking ends up confirmed and paid
func (l Lifecycle) MarkAsPaid(reference, method string) (Lifecycle, error) {
	if l.Status != BookingStatusPending && l.Status != BookingStatusConfirmed {
		return l, apperror.Precondition("cannot record payment for a booking with status %s", l.Status)
	}
	if l.PaymentStatus != PaymentStatusPending && l.PaymentStatus != PaymentStatusFailed {
		return l, apperror.Precondition("booking payment is already %s", l.PaymentStatus)
	}
	if reference == "" {
		return l, apperror.Precondition("transaction reference is required")
	}
	now := Now()
	if l.Status == BookingStatusPending {
		l.ConfirmedAt = timestampPtr(now)
	}
	l.Status = BookingStatusConfirmed
	l.PaymentStatus = PaymentStatusPaid
	l.TransactionReference = &reference
	if method != "" {
		l.PaymentMethod = &method
	}
	l.PaidAt = timestampPtr(now)
	return l, nil
}

// MarkPaymentFailed records a failed payment attempt on a pending payment
func (l Lifecycle) MarkPaymentFailed() (Lifecycle, error) {
	if l.PaymentStatus != PaymentStatusPending {
		return l, apperror.Precondition("cannot fail a payment with status %s", l.PaymentStatus)
	}
	l.PaymentStatus = PaymentStatusFailed
	return l, nil
}

// Complete moves a confirmed booking to completed
func (l Lifecycle) Complete() (Lifecycle, error) {
	if l.Status != BookingStatusConfirmed {
		return l, apperror.Precondition("cannot complete a booking with status %s", l.Status)
	}
	l.Status = BookingStatusCompleted
	l.CompletedAt = timestampPtr(Now())
	return l, nil
}

// Refund applies to paid bookings that are confirmed or were cancelled after payment
func (l Lifecycle) Refund() (Lifecycle, error) {
	if l.PaymentStatus != PaymentStatusPaid {
		return l, apperror.Precondition("cannot refund a booking with payment status %s", l.PaymentStatus)
	}
	if l.Status != BookingStatusConfirmed && l.Status != BookingStatusCancelled {
		return l, apperror.Precondition("cannot refund a booking with status %s", l.Status)
	}
	l.Status = BookingStatusRefunded
	l.PaymentStatus = PaymentStatusRefunded
	l.RefundedAt = timestampPtr(Now())
	return l, nil
}
