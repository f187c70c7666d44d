package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/pkg/apperror"
)

func newBookingService(catalog ReferenceCatalog) (*BookingService, *recordingEnqueuer) {
	log, m := testDeps()
	notes := &recordingEnqueuer{}
	return NewBookingService(newTestStore(), catalog, notes, log, m), notes
}

func TestBookingService_CreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(ReferenceCatalog{})

	b := newBooking("u1")
	b.Currency = ""
	b.Lifecycle = entity.Lifecycle{Status: entity.BookingStatusCompleted, PaymentStatus: entity.PaymentStatusPaid}
	b.Flight.Origin = "cgk"

	created, err := svc.Create(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPending, created.Status)
	assert.Equal(t, entity.PaymentStatusPending, created.PaymentStatus)
	assert.Equal(t, "USD", created.Currency)
	assert.Equal(t, "CGK", created.Flight.Origin)
}

func TestBookingService_CreateRejectsInvalid(t *testing.T) {
	svc, _ := newBookingService(ReferenceCatalog{})
	b := newBooking("u1")
	b.Email = ""
	b.TotalPrice = 0

	_, err := svc.Create(context.Background(), b)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Len(t, apperror.DetailsOf(err), 2)
}

func TestBookingService_CreateChecksReferenceCatalog(t *testing.T) {
	airlines := fakeAirlines{"GA": {Code: "GA", Name: "Garuda Indonesia", Active: true}}
	airports := fakeAirports{"CGK": {Code: "CGK", Name: "Soekarno-Hatta"}}
	svc, _ := newBookingService(ReferenceCatalog{Airlines: airlines, Airports: airports})

	_, err := svc.Create(context.Background(), newBooking("u1"))
	require.ErrorIs(t, err, apperror.ErrValidation)
	details := apperror.DetailsOf(err)
	require.Len(t, details, 1)
	assert.Equal(t, "flight.destination", details[0].Field)
	assert.Equal(t, "exists", details[0].Code)

	airports["DPS"] = &entity.Airport{Code: "DPS", Name: "Ngurah Rai"}
	_, err = svc.Create(context.Background(), newBooking("u1"))
	assert.NoError(t, err)

	airlines["GA"].Active = false
	_, err = svc.Create(context.Background(), newBooking("u1"))
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "flight.airlineCode", apperror.DetailsOf(err)[0].Field)
}

func TestBookingService_PaymentFlow(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	svc, notes := newBookingService(ReferenceCatalog{})

	created, err := svc.Create(ctx, newBooking("u1"))
	require.NoError(t, err)

	paid, err := svc.MarkAsPaid(ctx, created.ID, "TXN-123", "card")
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, paid.Status)
	assert.Equal(t, entity.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.TransactionReference)
	assert.Equal(t, "TXN-123", *paid.TransactionReference)
	assert.Greater(t, paid.UpdatedAt, created.UpdatedAt)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, paid, stored)

	refunded, err := svc.Refund(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusRefunded, refunded.Status)
	assert.Equal(t, entity.PaymentStatusRefunded, refunded.PaymentStatus)

	_, err = svc.Cancel(ctx, created.ID, "changed plans")
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	assert.Equal(t, []string{entity.NotificationBookingPaid, entity.NotificationBookingRefunded}, notes.kinds())
	assert.Equal(t, "u1@example.com", notes.items[0].email)
	assert.Equal(t, created.ID, notes.items[0].data["bookingId"])
}

func TestBookingService_TransitionsReloadState(t *testing.T) {
	ctx := context.Background()
	svc, notes := newBookingService(ReferenceCatalog{})

	created, err := svc.Create(ctx, newBooking("u1"))
	require.NoError(t, err)

	_, err = svc.Complete(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	_, err = svc.Confirm(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	cancelled, err := svc.Cancel(ctx, created.ID, "weather")
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "weather", *cancelled.CancellationReason)

	_, err = svc.Cancel(ctx, "missing", "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Equal(t, []string{entity.NotificationBookingConfirmed, entity.NotificationBookingCancelled}, notes.kinds())
	assert.Equal(t, "weather", notes.items[1].data["reason"])
}

func TestBookingService_Listings(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	svc, _ := newBookingService(ReferenceCatalog{})

	dates := []string{"2025-07-01", "2025-07-15", "2025-08-01", "2025-09-01"}
	ids := make([]string, 0, len(dates))
	for i, date := range dates {
		userID := "u1"
		if i == 3 {
			userID = "u2"
		}
		b := newBooking(userID)
		b.Flight.DepartureDate = date
		created, err := svc.Create(ctx, b)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := svc.Confirm(ctx, ids[1])
	require.NoError(t, err)

	page, err := svc.ListByUser(ctx, "u1", "", PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[2], page.Data[0].ID, "newest first")

	rest, err := svc.ListByUser(ctx, "u1", "", PageRequest{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Data, 1)
	assert.False(t, rest.HasMore)
	assert.Nil(t, rest.NextCursor)
	assert.Equal(t, ids[0], rest.Data[0].ID)

	confirmed, err := svc.ListByUser(ctx, "u1", entity.BookingStatusConfirmed, PageRequest{})
	require.NoError(t, err)
	require.Len(t, confirmed.Data, 1)
	assert.Equal(t, ids[1], confirmed.Data[0].ID)

	pending, err := svc.ListByStatus(ctx, entity.BookingStatusPending, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, pending.Data, 3)

	summer, err := svc.ListByDateRange(ctx, DateRange{From: "2025-07-10", To: "2025-08-31"}, "", "", PageRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, summer.Data, 1)
	assert.Equal(t, ids[1], summer.Data[0].ID)
	require.True(t, summer.HasMore)

	next, err := svc.ListByDateRange(ctx, DateRange{From: "2025-07-10", To: "2025-08-31"}, "", "", PageRequest{Limit: 1, Cursor: summer.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Data, 1)
	assert.Equal(t, ids[2], next.Data[0].ID)
	assert.False(t, next.HasMore)

	fromOnly, err := svc.ListByDateRange(ctx, DateRange{From: "2025-07-10"}, "", "", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1], ids[2], ids[3]}, bookingIDs(fromOnly.Data))

	toOnly, err := svc.ListByDateRange(ctx, DateRange{To: "2025-07-15"}, "", "", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1]}, bookingIDs(toOnly.Data))

	confirmedLater, err := svc.ListByDateRange(ctx, DateRange{From: "2025-07-01"}, "", entity.BookingStatusConfirmed, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, bookingIDs(confirmedLater.Data))

	otherUser, err := svc.ListByDateRange(ctx, DateRange{From: "2025-07-01"}, "u2", "", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[3]}, bookingIDs(otherUser.Data))
}

func bookingIDs(bookings []*entity.Booking) []string {
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestBookingService_Watch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(ReferenceCatalog{})

	first, err := svc.Create(ctx, newBooking("u1"))
	require.NoError(t, err)

	sub, err := svc.WatchStatus(ctx, "u1", entity.BookingStatusPending)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	snap := receive(t, sub)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, first.ID, snap.Items[0].ID)

	_, err = svc.Confirm(ctx, first.ID)
	require.NoError(t, err)

	snap = receive(t, sub)
	assert.Empty(t, snap.Items)
}
