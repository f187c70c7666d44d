package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
)

type HotelBookingHandler struct {
	bookings *usecase.HotelBookingService
	logger   logger.Logger
}

func NewHotelBookingHandler(bookings *usecase.HotelBookingService, logger logger.Logger) *HotelBookingHandler {
	return &HotelBookingHandler{bookings: bookings, logger: logger}
}

func (h *HotelBookingHandler) Create(c *gin.Context) {
	req := middleware.Validated[dto.CreateHotelBookingRequest](c)

	booking, err := h.bookings.Create(c.Request.Context(), req.ToEntity(identity(c).UserID))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, booking)
}

// List returns the caller's stays. Admins may list by user, status or check-in range.
func (h *HotelBookingHandler) List(c *gin.Context) {
	q := middleware.Validated[dto.BookingListQuery](c)
	page, err := q.PageRequest()
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	id := identity(c)
	dates := usecase.DateRange{From: q.From, To: q.To}
	var result *usecase.Page[*entity.HotelBooking]
	switch {
	case id.Admin && !dates.IsZero():
		result, err = h.bookings.ListByCheckInRange(ctx, dates, q.UserID, q.Status, page)
	case id.Admin && q.UserID != "":
		result, err = h.bookings.ListByUser(ctx, q.UserID, q.Status, page)
	case id.Admin && q.Status != "":
		result, err = h.bookings.ListByStatus(ctx, q.Status, page)
	default:
		result, err = h.bookings.ListByUser(ctx, id.UserID, q.Status, page)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Paginated(c, result.Data, result.HasMore, result.NextCursor)
}

func (h *HotelBookingHandler) owned(c *gin.Context) (*entity.HotelBooking, bool) {
	booking, err := h.bookings.Get(c.Request.Context(), pathID(c))
	if err == nil {
		err = authorizeOwner(c, booking.UserID)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return nil, false
	}
	return booking, true
}

func (h *HotelBookingHandler) respond(c *gin.Context, booking *entity.HotelBooking, err error) {
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, booking)
}

func (h *HotelBookingHandler) Get(c *gin.Context) {
	booking, ok := h.owned(c)
	if !ok {
		return
	}
	response.Data(c, http.StatusOK, booking)
}

func (h *HotelBookingHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	if err := optionalBody(c, &req); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	booking, ok := h.owned(c)
	if !ok {
		return
	}
	updated, err := h.bookings.Cancel(c.Request.Context(), booking.ID, req.Reason)
	h.respond(c, updated, err)
}

func (h *HotelBookingHandler) Pay(c *gin.Context) {
	req := middleware.Validated[dto.PaymentRequest](c)
	booking, ok := h.owned(c)
	if !ok {
		return
	}
	updated, err := h.bookings.MarkAsPaid(c.Request.Context(), booking.ID, req.TransactionReference, req.PaymentMethod)
	h.respond(c, updated, err)
}

func (h *HotelBookingHandler) adminTransition(c *gin.Context, fn func(ctx context.Context, id string) (*entity.HotelBooking, error)) {
	updated, err := fn(c.Request.Context(), pathID(c))
	h.respond(c, updated, err)
}

func (h *HotelBookingHandler) Confirm(c *gin.Context) {
	h.adminTransition(c, h.bookings.Confirm)
}

func (h *HotelBookingHandler) Complete(c *gin.Context) {
	h.adminTransition(c, h.bookings.Complete)
}

func (h *HotelBookingHandler) Refund(c *gin.Context) {
	h.adminTransition(c, h.bookings.Refund)
}

func (h *HotelBookingHandler) Delete(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}
