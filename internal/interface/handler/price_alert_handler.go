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

type PriceAlertHandler struct {
	alerts *usecase.PriceAlertService
	logger logger.Logger
}

func NewPriceAlertHandler(alerts *usecase.PriceAlertService, logger logger.Logger) *PriceAlertHandler {
	return &PriceAlertHandler{alerts: alerts, logger: logger}
}

func (h *PriceAlertHandler) Create(c *gin.Context) {
	req := middleware.Validated[dto.PriceAlertRequest](c)
	alert, err := h.alerts.Create(c.Request.Context(), req.ToEntity(identity(c).UserID))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, alert)
}

func (h *PriceAlertHandler) List(c *gin.Context) {
	alerts, err := h.alerts.ListByUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, alerts)
}

func (h *PriceAlertHandler) owned(c *gin.Context, fn func(ctx context.Context, id string) (*entity.PriceAlert, error)) {
	ctx := c.Request.Context()
	alert, err := h.alerts.Get(ctx, pathID(c))
	if err == nil {
		err = authorizeOwner(c, alert.UserID)
	}
	if err == nil {
		alert, err = fn(ctx, alert.ID)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, alert)
}

func (h *PriceAlertHandler) Pause(c *gin.Context) {
	h.owned(c, h.alerts.Pause)
}

func (h *PriceAlertHandler) Resume(c *gin.Context) {
	h.owned(c, h.alerts.Resume)
}

func (h *PriceAlertHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	alert, err := h.alerts.Get(ctx, pathID(c))
	if err == nil {
		err = authorizeOwner(c, alert.UserID)
	}
	if err == nil {
		err = h.alerts.Delete(ctx, alert.ID)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

// RecordObservation evaluates an observed fare against the route's active alerts
func (h *PriceAlertHandler) RecordObservation(c *gin.Context) {
	req := middleware.Validated[dto.PriceObservationRequest](c)
	triggered, err := h.alerts.RecordPrice(c.Request.Context(), req.ToObservation())
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"triggered": triggered, "count": len(triggered)})
}
