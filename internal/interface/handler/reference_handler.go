package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
)

// ReferenceHandler exposes the airline and airport catalog
type ReferenceHandler struct {
	airlines repository.AirlineRepository
	airports repository.AirportRepository
	logger   logger.Logger
}

func NewReferenceHandler(airlines repository.AirlineRepository, airports repository.AirportRepository, logger logger.Logger) *ReferenceHandler {
	return &ReferenceHandler{airlines: airlines, airports: airports, logger: logger}
}

func (h *ReferenceHandler) GetAirline(c *gin.Context) {
	p := middleware.Validated[dto.CodeParam](c)
	if h.airlines == nil {
		response.HandleError(c, h.logger, apperror.NotFound("reference catalog is not configured"))
		return
	}
	airline, err := h.airlines.GetByCode(c.Request.Context(), p.Code)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	if airline == nil {
		response.HandleError(c, h.logger, apperror.NotFound("airline %s not found", p.Code))
		return
	}
	response.Data(c, http.StatusOK, airline)
}

func (h *ReferenceHandler) GetAirport(c *gin.Context) {
	p := middleware.Validated[dto.CodeParam](c)
	if h.airports == nil {
		response.HandleError(c, h.logger, apperror.NotFound("reference catalog is not configured"))
		return
	}
	airport, err := h.airports.GetByCode(c.Request.Context(), p.Code)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	if airport == nil {
		response.HandleError(c, h.logger, apperror.NotFound("airport %s not found", p.Code))
		return
	}
	response.Data(c, http.StatusOK, airport)
}
