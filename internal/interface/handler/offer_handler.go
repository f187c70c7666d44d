package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
)

// OfferHandler serves marketing offers and deals
type OfferHandler struct {
	offers *usecase.OfferService
	logger logger.Logger
}

func NewOfferHandler(offers *usecase.OfferService, logger logger.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

// List returns offers that are currently running
func (h *OfferHandler) List(c *gin.Context) {
	q := middleware.Validated[dto.CategoryQuery](c)
	page, err := q.PageRequest()
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	result, err := h.offers.ListActive(c.Request.Context(), q.Category, page)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Paginated(c, result.Data, result.HasMore, result.NextCursor)
}

func (h *OfferHandler) Get(c *gin.Context) {
	o, err := h.offers.Get(c.Request.Context(), pathID(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, o)
}

func (h *OfferHandler) GetBySlug(c *gin.Context) {
	p := middleware.Validated[dto.SlugParam](c)
	o, err := h.offers.GetBySlug(c.Request.Context(), p.Slug)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, o)
}

func (h *OfferHandler) Create(c *gin.Context) {
	req := middleware.Validated[dto.OfferRequest](c)
	o, err := h.offers.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, o)
}

func (h *OfferHandler) Update(c *gin.Context) {
	o, err := h.offers.Update(c.Request.Context(), pathID(c), middleware.PartialRecord(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, o)
}

func (h *OfferHandler) Delete(c *gin.Context) {
	if err := h.offers.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

// ListDeals returns unexpired active deals
func (h *OfferHandler) ListDeals(c *gin.Context) {
	q := middleware.Validated[dto.CategoryQuery](c)
	page, err := q.PageRequest()
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	result, err := h.offers.ListDeals(c.Request.Context(), q.Category, page)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Paginated(c, result.Data, result.HasMore, result.NextCursor)
}

func (h *OfferHandler) GetDeal(c *gin.Context) {
	d, err := h.offers.GetDeal(c.Request.Context(), pathID(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"data": d, "discountPercent": d.DiscountPercent()})
}

func (h *OfferHandler) CreateDeal(c *gin.Context) {
	req := middleware.Validated[dto.DealRequest](c)
	d, err := h.offers.CreateDeal(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, d)
}

func (h *OfferHandler) DeleteDeal(c *gin.Context) {
	if err := h.offers.DeleteDeal(c.Request.Context(), pathID(c)); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}
