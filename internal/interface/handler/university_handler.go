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

type UniversityHandler struct {
	universities *usecase.UniversityService
	logger       logger.Logger
}

func NewUniversityHandler(universities *usecase.UniversityService, logger logger.Logger) *UniversityHandler {
	return &UniversityHandler{universities: universities, logger: logger}
}

func (h *UniversityHandler) List(c *gin.Context) {
	q := middleware.Validated[dto.UniversityListQuery](c)
	page, err := q.PageRequest()
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}

	result, err := h.universities.List(c.Request.Context(), usecase.UniversityFilter{Country: q.Country, Featured: q.Featured}, page)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Paginated(c, result.Data, result.HasMore, result.NextCursor)
}

func (h *UniversityHandler) Get(c *gin.Context) {
	u, err := h.universities.Get(c.Request.Context(), pathID(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, u)
}

func (h *UniversityHandler) GetBySlug(c *gin.Context) {
	p := middleware.Validated[dto.SlugParam](c)
	u, err := h.universities.GetBySlug(c.Request.Context(), p.Slug)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, u)
}

func (h *UniversityHandler) Create(c *gin.Context) {
	req := middleware.Validated[dto.UniversityRequest](c)
	u, err := h.universities.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, u)
}

func (h *UniversityHandler) Update(c *gin.Context) {
	u, err := h.universities.Update(c.Request.Context(), pathID(c), middleware.PartialRecord(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, u)
}

// Delete removes the university together with its programs
func (h *UniversityHandler) Delete(c *gin.Context) {
	if err := h.universities.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

func (h *UniversityHandler) ListPrograms(c *gin.Context) {
	q := middleware.Validated[dto.ProgramListQuery](c)
	programs, err := h.universities.ListPrograms(c.Request.Context(), pathID(c), q.Degree)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, programs)
}

func (h *UniversityHandler) CreateProgram(c *gin.Context) {
	req := middleware.Validated[dto.ProgramRequest](c)
	p, err := h.universities.CreateProgram(c.Request.Context(), pathID(c), req.ToEntity())
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, p)
}

func (h *UniversityHandler) GetProgram(c *gin.Context) {
	p, err := h.universities.GetProgram(c.Request.Context(), pathID(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, p)
}

func (h *UniversityHandler) DeleteProgram(c *gin.Context) {
	if err := h.universities.DeleteProgram(c.Request.Context(), pathID(c)); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}
