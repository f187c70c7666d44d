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

type VisaApplicationHandler struct {
	applications *usecase.VisaApplicationService
	logger       logger.Logger
}

func NewVisaApplicationHandler(applications *usecase.VisaApplicationService, logger logger.Logger) *VisaApplicationHandler {
	return &VisaApplicationHandler{applications: applications, logger: logger}
}

// Create opens a draft application for the caller
func (h *VisaApplicationHandler) Create(c *gin.Context) {
	req := middleware.Validated[dto.VisaApplicationRequest](c)

	app, err := h.applications.Create(c.Request.Context(), req.ToEntity(identity(c).UserID))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, app)
}

// List returns the caller's applications; admins filtering by status see everyone's
func (h *VisaApplicationHandler) List(c *gin.Context) {
	q := middleware.Validated[dto.VisaListQuery](c)
	page, err := q.PageRequest()
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}

	id := identity(c)
	var result *usecase.Page[*entity.VisaApplication]
	if id.Admin && q.Status != "" {
		result, err = h.applications.ListByStatus(c.Request.Context(), q.Status, page)
	} else {
		result, err = h.applications.ListByUser(c.Request.Context(), id.UserID, page)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Paginated(c, result.Data, result.HasMore, result.NextCursor)
}

func (h *VisaApplicationHandler) owned(c *gin.Context) (*entity.VisaApplication, bool) {
	app, err := h.applications.Get(c.Request.Context(), pathID(c))
	if err == nil {
		err = authorizeOwner(c, app.UserID)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return nil, false
	}
	return app, true
}

func (h *VisaApplicationHandler) respond(c *gin.Context, app *entity.VisaApplication, err error) {
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, app)
}

func (h *VisaApplicationHandler) Get(c *gin.Context) {
	app, ok := h.owned(c)
	if !ok {
		return
	}
	response.Data(c, http.StatusOK, app)
}

// Update edits a draft with the fields present in the body
func (h *VisaApplicationHandler) Update(c *gin.Context) {
	app, ok := h.owned(c)
	if !ok {
		return
	}
	updated, err := h.applications.Update(c.Request.Context(), app.ID, middleware.PartialRecord(c))
	h.respond(c, updated, err)
}

func (h *VisaApplicationHandler) ownerTransition(c *gin.Context, fn func(ctx context.Context, id string) (*entity.VisaApplication, error)) {
	app, ok := h.owned(c)
	if !ok {
		return
	}
	updated, err := fn(c.Request.Context(), app.ID)
	h.respond(c, updated, err)
}

func (h *VisaApplicationHandler) Submit(c *gin.Context) {
	h.ownerTransition(c, h.applications.Submit)
}

func (h *VisaApplicationHandler) Withdraw(c *gin.Context) {
	h.ownerTransition(c, h.applications.Withdraw)
}

func (h *VisaApplicationHandler) StartReview(c *gin.Context) {
	updated, err := h.applications.StartReview(c.Request.Context(), pathID(c))
	h.respond(c, updated, err)
}

func (h *VisaApplicationHandler) decide(c *gin.Context, fn func(ctx context.Context, id, note string) (*entity.VisaApplication, error)) {
	var req dto.DecisionRequest
	if err := optionalBody(c, &req); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	updated, err := fn(c.Request.Context(), pathID(c), req.Note)
	h.respond(c, updated, err)
}

func (h *VisaApplicationHandler) Approve(c *gin.Context) {
	h.decide(c, h.applications.Approve)
}

func (h *VisaApplicationHandler) Reject(c *gin.Context) {
	h.decide(c, h.applications.Reject)
}

// UploadURL issues a presigned URL and records the pending document on the draft
func (h *VisaApplicationHandler) UploadURL(c *gin.Context) {
	req := middleware.Validated[dto.UploadURLRequest](c)
	app, ok := h.owned(c)
	if !ok {
		return
	}

	upload, updated, err := h.applications.RequestDocumentUpload(c.Request.Context(), app.ID, req.FileName, req.ContentType)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"upload": upload, "data": updated})
}
