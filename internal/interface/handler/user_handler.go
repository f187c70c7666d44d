package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
)

type UserHandler struct {
	users  *usecase.UserService
	logger logger.Logger
}

func NewUserHandler(users *usecase.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), identity(c).UserID)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, u)
}

// UpsertMe registers the caller on first sign-in and applies profile changes
func (h *UserHandler) UpsertMe(c *gin.Context) {
	id := identity(c)
	u, err := h.users.Upsert(c.Request.Context(), id.UserID, id.Email, middleware.PartialRecord(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, u)
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.users.GetPreferences(c.Request.Context(), identity(c).UserID)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, prefs)
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	prefs, err := h.users.UpdatePreferences(c.Request.Context(), identity(c).UserID, middleware.PartialRecord(c))
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, prefs)
}

func (h *UserHandler) AddPushSubscription(c *gin.Context) {
	req := middleware.Validated[dto.PushSubscriptionRequest](c)
	sub, err := h.users.AddPushSubscription(c.Request.Context(), identity(c).UserID, &entity.PushSubscription{
		Endpoint:  req.Endpoint,
		Keys:      req.Keys,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusCreated, sub)
}

func (h *UserHandler) ListPushSubscriptions(c *gin.Context) {
	subs, err := h.users.ListPushSubscriptions(c.Request.Context(), identity(c).UserID)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.Data(c, http.StatusOK, subs)
}

func (h *UserHandler) RemovePushSubscription(c *gin.Context) {
	if err := h.users.RemovePushSubscription(c.Request.Context(), identity(c).UserID, pathID(c)); err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	response.NoContent(c)
}

// SetAdmin grants or revokes the admin role of another user
func (h *UserHandler) SetAdmin(c *gin.Context) {
	req := middleware.Validated[dto.SetAdminRequest](c)
	u, err := h.users.SetAdmin(c.Request.Context(), pathID(c), *req.Admin)
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	h.logger.Info("Admin role changed", "user_id", u.ID, "admin", u.Admin, "by", identity(c).UserID)
	response.Data(c, http.StatusOK, u)
}
