package handler

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/infrastructure/auth"
	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/pkg/apperror"
)

func identity(c *gin.Context) *auth.Identity {
	if id := middleware.CurrentIdentity(c); id != nil {
		return id
	}
	return &auth.Identity{}
}

// pathID returns the validated :id parameter
func pathID(c *gin.Context) string {
	if p := middleware.Validated[dto.IDParam](c); p != nil {
		return p.ID
	}
	return c.Param("id")
}

// authorizeOwner lets the owner and admins through
func authorizeOwner(c *gin.Context, ownerID string) error {
	id := identity(c)
	if id.Admin || (id.UserID != "" && id.UserID == ownerID) {
		return nil
	}
	return apperror.Forbidden("you do not have access to this resource")
}

// optionalBody decodes and validates a body that may be omitted entirely
func optionalBody(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	err := json.NewDecoder(c.Request.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apperror.Validation([]apperror.FieldViolation{{Field: "body", Message: "request body is not valid JSON", Code: "json"}})
	}
	if violations := entity.ValidateStruct(dst); len(violations) > 0 {
		return apperror.Validation(violations)
	}
	return nil
}
