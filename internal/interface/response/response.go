package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/utils"
)

// ErrorBody is the envelope of every failed request
type ErrorBody struct {
	Success bool                      `json:"success"`
	Error   string                    `json:"error"`
	Details []apperror.FieldViolation `json:"details,omitempty"`
}

// PageBody is the envelope of paginated listings
type PageBody struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	HasMore    bool        `json:"hasMore"`
	NextCursor *string     `json:"nextCursor"`
}

// JSON writes {success:true} merged with payload
func JSON(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		if k == "success" {
			continue
		}
		body[k] = v
	}
	c.JSON(status, body)
}

// Data writes {success:true, data:v}
func Data(c *gin.Context, status int, v interface{}) {
	c.JSON(status, gin.H{"success": true, "data": v})
}

// Paginated writes one page of results with its continuation cursor
func Paginated(c *gin.Context, data interface{}, hasMore bool, cursor *repository.Cursor) {
	body := PageBody{Success: true, Data: data, HasMore: hasMore}
	if hasMore && cursor != nil {
		token := utils.EncodeCursor(cursor)
		body.NextCursor = &token
	}
	c.JSON(http.StatusOK, body)
}

// NoContent acknowledges a delete
func NoContent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Fail writes an error envelope and aborts the chain
func Fail(c *gin.Context, status int, message string, details []apperror.FieldViolation) {
	c.AbortWithStatusJSON(status, ErrorBody{Success: false, Error: message, Details: details})
}

// StatusOf maps an error kind onto its HTTP status
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindPrecondition:
		return http.StatusConflict
	case apperror.KindValidation, apperror.KindQuery:
		return http.StatusBadRequest
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HandleError converts a service error into the error envelope. Internal failures
// are logged with their cause and answered with a generic message.
func HandleError(c *gin.Context, log logger.Logger, err error) {
	status := StatusOf(err)

	switch {
	case status == http.StatusInternalServerError:
		log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		Fail(c, status, "Internal server error", nil)
		return
	case status == http.StatusServiceUnavailable:
		log.Error("Document store unavailable", "path", c.FullPath(), "error", err)
		Fail(c, status, "Service temporarily unavailable", nil)
		return
	case errors.Is(err, apperror.ErrValidation):
		Fail(c, status, "Validation failed", apperror.DetailsOf(err))
		return
	}
	Fail(c, status, apperror.MessageOf(err), nil)
}
