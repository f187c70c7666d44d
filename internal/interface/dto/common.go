package dto

import (
	"strings"

	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/utils"
)

// IDParam is the :id path parameter
type IDParam struct {
	ID string `uri:"id" validate:"required,max=128"`
}

// SlugParam is the :slug path parameter
type SlugParam struct {
	Slug string `uri:"slug" validate:"required,max=120"`
}

// CodeParam is an airline or airport code in the path
type CodeParam struct {
	Code string `uri:"code" validate:"required,min=2,max=3,alphanum"`
}

// PageQuery carries limit and cursor for paginated listings
type PageQuery struct {
	Limit  int    `form:"limit" json:"limit" validate:"gte=0,lte=100"`
	Cursor string `form:"cursor" json:"cursor" validate:"omitempty,max=2048"`
}

func (q *PageQuery) Defaults() {
	if q.Limit == 0 {
		q.Limit = usecase.DefaultPageSize
	}
}

// PageRequest decodes the cursor token. A malformed token is a validation error.
func (q PageQuery) PageRequest() (usecase.PageRequest, error) {
	cursor, err := utils.DecodeCursor(q.Cursor)
	if err != nil {
		return usecase.PageRequest{}, apperror.Validation([]apperror.FieldViolation{{
			Field:   "cursor",
			Message: "cursor is not a valid page token",
			Code:    "cursor",
		}})
	}
	return usecase.PageRequest{Limit: q.Limit, Cursor: cursor}, nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func upperPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := upper(*s)
	return &v
}

func currencyOrDefault(s string) string {
	if s = upper(s); s == "" {
		return "USD"
	}
	return s
}
