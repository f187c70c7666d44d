package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperror.NotFound("booking missing"), http.StatusNotFound},
		{"conflict", apperror.Conflict("slug taken"), http.StatusConflict},
		{"validation", apperror.Validation(nil), http.StatusBadRequest},
		{"precondition", apperror.Precondition("already refunded"), http.StatusConflict},
		{"forbidden", apperror.Forbidden("admins only"), http.StatusForbidden},
		{"unauthorized", apperror.Unauthorized("no token"), http.StatusUnauthorized},
		{"store unavailable", apperror.StoreUnavailable(errors.New("dial tcp"), "ping"), http.StatusServiceUnavailable},
		{"query", apperror.Query("bad operator"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("load: %w", apperror.NotFound("x")), http.StatusNotFound},
		{"foreign", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/x", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestHandleError_ValidationCarriesDetails(t *testing.T) {
	err := apperror.Validation([]apperror.FieldViolation{
		{Field: "email", Message: "email is required", Code: "required"},
	})
	w := serve(func(c *gin.Context) { HandleError(c, logger.NewNopLogger(), err) })

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Validation failed", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "email", body.Details[0].Field)
}

func TestHandleError_InternalHidesCause(t *testing.T) {
	w := serve(func(c *gin.Context) {
		HandleError(c, logger.NewNopLogger(), errors.New("secret connection string"))
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestHandleError_UsesMessage(t *testing.T) {
	w := serve(func(c *gin.Context) {
		HandleError(c, logger.NewNopLogger(), apperror.NotFound("booking %s not found", "b1"))
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "booking b1 not found", body.Error)
	assert.Empty(t, body.Details)
}

func TestPaginated(t *testing.T) {
	cursor := &repository.Cursor{ID: "doc-2", Values: []interface{}{"2024-01-01T00:00:00.000Z"}}

	w := serve(func(c *gin.Context) { Paginated(c, []string{"a", "b"}, true, cursor) })
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["hasMore"])

	decoded, err := utils.DecodeCursor(body["nextCursor"].(string))
	require.NoError(t, err)
	assert.Equal(t, "doc-2", decoded.ID)

	w = serve(func(c *gin.Context) { Paginated(c, []string{}, false, nil) })
	body = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["hasMore"])
	assert.Nil(t, body["nextCursor"])
}

func TestJSONMergesPayload(t *testing.T) {
	w := serve(func(c *gin.Context) { JSON(c, http.StatusCreated, gin.H{"booking": "b1", "success": false}) })

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"booking":"b1"}`, w.Body.String())
}
