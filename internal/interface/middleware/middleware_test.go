package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/infrastructure/auth"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

type stubVerifier struct {
	tokens map[string]*auth.Identity
}

func (v stubVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	id, ok := v.tokens[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	copied := *id
	return &copied, nil
}

type stubAdmins struct {
	admins map[string]bool
	err    error
}

func (a stubAdmins) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return a.admins[userID], a.err
}

func identityEcho(c *gin.Context) {
	id := CurrentIdentity(c)
	c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "admin": id.Admin})
}

func TestAuth(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]*auth.Identity{
		"user":  {UserID: "u1", Email: "u1@example.com"},
		"admin": {UserID: "a1", Admin: true},
		"promo": {UserID: "u2"},
	}}
	admins := stubAdmins{admins: map[string]bool{"u2": true}}

	r := gin.New()
	r.GET("/me", Auth(verifier, admins, logger.NewNopLogger()), identityEcho)
	r.GET("/admin", Auth(verifier, admins, logger.NewNopLogger()), RequireAdmin(), identityEcho)
	r.GET("/stream", QueryTokenAuth(verifier, nil, logger.NewNopLogger()), identityEcho)

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantUser   string
		wantAdmin  bool
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "", false},
		{"wrong scheme", "/me", "Basic user", http.StatusUnauthorized, "", false},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized, "", false},
		{"valid token", "/me", "Bearer user", http.StatusOK, "u1", false},
		{"lowercase scheme", "/me", "bearer user", http.StatusOK, "u1", false},
		{"stored admin flag", "/me", "Bearer promo", http.StatusOK, "u2", true},
		{"admin route as user", "/admin", "Bearer user", http.StatusForbidden, "", false},
		{"admin route as admin", "/admin", "Bearer admin", http.StatusOK, "a1", true},
		{"query token ignored without opt-in", "/me?token=user", "", http.StatusUnauthorized, "", false},
		{"query token", "/stream?token=user", "", http.StatusOK, "u1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(r, http.MethodGet, tt.target, "", headers)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				decodeError(t, w)
				return
			}
			var body struct {
				UserID string `json:"userId"`
				Admin  bool   `json:"admin"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantUser, body.UserID)
			assert.Equal(t, tt.wantAdmin, body.Admin)
		})
	}
}

func TestAuth_AdminLookupFailureIsNotAdmin(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]*auth.Identity{"user": {UserID: "u1"}}}
	r := gin.New()
	r.GET("/admin", Auth(verifier, stubAdmins{err: errors.New("store down")}, logger.NewNopLogger()), RequireAdmin(), identityEcho)

	w := perform(r, http.MethodGet, "/admin", "", map[string]string{"Authorization": "Bearer user"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_WithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAdmin(), identityEcho)
	w := perform(r, http.MethodGet, "/admin", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNopLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Internal server error", body.Error)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Logger(logger.NewNopLogger()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/ok", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/bad", "", nil).Code)
	assert.Equal(t, http.StatusBadGateway, perform(r, http.MethodGet, "/fail", "", nil).Code)
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	m := metrics.NewMetricsWithRegistry("test", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/items/1", "", nil)
	perform(r, http.MethodGet, "/items/2", "", nil)
	perform(r, http.MethodGet, "/health", "", nil)
	perform(r, http.MethodGet, "/missing", "", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequests))
}
