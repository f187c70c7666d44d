package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/infrastructure/auth"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/pkg/logger"
)

const identityKey = "identity"

// verifyTimeout bounds a token check, including remote key fetches
const verifyTimeout = 5 * time.Second

// AdminChecker looks up the stored admin flag of a user
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Auth requires a bearer token and stores the caller's identity in the context.
// Stored admin flags are merged in when admins is set.
func Auth(verifier auth.Verifier, admins AdminChecker, log logger.Logger) gin.HandlerFunc {
	return authenticate(verifier, admins, log, false)
}

// QueryTokenAuth also accepts the token as ?token= for clients that cannot set
// headers, such as browser WebSockets
func QueryTokenAuth(verifier auth.Verifier, admins AdminChecker, log logger.Logger) gin.HandlerFunc {
	return authenticate(verifier, admins, log, true)
}

func authenticate(verifier auth.Verifier, admins AdminChecker, log logger.Logger, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Authorization header is required", nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), verifyTimeout)
		defer cancel()

		id, err := verifier.Verify(ctx, token)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		if !id.Admin && admins != nil {
			isAdmin, err := admins.IsAdmin(ctx, id.UserID)
			if err != nil {
				log.Warn("Admin lookup failed", "user_id", id.UserID, "error", err)
			}
			id.Admin = isAdmin
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireAdmin rejects authenticated callers without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id == nil {
			response.Fail(c, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		if !id.Admin {
			response.Fail(c, http.StatusForbidden, "Admin access required", nil)
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by Auth, or nil
func CurrentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

// SetIdentity stores id as the caller; used by tests and internal callers
func SetIdentity(c *gin.Context, id *auth.Identity) {
	c.Set(identityKey, id)
}
