package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// TenantHeader carries the tenant every request is scoped to.
	TenantHeader = "X-Tenant-ID"
	// UserHeader carries the acting user recorded in audit fields.
	UserHeader = "X-User-ID"

	// AnonymousUser is recorded when no user header is sent.
	AnonymousUser = "anonymous"
)

const (
	tenantIDKey = contextKey("tenantID")
	userIDKey   = contextKey("userID")
)

// TenantScope reads the tenant and acting user from request headers. Requests
// without a tenant are rejected. Identity is taken as given; there is no
// authentication at this layer.
func TenantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(TenantHeader)
		if tenantID == "" {
			GetLoggerFromContext(c).Warn("Missing tenant header")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + TenantHeader + " header"})
			return
		}
		userID := c.GetHeader(UserHeader)
		if userID == "" {
			userID = AnonymousUser
		}

		c.Set(string(tenantIDKey), tenantID)
		c.Set(string(userIDKey), userID)

		logger := GetLoggerFromContext(c).With(
			slog.String("tenant_id", tenantID),
			slog.String("user_id", userID),
		)
		c.Set(string(loggerKey), logger)
		ctx := context.WithValue(c.Request.Context(), tenantIDKey, tenantID)
		ctx = context.WithValue(ctx, userIDKey, userID)
		c.Request = c.Request.WithContext(WithLogger(ctx, logger))

		c.Next()
	}
}

// GetTenantIDFromContext retrieves the tenant ID from the Gin context.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, tenantIDKey)
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, userIDKey)
}

func stringFromContext(c *gin.Context, key contextKey) (string, bool) {
	val, exists := c.Get(string(key))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(key).(string); ok {
			return v, true
		}
		return "", false
	}
	s, ok := val.(string)
	return s, ok && s != ""
}
