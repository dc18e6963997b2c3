package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// handleServiceError writes the response for an error returned by a core service.
// Server-side failures are logged at error level and their details are not echoed.
func handleServiceError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.Bool("retryable", apperrors.IsRetryable(err)))
		if apperrors.IsRetryable(err) {
			c.Header("Retry-After", "1")
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestScope returns the tenant and acting user set by middleware.TenantScope.
func requestScope(c *gin.Context) (tenantID, userID string, ok bool) {
	tenantID, ok = middleware.GetTenantIDFromContext(c)
	if !ok {
		return "", "", false
	}
	userID, _ = middleware.GetUserIDFromContext(c)
	return tenantID, userID, true
}
