package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/accounts-by-type/:accountType", h.getAccountsByType)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every active account with its current balance in the debit or credit column
// @Tags reports
// @Produce json
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), tenantID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	if !tb.Balanced {
		logger.Error("Trial balance does not balance",
			slog.String("total_debit", domain.FormatAmount(tb.TotalDebit)),
			slog.String("total_credit", domain.FormatAmount(tb.TotalCredit)))
	}
	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(tb.Rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

func (h *reportingHandler) getAccountsByType(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	accountType := domain.AccountType(c.Param("accountType"))

	accounts, err := h.reportingService.ByType(c.Request.Context(), tenantID, accountType)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_type", string(accountType))), err, "Failed to list accounts by type")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}
