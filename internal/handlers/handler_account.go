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

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService   portssvc.AccountSvcFacade
	reportingService portssvc.ReportingService
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, rs portssvc.ReportingService) *accountHandler {
	return &accountHandler{
		accountService:   as,
		reportingService: rs,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, reportingService portssvc.ReportingService) {
	h := newAccountHandler(accountService, reportingService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/by-id/:accountID", h.getAccountByID)
		accounts.GET("/:code", h.getAccount)
		accounts.PUT("/:code", h.updateAccount)
		accounts.DELETE("/:code", h.deactivateAccount)
		accounts.GET("/:code/children", h.listChildren)
		accounts.GET("/:code/statement", h.getStatement)
	}
}

// createAccount godoc
// @Summary Register a new account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Failure 422 {object} map[string]string "Validation error or parent not found"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, ok := requestScope(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing tenant"})
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create account", slog.String("account_code", req.Code))

	account, err := h.accountService.RegisterAccount(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	code := c.Param("code")

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccountByID(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID, accountID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce  json
// @Param   type query string false "Account type filter"
// @Param   activeOnly query bool false "Only active accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var (
		accounts []domain.Account
		err      error
	)
	ctx := c.Request.Context()
	switch {
	case params.Type != "":
		accounts, err = h.accountService.ListAccountsByType(ctx, tenantID, domain.AccountType(params.Type))
	case params.ActiveOnly:
		accounts, err = h.accountService.ListActiveAccounts(ctx, tenantID)
	default:
		accounts, err = h.accountService.ListAccounts(ctx, tenantID)
	}
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list accounts")
		return
	}

	if params.Type != "" && params.ActiveOnly {
		active := accounts[:0]
		for _, a := range accounts {
			if a.IsActive {
				active = append(active, a)
			}
		}
		accounts = active
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates descriptive fields, the parent, or the active flag of an account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   code path string true "Account code"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} map[string]string "Hierarchy cycle"
// @Router /accounts/{code} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)
	code := c.Param("code")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), tenantID, code, req, userID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Tags accounts
// @Param   code path string true "Account code"
// @Success 204 "No Content"
// @Router /accounts/{code} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, userID, _ := requestScope(c)
	code := c.Param("code")

	if err := h.accountService.DeactivateAccount(c.Request.Context(), tenantID, code, userID); err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) listChildren(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	code := c.Param("code")

	children, err := h.reportingService.ChildrenOf(c.Request.Context(), tenantID, code)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "Failed to list child accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(children)})
}

// getStatement godoc
// @Summary Account statement
// @Description Lists posted lines against the account with a running balance
// @Tags reports
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountStatementResponse
// @Router /accounts/{code}/statement [get]
func (h *accountHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	tenantID, _, _ := requestScope(c)
	code := c.Param("code")

	account, lines, err := h.reportingService.AccountStatement(c.Request.Context(), tenantID, code)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "Failed to build account statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountStatementResponse(account, lines))
}
