package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/handlers"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/SscSPs/general_ledger/internal/platform/config"
	"github.com/SscSPs/general_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

func (m *MockReportingService) TrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalance, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockReportingService) ByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockReportingService) ByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockReportingService) ChildrenOf(ctx context.Context, tenantID string, code string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockReportingService) AccountStatement(ctx context.Context, tenantID string, code string) (*domain.Account, []domain.AccountStatementLine, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.Get(1).([]domain.AccountStatementLine), args.Error(2)
}

// --- Test Suite Setup ---

type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	container *portssvc.ServiceContainer
	tenantID  string
}

func newRouter(cfg *config.Config, container *portssvc.ServiceContainer) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		return nil, err
	}
	return r, nil
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.tenantID = "tenant-http"
	suite.container = services.NewServiceContainer(memory.NewStore().Repositories())

	router, err := newRouter(&config.Config{}, suite.container)
	suite.Require().NoError(err)
	suite.router = router
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) do(method, path string, body any, tenantID string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set(middleware.TenantHeader, tenantID)
	}
	req.Header.Set(middleware.UserHeader, "clerk-1")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, target any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func (suite *HandlerTestSuite) createAccount(code, accountType, opening string) dto.AccountResponse {
	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"code":           code,
		"name":           code + " account",
		"accountType":    accountType,
		"openingBalance": opening,
	}, suite.tenantID)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AccountResponse
	suite.decode(w, &resp)
	return resp
}

func (suite *HandlerTestSuite) createDraft(lines []map[string]any) dto.JournalEntryResponse {
	w := suite.do(http.MethodPost, "/api/v1/journal-entries", map[string]any{
		"description": "Cash sale",
		"lines":       lines,
	}, suite.tenantID)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.JournalEntryResponse
	suite.decode(w, &resp)
	return resp
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestMissingTenantIsRejected() {
	w := suite.do(http.MethodGet, "/api/v1/accounts", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateAccount() {
	resp := suite.createAccount("A-CASH", "ASSET", "1000.00")
	suite.Equal("A-CASH", resp.Code)
	suite.Equal(domain.Debit, resp.NormalSide)
	suite.Equal("1000.00", resp.OpeningBalance)
	suite.Equal("1000.00", resp.CurrentBalance)
	suite.Equal("clerk-1", resp.CreatedBy)

	suite.Run("duplicate code", func() {
		w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
			"code": "A-CASH", "name": "again", "accountType": "ASSET",
		}, suite.tenantID)
		suite.Equal(http.StatusConflict, w.Code)
	})

	suite.Run("unknown account type fails binding", func() {
		w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
			"code": "X", "name": "x", "accountType": "GOODWILL",
		}, suite.tenantID)
		suite.Equal(http.StatusBadRequest, w.Code)
	})

	suite.Run("three decimal places fail binding", func() {
		w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
			"code": "Y", "name": "y", "accountType": "ASSET", "openingBalance": "1.005",
		}, suite.tenantID)
		suite.Equal(http.StatusBadRequest, w.Code)
	})

	suite.Run("missing parent", func() {
		w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
			"code": "Z", "name": "z", "accountType": "ASSET", "parentCode": "NOPE",
		}, suite.tenantID)
		suite.Equal(http.StatusUnprocessableEntity, w.Code)
	})
}

func (suite *HandlerTestSuite) TestGetAccount() {
	created := suite.createAccount("A-BANK", "ASSET", "0")

	w := suite.do(http.MethodGet, "/api/v1/accounts/A-BANK", nil, suite.tenantID)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/by-id/"+created.AccountID, nil, suite.tenantID)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/by-id/"+created.AccountID, nil, "tenant-other")
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/A-BANK", nil, "tenant-other")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestHierarchyAndDeactivate() {
	suite.createAccount("1000", "ASSET", "0")
	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]any{
		"code": "1100", "name": "Petty cash", "accountType": "ASSET", "parentCode": "1000",
	}, suite.tenantID)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/v1/accounts/1000/children", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code)
	var children dto.ListAccountsResponse
	suite.decode(w, &children)
	suite.Require().Len(children.Accounts, 1)
	suite.Equal("1100", children.Accounts[0].Code)
	suite.Equal(1, children.Accounts[0].Level)

	w = suite.do(http.MethodPut, "/api/v1/accounts/1000", map[string]any{"parentCode": "1100"}, suite.tenantID)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodDelete, "/api/v1/accounts/1100", nil, suite.tenantID)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts?activeOnly=true", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code)
	var active dto.ListAccountsResponse
	suite.decode(w, &active)
	suite.Require().Len(active.Accounts, 1)
	suite.Equal("1000", active.Accounts[0].Code)
}

func (suite *HandlerTestSuite) TestJournalLifecycle() {
	suite.createAccount("A-CASH", "ASSET", "1000.00")
	suite.createAccount("A-SALES", "REVENUE", "0")
	suite.createAccount("E-CAPITAL", "EQUITY", "1000.00")

	draft := suite.createDraft([]map[string]any{
		{"accountCode": "A-CASH", "debitAmount": "150.00"},
		{"accountCode": "A-SALES", "creditAmount": "150.00"},
	})
	suite.Equal("JE-000001", draft.EntryNumber)
	suite.Equal(domain.Draft, draft.Status)
	suite.Equal("150.00", draft.TotalDebit)

	w := suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/post", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var posted dto.JournalEntryResponse
	suite.decode(w, &posted)
	suite.Equal(domain.Posted, posted.Status)
	suite.Equal("clerk-1", posted.PostedBy)

	w = suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/post", nil, suite.tenantID)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/A-CASH", nil, suite.tenantID)
	var cash dto.AccountResponse
	suite.decode(w, &cash)
	suite.Equal("1150.00", cash.CurrentBalance)

	w = suite.do(http.MethodGet, "/api/v1/reports/trial-balance", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tb dto.TrialBalanceResponse
	suite.decode(w, &tb)
	suite.True(tb.Balanced)
	suite.Equal("1150.00", tb.Totals.Debit)

	w = suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/reverse", nil, suite.tenantID)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reversed dto.ReverseJournalEntryResponse
	suite.decode(w, &reversed)
	suite.Equal(domain.Reversed, reversed.Original.Status)
	suite.Equal("RV-000001", reversed.Reversal.EntryNumber)
	suite.Equal("JE-000001", reversed.Reversal.ReversalOf)

	w = suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/reverse", nil, suite.tenantID)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/A-CASH/statement", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code)
	var statement dto.AccountStatementResponse
	suite.decode(w, &statement)
	suite.Len(statement.Lines, 2)
	suite.Equal("1000.00", statement.ClosingBalance)

	w = suite.do(http.MethodGet, "/api/v1/journal-entries?status=POSTED", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListJournalEntriesResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Entries, 1)
	suite.Equal("RV-000001", list.Entries[0].EntryNumber)
}

func (suite *HandlerTestSuite) TestJournalRejections() {
	suite.createAccount("A-CASH", "ASSET", "0")
	suite.createAccount("A-SALES", "REVENUE", "0")

	w := suite.do(http.MethodPost, "/api/v1/journal-entries", map[string]any{
		"lines": []map[string]any{
			{"accountCode": "A-CASH", "debitAmount": "100.00"},
			{"accountCode": "A-SALES", "creditAmount": "90.00"},
		},
	}, suite.tenantID)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/journal-entries", map[string]any{
		"lines": []map[string]any{{"accountCode": "A-CASH", "debitAmount": "100.00"}},
	}, suite.tenantID)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/journal-entries/JE-000042", nil, suite.tenantID)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/journal-entries?status=VOID", nil, suite.tenantID)
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.createDraft([]map[string]any{
		{"accountCode": "A-CASH", "debitAmount": "10.00"},
		{"accountCode": "A-SALES", "creditAmount": "10.00"},
	})
	w = suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/reverse", nil, suite.tenantID)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodDelete, "/api/v1/journal-entries/JE-000001", nil, suite.tenantID)
	suite.Equal(http.StatusNoContent, w.Code)
	w = suite.do(http.MethodGet, "/api/v1/journal-entries/JE-000001", nil, suite.tenantID)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestPostWithUnknownAccountIsUnprocessable() {
	suite.createAccount("A-CASH", "ASSET", "0")
	draft := suite.createDraft([]map[string]any{
		{"accountCode": "A-CASH", "debitAmount": "25.00"},
		{"accountCode": "A-GHOST", "creditAmount": "25.00"},
	})

	w := suite.do(http.MethodPost, "/api/v1/journal-entries/"+draft.EntryNumber+"/post", nil, suite.tenantID)
	suite.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/v1/journal-entries/"+draft.EntryNumber, nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stored dto.JournalEntryResponse
	suite.decode(w, &stored)
	suite.Equal(domain.Draft, stored.Status)
}

func (suite *HandlerTestSuite) TestReverseOfReversal() {
	suite.createAccount("A-CASH", "ASSET", "0")
	suite.createAccount("A-SALES", "REVENUE", "0")
	suite.createDraft([]map[string]any{
		{"accountCode": "A-CASH", "debitAmount": "30.00"},
		{"accountCode": "A-SALES", "creditAmount": "30.00"},
	})
	w := suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/post", nil, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = suite.do(http.MethodPost, "/api/v1/journal-entries/JE-000001/reverse", nil, suite.tenantID)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, "/api/v1/journal-entries/RV-000001/reverse", nil, suite.tenantID)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reversed dto.ReverseJournalEntryResponse
	suite.decode(w, &reversed)
	suite.Equal("RV-000002", reversed.Reversal.EntryNumber)
	suite.Equal("RV-000001", reversed.Reversal.ReversalOf)

	w = suite.do(http.MethodGet, "/api/v1/accounts/A-CASH", nil, suite.tenantID)
	var cash dto.AccountResponse
	suite.decode(w, &cash)
	suite.Equal("30.00", cash.CurrentBalance)
}

func (suite *HandlerTestSuite) TestUpdateDraft() {
	suite.createAccount("A-CASH", "ASSET", "0")
	suite.createAccount("A-SALES", "REVENUE", "0")
	draft := suite.createDraft([]map[string]any{
		{"accountCode": "A-CASH", "debitAmount": "10.00"},
		{"accountCode": "A-SALES", "creditAmount": "10.00"},
	})

	w := suite.do(http.MethodPut, "/api/v1/journal-entries/"+draft.EntryNumber, map[string]any{
		"description": "Corrected",
		"lines": []map[string]any{
			{"accountCode": "A-CASH", "debitAmount": "12.50"},
			{"accountCode": "A-SALES", "creditAmount": "12.50"},
		},
	}, suite.tenantID)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.JournalEntryResponse
	suite.decode(w, &updated)
	suite.Equal("Corrected", updated.Description)
	suite.Equal("12.50", updated.TotalCredit)

	w = suite.do(http.MethodGet, "/api/v1/journal-entries/by-id/"+draft.EntryID, nil, suite.tenantID)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestStorageFailureIsRetryable() {
	reporting := new(MockReportingService)
	reporting.On("TrialBalance", mock.Anything, suite.tenantID).
		Return(nil, apperrors.NewStorageError("failed to list accounts", errors.New("connection refused")))
	suite.container.Reporting = reporting

	router, err := newRouter(&config.Config{}, suite.container)
	suite.Require().NoError(err)
	suite.router = router

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance", nil, suite.tenantID)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Equal("1", w.Header().Get("Retry-After"))
	suite.NotContains(w.Body.String(), "connection refused")
	reporting.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestRateLimit() {
	router, err := newRouter(&config.Config{RateLimit: "1-M"}, suite.container)
	suite.Require().NoError(err)
	suite.router = router

	w := suite.do(http.MethodGet, "/api/v1/accounts", nil, suite.tenantID)
	suite.Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodGet, "/api/v1/accounts", nil, suite.tenantID)
	suite.Equal(http.StatusTooManyRequests, w.Code)

	_, err = newRouter(&config.Config{RateLimit: "lots"}, suite.container)
	suite.Error(err)
}
