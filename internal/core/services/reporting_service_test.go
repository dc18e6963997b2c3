package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	svc      *portssvc.ServiceContainer
	tenantID string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.svc = services.NewServiceContainer(memory.NewStore().Repositories(), services.WithClock(fixedClock))
	suite.tenantID = "tenant-1"

	for _, a := range []struct {
		code, parent string
		t            domain.AccountType
		opening      string
	}{
		{"1000", "", domain.Asset, "0"},
		{"1100", "1000", domain.Asset, "200.00"},
		{"1200", "1000", domain.Asset, "0"},
		{"3000", "", domain.Equity, "200.00"},
		{"4000", "", domain.Revenue, "0"},
		{"5000", "", domain.Expense, "0"},
	} {
		req := dto.CreateAccountRequest{Code: a.code, Name: "Account " + a.code, AccountType: a.t, OpeningBalance: amount(a.opening)}
		if a.parent != "" {
			req.ParentCode = strPtr(a.parent)
		}
		_, err := suite.svc.Account.RegisterAccount(suite.ctx, suite.tenantID, req, "user-1")
		suite.Require().NoError(err)
	}
}

func (suite *ReportingServiceTestSuite) post(lines ...dto.JournalLineRequest) string {
	entry, err := suite.svc.Journal.CreateDraft(suite.ctx, suite.tenantID, dto.CreateJournalEntryRequest{Description: "posting", Lines: lines}, "user-1")
	suite.Require().NoError(err)
	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.tenantID, entry.EntryNumber, "user-1")
	suite.Require().NoError(err)
	return entry.EntryNumber
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_BalancesAfterPostings() {
	suite.post(debitLine("1100", "80.00"), creditLine("4000", "80.00"))
	suite.post(debitLine("5000", "30.00"), creditLine("1100", "30.00"))
	// 1200 is overdrawn, so it lands in the credit column
	suite.post(debitLine("5000", "15.00"), creditLine("1200", "15.00"))

	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)

	rows := map[string]domain.TrialBalanceRow{}
	for _, r := range tb.Rows {
		rows[r.AccountCode] = r
	}
	suite.Len(rows, 6)
	suite.Equal("250.00", domain.FormatAmount(rows["1100"].Debit))
	suite.Equal("15.00", domain.FormatAmount(rows["1200"].Credit))
	suite.True(rows["1200"].Debit.IsZero())
	suite.Equal("-15.00", domain.FormatAmount(rows["1200"].Balance))
	suite.Equal("80.00", domain.FormatAmount(rows["4000"].Credit))
	suite.Equal("45.00", domain.FormatAmount(rows["5000"].Debit))
	suite.Equal(1, rows["1100"].Level)

	suite.True(tb.Balanced)
	suite.Equal("295.00", domain.FormatAmount(tb.TotalDebit))
	suite.Equal("295.00", domain.FormatAmount(tb.TotalCredit))
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_SkipsInactiveAccounts() {
	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.tenantID, "5000", "user-1"))

	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)

	for _, r := range tb.Rows {
		suite.NotEqual("5000", r.AccountCode)
	}
	suite.Len(tb.Rows, 5)
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_EmptyTenant() {
	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, "tenant-empty")
	suite.Require().NoError(err)
	suite.Empty(tb.Rows)
	suite.True(tb.Balanced)
}

func (suite *ReportingServiceTestSuite) TestAccountStatement_RunningBalance() {
	first := suite.post(debitLine("1100", "50.00"), creditLine("4000", "50.00"))
	suite.post(debitLine("5000", "20.00"), creditLine("1100", "20.00"))
	_, reversal, err := suite.svc.Journal.ReverseEntry(suite.ctx, suite.tenantID, first, "user-1")
	suite.Require().NoError(err)

	// drafts stay off the statement
	_, err = suite.svc.Journal.CreateDraft(suite.ctx, suite.tenantID, dto.CreateJournalEntryRequest{
		Lines: []dto.JournalLineRequest{debitLine("1100", "999"), creditLine("4000", "999")},
	}, "user-1")
	suite.Require().NoError(err)

	acc, lines, err := suite.svc.Reporting.AccountStatement(suite.ctx, suite.tenantID, "1100")
	suite.Require().NoError(err)
	suite.Equal("1100", acc.Code)
	suite.Require().Len(lines, 3)

	suite.Equal(first, lines[0].EntryNumber)
	suite.Equal("250.00", domain.FormatAmount(lines[0].RunningBalance))
	suite.Equal("230.00", domain.FormatAmount(lines[1].RunningBalance))
	suite.Equal(reversal.EntryNumber, lines[2].EntryNumber)
	suite.Equal("180.00", domain.FormatAmount(lines[2].RunningBalance))
	suite.True(lines[2].RunningBalance.Equal(acc.CurrentBalance))
}

func (suite *ReportingServiceTestSuite) TestLookups() {
	children, err := suite.svc.Reporting.ChildrenOf(suite.ctx, suite.tenantID, "1000")
	suite.Require().NoError(err)
	suite.Len(children, 2)

	assets, err := suite.svc.Reporting.ByType(suite.ctx, suite.tenantID, domain.Asset)
	suite.Require().NoError(err)
	suite.Len(assets, 3)

	acc, err := suite.svc.Reporting.ByCode(suite.ctx, suite.tenantID, "3000")
	suite.Require().NoError(err)
	suite.Equal(domain.Credit, acc.NormalSide)

	_, err = suite.svc.Reporting.ByCode(suite.ctx, suite.tenantID, "9999")
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)

	_, _, err = suite.svc.Reporting.AccountStatement(suite.ctx, suite.tenantID, "9999")
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
