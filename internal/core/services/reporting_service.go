package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface. It only reads;
// account lookups go through the account directory.
type reportingService struct {
	BaseService
	accounts portssvc.AccountReaderSvc
	lineRepo portsrepo.JournalLineReader
}

// NewReportingService creates a new reporting service
func NewReportingService(accounts portssvc.AccountReaderSvc, lineRepo portsrepo.JournalLineReader) portssvc.ReportingService {
	return &reportingService{
		accounts: accounts,
		lineRepo: lineRepo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance lists every active account with its balance on its normal side.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalance, error) {
	accounts, err := s.accounts.ListActiveAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	tb := &domain.TrialBalance{
		TenantID:    tenantID,
		Rows:        make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range accounts {
		debit, credit := accounting.TrialBalanceColumns(acc.NormalSide, acc.CurrentBalance)
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			AccountCode: acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			NormalSide:  acc.NormalSide,
			Level:       acc.Level,
			Balance:     acc.CurrentBalance,
			Debit:       debit,
			Credit:      credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(debit)
		tb.TotalCredit = tb.TotalCredit.Add(credit)
	}
	tb.Balanced = tb.TotalDebit.Equal(tb.TotalCredit)

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("tenant_id", tenantID),
		slog.Int("row_count", len(tb.Rows)),
		slog.Bool("balanced", tb.Balanced))
	return tb, nil
}

func (s *reportingService) ByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]domain.Account, error) {
	return s.accounts.ListAccountsByType(ctx, tenantID, accountType)
}

func (s *reportingService) ByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	return s.accounts.GetAccountByCode(ctx, tenantID, code)
}

func (s *reportingService) ChildrenOf(ctx context.Context, tenantID string, code string) ([]domain.Account, error) {
	return s.accounts.ListChildren(ctx, tenantID, code)
}

// AccountStatement lists posted lines against an account. The running
// balance starts from the opening balance and follows the account's normal side.
func (s *reportingService) AccountStatement(ctx context.Context, tenantID string, code string) (*domain.Account, []domain.AccountStatementLine, error) {
	account, err := s.accounts.GetAccountByCode(ctx, tenantID, code)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.lineRepo.ListPostedLinesByAccount(ctx, tenantID, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve account statement",
			slog.String("tenant_id", tenantID),
			slog.String("account_code", code))
		return nil, nil, fmt.Errorf("failed to retrieve account statement: %w", err)
	}

	running := account.OpeningBalance
	for i := range lines {
		delta, err := accounting.SignedDelta(account.NormalSide, lines[i].DebitAmount, lines[i].CreditAmount)
		if err != nil {
			return nil, nil, err
		}
		running = running.Add(delta)
		lines[i].RunningBalance = running
	}
	return account, lines, nil
}
