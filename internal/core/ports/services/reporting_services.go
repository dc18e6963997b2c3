package services

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// ReportingService defines read-only views over the ledger
type ReportingService interface {
	// TrialBalance lists every active account with its balance in the debit
	// or credit column, plus totals.
	TrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalance, error)

	// ByType lists the accounts of one type.
	ByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]domain.Account, error)

	// ByCode retrieves one account.
	ByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error)

	// ChildrenOf lists the direct children of an account.
	ChildrenOf(ctx context.Context, tenantID string, code string) ([]domain.Account, error)

	// AccountStatement lists posted lines against an account with the running balance.
	AccountStatement(ctx context.Context, tenantID string, code string) (*domain.Account, []domain.AccountStatementLine, error)
}
