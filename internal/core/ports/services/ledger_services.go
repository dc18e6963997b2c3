package services

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// BalanceLedgerSvc is the only mutator of account balances. Both methods run
// inside a ledger transaction opened by the caller.
type BalanceLedgerSvc interface {
	// LockAccounts locks every referenced account and fails the whole
	// operation if any is missing or inactive.
	LockAccounts(ctx context.Context, tx repositories.LedgerTx, tenantID string, codes []string) (map[string]*domain.Account, error)

	// ApplyPosting adds the signed delta of one posting to a locked account
	// and returns its new balance.
	ApplyPosting(ctx context.Context, tx repositories.LedgerTx, account *domain.Account, debit, credit decimal.Decimal, userID string) (decimal.Decimal, error)
}
