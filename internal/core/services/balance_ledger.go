package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// balanceLedger is the single writer of CurrentBalance.
type balanceLedger struct {
	BaseService
}

// BalanceLedgerOption configures the balance ledger.
type BalanceLedgerOption func(*balanceLedger)

// WithLedgerClock overrides the time source used for balance audit fields.
func WithLedgerClock(clock func() time.Time) BalanceLedgerOption {
	return func(l *balanceLedger) {
		l.clock = clock
	}
}

// NewBalanceLedger creates the balance ledger service.
func NewBalanceLedger(options ...BalanceLedgerOption) portssvc.BalanceLedgerSvc {
	l := &balanceLedger{}
	for _, option := range options {
		option(l)
	}
	return l
}

var _ portssvc.BalanceLedgerSvc = (*balanceLedger)(nil)

func (l *balanceLedger) LockAccounts(ctx context.Context, tx portsrepo.LedgerTx, tenantID string, codes []string) (map[string]*domain.Account, error) {
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)

	locked, err := tx.LockAccounts(ctx, tenantID, sorted)
	if err != nil {
		l.LogError(ctx, err, "Failed to lock accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	result := make(map[string]*domain.Account, len(locked))
	for _, code := range sorted {
		if _, done := result[code]; done {
			continue
		}
		acc, ok := locked[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownLineAccount, code)
		}
		if acc.TenantID != tenantID {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrCrossTenantAccess, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, code)
		}
		result[code] = &acc
	}
	return result, nil
}

func (l *balanceLedger) ApplyPosting(ctx context.Context, tx portsrepo.LedgerTx, account *domain.Account, debit, credit decimal.Decimal, userID string) (decimal.Decimal, error) {
	if account == nil {
		return decimal.Zero, apperrors.ErrAccountNotFound
	}
	if !account.IsActive {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, account.Code)
	}
	if err := domain.ValidateAmount("debit", debit); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := domain.ValidateAmount("credit", credit); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	delta, err := accounting.SignedDelta(account.NormalSide, debit, credit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account %s: %w", account.Code, err)
	}
	newBalance := account.CurrentBalance.Add(delta)

	now := l.Now()
	if err := tx.SetAccountBalance(ctx, account.TenantID, account.Code, newBalance, userID, now); err != nil {
		l.LogError(ctx, err, "Failed to store account balance",
			slog.String("tenant_id", account.TenantID),
			slog.String("account_code", account.Code))
		return decimal.Zero, fmt.Errorf("failed to store balance of %s: %w", account.Code, err)
	}

	account.CurrentBalance = newBalance
	account.Touch(userID, now)

	l.LogDebug(ctx, "Posting applied",
		slog.String("account_code", account.Code),
		slog.String("delta", delta.String()),
		slog.String("balance", newBalance.String()))
	return newBalance, nil
}
