package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerTx is a unit of work over the ledger. Every lock taken through it is
// held until the surrounding TransactionManager.WithinTx call returns, and
// every write becomes visible only if that call commits.
//
// Locks must be taken in a fixed order: the journal entry first, then
// accounts in ascending code order (LockAccounts sorts for the caller).
type LedgerTx interface {
	// LockJournalEntry loads and locks an entry for the rest of the transaction.
	LockJournalEntry(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error)

	// LockAccounts loads and locks the accounts with the given codes in
	// ascending code order. Codes that do not exist are absent from the result.
	LockAccounts(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error)

	// SetAccountBalance stores the current balance of a locked account.
	SetAccountBalance(ctx context.Context, tenantID, code string, balance decimal.Decimal, userID string, at time.Time) error

	// SaveJournalEntry inserts a new entry with its lines.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateJournalEntry replaces the header, status and lines of a locked entry.
	UpdateJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// DeleteJournalEntry removes a locked entry and its lines.
	DeleteJournalEntry(ctx context.Context, tenantID, entryNumber string) error
}

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithinTx runs fn inside a single ledger transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}
