package repositories

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByNumber retrieves an entry and its lines by tenant and entry number.
	FindEntryByNumber(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error)

	// FindEntryByID retrieves an entry by its surrogate identifier, regardless of tenant.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries for a tenant using token-based pagination,
	// newest entry date first. It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, tenantID string, status *domain.JournalStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalLineReader defines read operations over posted lines
type JournalLineReader interface {
	// ListPostedLinesByAccount retrieves every line against an account that
	// belongs to an entry which has been posted, in posting order.
	// RunningBalance is left zero for the caller to fill.
	ListPostedLinesByAccount(ctx context.Context, tenantID, accountCode string) ([]domain.AccountStatementLine, error)
}

// JournalWriter defines write operations for journal data outside a ledger transaction
type JournalWriter interface {
	// SaveJournalEntry persists a new entry with its lines.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalLineReader
	JournalWriter
}

// SequenceRepository hands out entry-number sequence values.
type SequenceRepository interface {
	// NextValue returns the next value of the (tenant, prefix) sequence,
	// starting at 1. Values are unique; gaps are allowed.
	NextValue(ctx context.Context, tenantID, prefix string) (int64, error)
}
