package services

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntry retrieves an entry by its entry number.
	GetEntry(ctx context.Context, tenantID string, entryNumber string) (*domain.JournalEntry, error)

	// GetEntryByID retrieves an entry by its surrogate identifier.
	GetEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries, optionally filtered by status.
	ListEntries(ctx context.Context, tenantID string, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// JournalWriterSvc defines the lifecycle operations of journal entries
type JournalWriterSvc interface {
	// CreateDraft validates and stores a new DRAFT entry.
	CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateDraft replaces the header and lines of a DRAFT entry.
	UpdateDraft(ctx context.Context, tenantID string, entryNumber string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// DiscardDraft deletes a DRAFT entry.
	DiscardDraft(ctx context.Context, tenantID string, entryNumber string, userID string) error

	// PostEntry applies every line of a DRAFT entry to account balances atomically.
	PostEntry(ctx context.Context, tenantID string, entryNumber string, userID string) (*domain.JournalEntry, error)

	// ReverseEntry posts a compensating entry for a POSTED entry and marks the
	// original REVERSED. It returns the original and the compensating entry.
	ReverseEntry(ctx context.Context, tenantID string, entryNumber string, userID string) (*domain.JournalEntry, *domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
