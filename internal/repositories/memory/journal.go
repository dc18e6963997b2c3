package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/utils/pagination"
)

// SaveJournalEntry persists a new entry with its lines.
func (s *Store) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEntryLocked(entry)
}

// insertEntryLocked requires s.mu to be held for writing.
func (s *Store) insertEntryLocked(entry domain.JournalEntry) error {
	key := entryKey(entry.TenantID, entry.EntryNumber)
	if _, exists := s.entries[key]; exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryNumber)
	}
	s.entries[key] = entry.Clone()
	s.entryIDs[entry.EntryID] = key
	s.recordPostingLocked(key, entry.Status)
	return nil
}

// recordPostingLocked remembers the order in which entries left DRAFT.
func (s *Store) recordPostingLocked(key string, status domain.JournalStatus) {
	if status == domain.Draft {
		return
	}
	if _, ok := s.postOrder[key]; ok {
		return
	}
	s.postSeq++
	s.postOrder[key] = s.postSeq
}

// FindEntryByNumber retrieves an entry and its lines by tenant and entry number.
func (s *Store) FindEntryByNumber(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryKey(tenantID, entryNumber)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryNumber)
	}
	c := entry.Clone()
	return &c, nil
}

// FindEntryByID retrieves an entry by its surrogate identifier.
func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.entryIDs[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", apperrors.ErrEntryNotFound, entryID)
	}
	c := s.entries[key].Clone()
	return &c, nil
}

// ListEntries retrieves a page of entries for a tenant, newest entry date first.
func (s *Store) ListEntries(ctx context.Context, tenantID string, status *domain.JournalStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var cursor *pagination.EntryCursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	s.mu.RLock()
	matched := make([]domain.JournalEntry, 0)
	for _, entry := range s.entries {
		if entry.TenantID != tenantID {
			continue
		}
		if status != nil && entry.Status != *status {
			continue
		}
		if cursor != nil && !cursor.After(entry.EntryDate, entry.CreatedAt, entry.EntryNumber) {
			continue
		}
		matched = append(matched, entry.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.EntryNumber > b.EntryNumber
	})

	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.EntryCursor{
		EntryDate:   last.EntryDate,
		CreatedAt:   last.CreatedAt,
		EntryNumber: last.EntryNumber,
	})
	return page, &token, nil
}

// ListPostedLinesByAccount retrieves every posted line against an account in posting order.
func (s *Store) ListPostedLinesByAccount(ctx context.Context, tenantID, accountCode string) ([]domain.AccountStatementLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type posted struct {
		order int64
		entry domain.JournalEntry
	}
	var entries []posted
	for key, order := range s.postOrder {
		entry, ok := s.entries[key]
		if !ok || entry.TenantID != tenantID {
			continue
		}
		entries = append(entries, posted{order: order, entry: entry})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	lines := make([]domain.AccountStatementLine, 0)
	for _, p := range entries {
		for _, line := range p.entry.Lines {
			if line.AccountCode != accountCode {
				continue
			}
			sl := domain.AccountStatementLine{
				EntryNumber:  p.entry.EntryNumber,
				EntryDate:    p.entry.EntryDate,
				LineNumber:   line.LineNumber,
				Description:  line.Description,
				DebitAmount:  line.DebitAmount,
				CreditAmount: line.CreditAmount,
			}
			if p.entry.PostedAt != nil {
				sl.PostedAt = *p.entry.PostedAt
			}
			lines = append(lines, sl)
		}
	}
	return lines, nil
}
