// Package memory is an in-process implementation of the ledger repositories.
// It is safe for concurrent use and gives the same locking and atomicity
// guarantees as the PostgreSQL adapter within a single process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
)

// Store holds accounts, journal entries and sequences in maps guarded by mu.
// Row-level locks for ledger transactions live in locks.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]domain.Account      // accountKey -> account
	accountIDs map[string]string              // accountID -> accountKey
	entries    map[string]domain.JournalEntry // entryKey -> entry
	entryIDs   map[string]string              // entryID -> entryKey
	postOrder  map[string]int64               // entryKey -> order in which the entry was posted
	postSeq    int64
	sequences  map[string]int64 // tenant|prefix -> last value

	locks *keyedLocks
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:   make(map[string]domain.Account),
		accountIDs: make(map[string]string),
		entries:    make(map[string]domain.JournalEntry),
		entryIDs:   make(map[string]string),
		postOrder:  make(map[string]int64),
		sequences:  make(map[string]int64),
		locks:      newKeyedLocks(),
	}
}

// Repositories returns a provider whose repositories are all backed by s.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  s,
		JournalRepo:  s,
		SequenceRepo: s,
		TxManager:    s,
	}
}

// --- accounts ---

// SaveAccount persists a new account.
func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(account.TenantID, account.Code)
	if _, exists := s.accounts[key]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccountCode, account.Code)
	}
	if _, exists := s.accountIDs[account.AccountID]; exists {
		return fmt.Errorf("%w: account id %s", apperrors.ErrDuplicate, account.AccountID)
	}
	s.accounts[key] = account
	s.accountIDs[account.AccountID] = key
	return nil
}

// UpdateAccount writes the descriptive fields, parent, level and active flag.
// It waits for any ledger transaction holding the account.
func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	key := accountKey(account.TenantID, account.Code)
	release := s.locks.lockAll([]string{key})
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[key]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.Code)
	}
	s.accounts[key] = withMetadata(current, account)
	return nil
}

// ReparentAccount writes account and the new levels of its descendants in a
// single critical section. The parent chain is checked again under the lock.
func (s *Store) ReparentAccount(ctx context.Context, account domain.Account, descendantLevels map[string]int) error {
	codes := make([]string, 0, len(descendantLevels)+1)
	codes = append(codes, account.Code)
	for code := range descendantLevels {
		codes = append(codes, code)
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = accountKey(account.TenantID, code)
	}
	release := s.locks.lockAll(keys)
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, key := range keys {
		if _, ok := s.accounts[key]; !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, codes[i])
		}
	}
	if err := s.checkAncestryLocked(account.TenantID, account.Code, account.ParentCode); err != nil {
		return err
	}

	key := keys[0]
	s.accounts[key] = withMetadata(s.accounts[key], account)
	for code, level := range descendantLevels {
		k := accountKey(account.TenantID, code)
		acc := s.accounts[k]
		acc.Level = level
		acc.LastUpdatedAt = account.LastUpdatedAt
		acc.LastUpdatedBy = account.LastUpdatedBy
		s.accounts[k] = acc
	}
	return nil
}

// checkAncestryLocked walks up from parentCode and fails when it meets code.
// Callers hold s.mu.
func (s *Store) checkAncestryLocked(tenantID, code, parentCode string) error {
	seen := make(map[string]bool)
	for cur := parentCode; cur != ""; {
		if cur == code {
			return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrCyclicHierarchy, parentCode, code)
		}
		if seen[cur] {
			return fmt.Errorf("%w: existing hierarchy loops at %s", apperrors.ErrCyclicHierarchy, cur)
		}
		seen[cur] = true
		parent, ok := s.accounts[accountKey(tenantID, cur)]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrParentNotFound, cur)
		}
		cur = parent.ParentCode
	}
	return nil
}

// withMetadata copies the writable fields of update onto current.
func withMetadata(current, update domain.Account) domain.Account {
	current.Name = update.Name
	current.Description = update.Description
	current.ParentCode = update.ParentCode
	current.Level = update.Level
	current.IsActive = update.IsActive
	current.IsCashFlow = update.IsCashFlow
	current.LastUpdatedAt = update.LastUpdatedAt
	current.LastUpdatedBy = update.LastUpdatedBy
	return current
}

// FindAccountByCode retrieves an account by its tenant-scoped code.
func (s *Store) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountKey(tenantID, code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its surrogate identifier.
func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.accountIDs[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", apperrors.ErrAccountNotFound, accountID)
	}
	acc := s.accounts[key]
	return &acc, nil
}

// ListAccounts retrieves the accounts of a tenant ordered by code.
func (s *Store) ListAccounts(ctx context.Context, tenantID string, filter portsrepo.AccountFilter) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.TenantID != tenantID {
			continue
		}
		if filter.AccountType != nil && acc.AccountType != *filter.AccountType {
			continue
		}
		if filter.ActiveOnly && !acc.IsActive {
			continue
		}
		if filter.ParentCode != nil && acc.ParentCode != *filter.ParentCode {
			continue
		}
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// --- sequences ---

// NextValue returns the next value of the (tenant, prefix) sequence.
func (s *Store) NextValue(ctx context.Context, tenantID, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tenantID + "|" + prefix
	s.sequences[key]++
	return s.sequences[key], nil
}

// Compile-time check: ensure Store implements the repository ports
var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.SequenceRepository      = (*Store)(nil)
	_ portsrepo.TransactionManager      = (*Store)(nil)
)
