package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var errLockOrder = errors.New("ledger transaction lock order violated")

type balanceWrite struct {
	tenantID string
	code     string
	balance  decimal.Decimal
	userID   string
	at       time.Time
}

type entryOp int

const (
	opInsert entryOp = iota
	opUpdate
	opDelete
)

type entryWrite struct {
	op    entryOp
	entry domain.JournalEntry
}

// ledgerTx stages writes until WithinTx commits them under the store mutex.
type ledgerTx struct {
	store          *Store
	releases       []func()
	lockedEntries  map[string]bool
	lockedAccounts map[string]bool
	accountsTaken  bool
	balances       []balanceWrite
	entryWrites    []entryWrite
	newEntries     map[string]bool
}

// WithinTx runs fn inside a single ledger transaction. Locks taken through
// the transaction are released after commit or rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &ledgerTx{
		store:          s,
		lockedEntries:  make(map[string]bool),
		lockedAccounts: make(map[string]bool),
		newEntries:     make(map[string]bool),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (tx *ledgerTx) release() {
	for i := len(tx.releases) - 1; i >= 0; i-- {
		tx.releases[i]()
	}
	tx.releases = nil
}

func (s *Store) commit(tx *ledgerTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range tx.entryWrites {
		if w.op == opInsert {
			if _, exists := s.entries[entryKey(w.entry.TenantID, w.entry.EntryNumber)]; exists {
				return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, w.entry.EntryNumber)
			}
		}
	}

	for _, b := range tx.balances {
		key := accountKey(b.tenantID, b.code)
		acc := s.accounts[key]
		acc.CurrentBalance = b.balance
		acc.LastUpdatedAt = b.at
		acc.LastUpdatedBy = b.userID
		s.accounts[key] = acc
	}

	for _, w := range tx.entryWrites {
		key := entryKey(w.entry.TenantID, w.entry.EntryNumber)
		switch w.op {
		case opInsert:
			if err := s.insertEntryLocked(w.entry); err != nil {
				return err
			}
		case opUpdate:
			s.entries[key] = w.entry.Clone()
			s.recordPostingLocked(key, w.entry.Status)
		case opDelete:
			if existing, ok := s.entries[key]; ok {
				delete(s.entryIDs, existing.EntryID)
			}
			delete(s.entries, key)
			delete(s.postOrder, key)
		}
	}
	return nil
}

// LockJournalEntry loads and locks an entry for the rest of the transaction.
func (tx *ledgerTx) LockJournalEntry(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error) {
	if tx.accountsTaken {
		return nil, fmt.Errorf("%w: entry %s locked after accounts", errLockOrder, entryNumber)
	}
	key := entryKey(tenantID, entryNumber)
	if !tx.lockedEntries[key] {
		tx.releases = append(tx.releases, tx.store.locks.lockAll([]string{key}))
		tx.lockedEntries[key] = true
	}

	if staged, ok := tx.stagedEntry(key); ok {
		return staged, nil
	}

	tx.store.mu.RLock()
	entry, ok := tx.store.entries[key]
	tx.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryNumber)
	}
	c := entry.Clone()
	return &c, nil
}

// stagedEntry returns the latest staged version of an entry in this transaction.
func (tx *ledgerTx) stagedEntry(key string) (*domain.JournalEntry, bool) {
	for i := len(tx.entryWrites) - 1; i >= 0; i-- {
		w := tx.entryWrites[i]
		if entryKey(w.entry.TenantID, w.entry.EntryNumber) != key {
			continue
		}
		if w.op == opDelete {
			return nil, false
		}
		c := w.entry.Clone()
		return &c, true
	}
	return nil, false
}

// LockAccounts locks the accounts with the given codes in ascending order.
// Accounts can be locked only once per transaction.
func (tx *ledgerTx) LockAccounts(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	if tx.accountsTaken {
		return nil, fmt.Errorf("%w: accounts already locked in this transaction", errLockOrder)
	}
	tx.accountsTaken = true

	unique := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if !seen[code] {
			seen[code] = true
			unique = append(unique, code)
		}
	}
	sort.Strings(unique)

	keys := make([]string, len(unique))
	for i, code := range unique {
		keys[i] = accountKey(tenantID, code)
		tx.lockedAccounts[keys[i]] = true
	}
	tx.releases = append(tx.releases, tx.store.locks.lockAll(keys))

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	result := make(map[string]domain.Account, len(unique))
	for i, code := range unique {
		if acc, ok := tx.store.accounts[keys[i]]; ok {
			result[code] = acc
		}
	}
	return result, nil
}

// SetAccountBalance stages the balance of an account locked by this transaction.
func (tx *ledgerTx) SetAccountBalance(ctx context.Context, tenantID, code string, balance decimal.Decimal, userID string, at time.Time) error {
	if !tx.lockedAccounts[accountKey(tenantID, code)] {
		return fmt.Errorf("account %s is not locked by this transaction", code)
	}
	tx.balances = append(tx.balances, balanceWrite{tenantID: tenantID, code: code, balance: balance, userID: userID, at: at})
	return nil
}

// SaveJournalEntry stages a new entry. The entry counts as locked by this transaction.
func (tx *ledgerTx) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	key := entryKey(entry.TenantID, entry.EntryNumber)
	if _, staged := tx.stagedEntry(key); staged {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryNumber)
	}
	tx.newEntries[key] = true
	tx.entryWrites = append(tx.entryWrites, entryWrite{op: opInsert, entry: entry.Clone()})
	return nil
}

// UpdateJournalEntry stages a replacement of a locked entry.
func (tx *ledgerTx) UpdateJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	key := entryKey(entry.TenantID, entry.EntryNumber)
	if !tx.lockedEntries[key] && !tx.newEntries[key] {
		return fmt.Errorf("journal entry %s is not locked by this transaction", entry.EntryNumber)
	}
	op := opUpdate
	if tx.newEntries[key] {
		op = opInsert
		tx.dropStaged(key)
	}
	tx.entryWrites = append(tx.entryWrites, entryWrite{op: op, entry: entry.Clone()})
	return nil
}

// DeleteJournalEntry stages removal of a locked entry.
func (tx *ledgerTx) DeleteJournalEntry(ctx context.Context, tenantID, entryNumber string) error {
	key := entryKey(tenantID, entryNumber)
	if !tx.lockedEntries[key] {
		return fmt.Errorf("journal entry %s is not locked by this transaction", entryNumber)
	}
	tx.entryWrites = append(tx.entryWrites, entryWrite{op: opDelete, entry: domain.JournalEntry{TenantID: tenantID, EntryNumber: entryNumber}})
	return nil
}

func (tx *ledgerTx) dropStaged(key string) {
	kept := tx.entryWrites[:0]
	for _, w := range tx.entryWrites {
		if entryKey(w.entry.TenantID, w.entry.EntryNumber) != key {
			kept = append(kept, w)
		}
	}
	tx.entryWrites = kept
}

var _ portsrepo.LedgerTx = (*ledgerTx)(nil)
