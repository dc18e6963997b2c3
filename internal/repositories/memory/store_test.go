package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func seedAccount(t *testing.T, s *Store, tenantID, code string) {
	t.Helper()
	require.NoError(t, s.SaveAccount(context.Background(), domain.Account{
		AccountID:  tenantID + "-" + code,
		TenantID:   tenantID,
		Code:       code,
		Name:       code,
		NormalSide: domain.Debit,
		IsActive:   true,
	}))
}

func seedEntry(t *testing.T, s *Store, number string, status domain.JournalStatus) domain.JournalEntry {
	t.Helper()
	entry := domain.JournalEntry{
		EntryID:     "id-" + number,
		TenantID:    "t1",
		EntryNumber: number,
		EntryDate:   testNow,
		Status:      status,
		Lines: []domain.JournalEntryLine{
			{LineNumber: 1, AccountCode: "A", DebitAmount: decimal.RequireFromString("10")},
			{LineNumber: 2, AccountCode: "B", CreditAmount: decimal.RequireFromString("10")},
		},
		AuditFields: domain.NewAuditFields("u1", testNow),
	}
	require.NoError(t, s.SaveJournalEntry(context.Background(), entry))
	return entry
}

func TestSaveAccount_DuplicateCode(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "t1", "A")

	err := s.SaveAccount(context.Background(), domain.Account{AccountID: "other", TenantID: "t1", Code: "A"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAccountCode)

	// same code in another tenant is fine
	seedAccount(t, s, "t2", "A")
}

func TestUpdateAccount_KeepsBalance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "t1", "A")
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, "t1", []string{"A"}); err != nil {
			return err
		}
		return tx.SetAccountBalance(ctx, "t1", "A", decimal.RequireFromString("42.00"), "u1", testNow)
	}))

	require.NoError(t, s.UpdateAccount(ctx, domain.Account{TenantID: "t1", Code: "A", Name: "Renamed", CurrentBalance: decimal.Zero}))

	acc, err := s.FindAccountByCode(ctx, "t1", "A")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", acc.Name)
	assert.Equal(t, "42.00", domain.FormatAmount(acc.CurrentBalance))
}

func TestReparentAccount_WritesAccountAndLevelsTogether(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, code := range []string{"P", "Q", "C", "C-1"} {
		seedAccount(t, s, "t1", code)
	}
	require.NoError(t, s.UpdateAccount(ctx, domain.Account{TenantID: "t1", Code: "Q", Name: "Q", ParentCode: "P", Level: 1, IsActive: true}))
	require.NoError(t, s.UpdateAccount(ctx, domain.Account{TenantID: "t1", Code: "C-1", Name: "C-1", ParentCode: "C", Level: 1, IsActive: true}))

	moved := domain.Account{TenantID: "t1", Code: "C", Name: "C", ParentCode: "Q", Level: 2, IsActive: true, AuditFields: domain.AuditFields{LastUpdatedAt: testNow, LastUpdatedBy: "u2"}}
	require.NoError(t, s.ReparentAccount(ctx, moved, map[string]int{"C-1": 3}))

	c, err := s.FindAccountByCode(ctx, "t1", "C")
	require.NoError(t, err)
	assert.Equal(t, "Q", c.ParentCode)
	assert.Equal(t, 2, c.Level)

	leaf, err := s.FindAccountByCode(ctx, "t1", "C-1")
	require.NoError(t, err)
	assert.Equal(t, 3, leaf.Level)
	assert.Equal(t, "u2", leaf.LastUpdatedBy)
}

func TestReparentAccount_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, code := range []string{"P", "C"} {
		seedAccount(t, s, "t1", code)
	}

	err := s.ReparentAccount(ctx, domain.Account{TenantID: "t1", Code: "C", Name: "C", ParentCode: "P", Level: 1, IsActive: true},
		map[string]int{"GONE": 2})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	c, err := s.FindAccountByCode(ctx, "t1", "C")
	require.NoError(t, err)
	assert.Empty(t, c.ParentCode)
	assert.Equal(t, 0, c.Level)
}

func TestReparentAccount_RechecksAncestryAtWriteTime(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, code := range []string{"A", "B"} {
		seedAccount(t, s, "t1", code)
	}
	// B already moved under A, so A may no longer move under B
	require.NoError(t, s.ReparentAccount(ctx, domain.Account{TenantID: "t1", Code: "B", Name: "B", ParentCode: "A", Level: 1, IsActive: true}, nil))

	err := s.ReparentAccount(ctx, domain.Account{TenantID: "t1", Code: "A", Name: "A", ParentCode: "B", Level: 2, IsActive: true}, nil)
	assert.ErrorIs(t, err, apperrors.ErrCyclicHierarchy)

	a, err := s.FindAccountByCode(ctx, "t1", "A")
	require.NoError(t, err)
	assert.Empty(t, a.ParentCode)

	err = s.ReparentAccount(ctx, domain.Account{TenantID: "t1", Code: "A", Name: "A", ParentCode: "NOPE", Level: 1, IsActive: true}, nil)
	assert.ErrorIs(t, err, apperrors.ErrParentNotFound)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "t1", "A")
	seedAccount(t, s, "t1", "B")
	draft := seedEntry(t, s, "JE-000001", domain.Draft)

	err := s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		entry, err := tx.LockJournalEntry(ctx, "t1", draft.EntryNumber)
		if err != nil {
			return err
		}
		accounts, err := tx.LockAccounts(ctx, "t1", []string{"B", "A"})
		if err != nil {
			return err
		}
		assert.Len(t, accounts, 2)
		if err := tx.SetAccountBalance(ctx, "t1", "A", decimal.RequireFromString("10"), "u1", testNow); err != nil {
			return err
		}
		entry.Status = domain.Posted
		return tx.UpdateJournalEntry(ctx, *entry)
	})
	require.NoError(t, err)

	acc, _ := s.FindAccountByCode(ctx, "t1", "A")
	assert.Equal(t, "10.00", domain.FormatAmount(acc.CurrentBalance))
	entry, err := s.FindEntryByNumber(ctx, "t1", draft.EntryNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.Posted, entry.Status)

	lines, err := s.ListPostedLinesByAccount(ctx, "t1", "A")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "t1", "A")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, "t1", []string{"A"}); err != nil {
			return err
		}
		if err := tx.SetAccountBalance(ctx, "t1", "A", decimal.RequireFromString("99"), "u1", testNow); err != nil {
			return err
		}
		if err := tx.SaveJournalEntry(ctx, domain.JournalEntry{EntryID: "x", TenantID: "t1", EntryNumber: "JE-000009"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acc, _ := s.FindAccountByCode(ctx, "t1", "A")
	assert.True(t, acc.CurrentBalance.IsZero())
	_, err = s.FindEntryByNumber(ctx, "t1", "JE-000009")
	assert.ErrorIs(t, err, apperrors.ErrEntryNotFound)
}

func TestWithinTx_LockRules(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "t1", "A")
	seedEntry(t, s, "JE-000001", domain.Draft)

	t.Run("entry after accounts", func(t *testing.T) {
		err := s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			if _, err := tx.LockAccounts(ctx, "t1", []string{"A"}); err != nil {
				return err
			}
			_, err := tx.LockJournalEntry(ctx, "t1", "JE-000001")
			return err
		})
		assert.ErrorIs(t, err, errLockOrder)
	})

	t.Run("accounts twice", func(t *testing.T) {
		err := s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			if _, err := tx.LockAccounts(ctx, "t1", []string{"A"}); err != nil {
				return err
			}
			_, err := tx.LockAccounts(ctx, "t1", []string{"A"})
			return err
		})
		assert.ErrorIs(t, err, errLockOrder)
	})

	t.Run("balance of unlocked account", func(t *testing.T) {
		err := s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			return tx.SetAccountBalance(ctx, "t1", "A", decimal.Zero, "u1", testNow)
		})
		assert.Error(t, err)
	})

	t.Run("update of unlocked entry", func(t *testing.T) {
		err := s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			return tx.UpdateJournalEntry(ctx, domain.JournalEntry{TenantID: "t1", EntryNumber: "JE-000001"})
		})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := s.WithinTx(cctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestWithinTx_EntryLockSerializes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedEntry(t, s, "JE-000001", domain.Draft)

	var wg sync.WaitGroup
	var mu sync.Mutex
	inside, maxInside := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
				if _, err := tx.LockJournalEntry(ctx, "t1", "JE-000001"); err != nil {
					return err
				}
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
}

func TestDeleteJournalEntry_RemovesIndexes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	draft := seedEntry(t, s, "JE-000001", domain.Draft)

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockJournalEntry(ctx, "t1", draft.EntryNumber); err != nil {
			return err
		}
		return tx.DeleteJournalEntry(ctx, "t1", draft.EntryNumber)
	}))

	_, err := s.FindEntryByID(ctx, draft.EntryID)
	assert.ErrorIs(t, err, apperrors.ErrEntryNotFound)
	_, err = s.FindEntryByNumber(ctx, "t1", draft.EntryNumber)
	assert.ErrorIs(t, err, apperrors.ErrEntryNotFound)
}

func TestFindEntry_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedEntry(t, s, "JE-000001", domain.Draft)

	first, err := s.FindEntryByNumber(ctx, "t1", "JE-000001")
	require.NoError(t, err)
	first.Lines[0].AccountCode = "MUTATED"

	second, err := s.FindEntryByNumber(ctx, "t1", "JE-000001")
	require.NoError(t, err)
	assert.Equal(t, "A", second.Lines[0].AccountCode)
}

func TestNextValue_PerTenantAndPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for want := int64(1); want <= 3; want++ {
		got, err := s.NextValue(ctx, "t1", "JE")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, _ := s.NextValue(ctx, "t1", "RV")
	assert.Equal(t, int64(1), got)
	got, _ = s.NextValue(ctx, "t2", "JE")
	assert.Equal(t, int64(1), got)
}

func TestListEntries_StatusAndToken(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedEntry(t, s, "JE-000001", domain.Draft)
	seedEntry(t, s, "JE-000002", domain.Posted)
	seedEntry(t, s, "JE-000003", domain.Draft)

	page, token, err := s.ListEntries(ctx, "t1", nil, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, token)
	assert.Equal(t, "JE-000003", page[0].EntryNumber)

	rest, token, err := s.ListEntries(ctx, "t1", nil, 2, token)
	require.NoError(t, err)
	assert.Nil(t, token)
	require.Len(t, rest, 1)
	assert.Equal(t, "JE-000001", rest[0].EntryNumber)

	posted := domain.Posted
	only, _, err := s.ListEntries(ctx, "t1", &posted, 10, nil)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "JE-000002", only[0].EntryNumber)

	bad := "not-a-token"
	_, _, err = s.ListEntries(ctx, "t1", nil, 10, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
