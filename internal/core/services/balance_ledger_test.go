package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedgerTx is a mock type for the LedgerTx interface
type MockLedgerTx struct {
	mock.Mock
}

var _ portsrepo.LedgerTx = (*MockLedgerTx)(nil)

func (m *MockLedgerTx) LockJournalEntry(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerTx) LockAccounts(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockLedgerTx) SetAccountBalance(ctx context.Context, tenantID, code string, balance decimal.Decimal, userID string, at time.Time) error {
	return m.Called(ctx, tenantID, code, balance, userID, at).Error(0)
}

func (m *MockLedgerTx) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerTx) UpdateJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerTx) DeleteJournalEntry(ctx context.Context, tenantID, entryNumber string) error {
	return m.Called(ctx, tenantID, entryNumber).Error(0)
}

func newLedger() portssvc.BalanceLedgerSvc {
	return services.NewBalanceLedger(services.WithLedgerClock(fixedClock))
}

func ledgerAccount(code string, side domain.NormalSide, balance string) domain.Account {
	return domain.Account{
		TenantID:       "tenant-1",
		Code:           code,
		Name:           code,
		NormalSide:     side,
		IsActive:       true,
		CurrentBalance: amount(balance),
	}
}

func TestApplyPosting_FollowsNormalSide(t *testing.T) {
	tests := []struct {
		name        string
		side        domain.NormalSide
		debit       string
		credit      string
		wantBalance string
	}{
		{"debit increases debit-normal", domain.Debit, "25.50", "0", "125.50"},
		{"credit decreases debit-normal", domain.Debit, "0", "25.50", "74.50"},
		{"credit increases credit-normal", domain.Credit, "0", "10.00", "110.00"},
		{"debit decreases credit-normal", domain.Credit, "10.00", "0", "90.00"},
		{"overdraw goes negative", domain.Debit, "0", "150.00", "-50.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tx := new(MockLedgerTx)
			acc := ledgerAccount("A-1", tt.side, "100.00")
			want := amount(tt.wantBalance)
			tx.On("SetAccountBalance", ctx, "tenant-1", "A-1", mock.MatchedBy(want.Equal), "user-1", fixedNow).Return(nil).Once()

			got, err := newLedger().ApplyPosting(ctx, tx, &acc, amount(tt.debit), amount(tt.credit), "user-1")

			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.True(t, want.Equal(acc.CurrentBalance))
			assert.Equal(t, "user-1", acc.LastUpdatedBy)
			tx.AssertExpectations(t)
		})
	}
}

func TestApplyPosting_Rejections(t *testing.T) {
	ctx := context.Background()
	inactive := ledgerAccount("A-OFF", domain.Debit, "0")
	inactive.IsActive = false
	active := ledgerAccount("A-ON", domain.Debit, "0")
	badSide := ledgerAccount("A-BAD", domain.NormalSide("SIDEWAYS"), "0")

	tests := []struct {
		name    string
		account *domain.Account
		debit   string
		credit  string
		wantErr error
	}{
		{"nil account", nil, "1", "0", apperrors.ErrAccountNotFound},
		{"inactive account", &inactive, "1", "0", apperrors.ErrAccountInactive},
		{"negative debit", &active, "-1", "0", apperrors.ErrValidation},
		{"too many decimals", &active, "0", "0.125", apperrors.ErrValidation},
		{"unknown normal side", &badSide, "1", "0", apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := new(MockLedgerTx)

			_, err := newLedger().ApplyPosting(ctx, tx, tt.account, amount(tt.debit), amount(tt.credit), "user-1")

			assert.ErrorIs(t, err, tt.wantErr)
			tx.AssertNotCalled(t, "SetAccountBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApplyPosting_StorageFailureLeavesAccountUntouched(t *testing.T) {
	ctx := context.Background()
	tx := new(MockLedgerTx)
	acc := ledgerAccount("A-1", domain.Debit, "100.00")
	tx.On("SetAccountBalance", ctx, "tenant-1", "A-1", mock.Anything, "user-1", fixedNow).
		Return(apperrors.NewStorageError("set balance", errors.New("connection reset"))).Once()

	_, err := newLedger().ApplyPosting(ctx, tx, &acc, amount("5"), decimal.Zero, "user-1")

	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, "100.00", domain.FormatAmount(acc.CurrentBalance))
}

func TestLockAccounts_SortsAndChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("locks in ascending order", func(t *testing.T) {
		tx := new(MockLedgerTx)
		tx.On("LockAccounts", ctx, "tenant-1", []string{"A-1", "B-2", "C-3"}).Return(map[string]domain.Account{
			"A-1": ledgerAccount("A-1", domain.Debit, "0"),
			"B-2": ledgerAccount("B-2", domain.Debit, "0"),
			"C-3": ledgerAccount("C-3", domain.Credit, "0"),
		}, nil).Once()

		locked, err := newLedger().LockAccounts(ctx, tx, "tenant-1", []string{"C-3", "A-1", "B-2"})

		require.NoError(t, err)
		assert.Len(t, locked, 3)
		assert.Equal(t, domain.Credit, locked["C-3"].NormalSide)
		tx.AssertExpectations(t)
	})

	t.Run("missing account", func(t *testing.T) {
		tx := new(MockLedgerTx)
		tx.On("LockAccounts", ctx, "tenant-1", []string{"A-1", "Z-9"}).Return(map[string]domain.Account{
			"A-1": ledgerAccount("A-1", domain.Debit, "0"),
		}, nil).Once()

		_, err := newLedger().LockAccounts(ctx, tx, "tenant-1", []string{"Z-9", "A-1"})
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		assert.ErrorIs(t, err, apperrors.ErrUnknownLineAccount)
	})

	t.Run("inactive account", func(t *testing.T) {
		off := ledgerAccount("A-1", domain.Debit, "0")
		off.IsActive = false
		tx := new(MockLedgerTx)
		tx.On("LockAccounts", ctx, "tenant-1", []string{"A-1"}).Return(map[string]domain.Account{"A-1": off}, nil).Once()

		_, err := newLedger().LockAccounts(ctx, tx, "tenant-1", []string{"A-1"})
		assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
	})

	t.Run("other tenant", func(t *testing.T) {
		foreign := ledgerAccount("A-1", domain.Debit, "0")
		foreign.TenantID = "tenant-2"
		tx := new(MockLedgerTx)
		tx.On("LockAccounts", ctx, "tenant-1", []string{"A-1"}).Return(map[string]domain.Account{"A-1": foreign}, nil).Once()

		_, err := newLedger().LockAccounts(ctx, tx, "tenant-1", []string{"A-1"})
		assert.ErrorIs(t, err, apperrors.ErrCrossTenantAccess)
	})

	t.Run("lock failure", func(t *testing.T) {
		tx := new(MockLedgerTx)
		tx.On("LockAccounts", ctx, "tenant-1", []string{"A-1"}).Return(nil, apperrors.NewStorageError("lock", errors.New("deadlock detected"))).Once()

		_, err := newLedger().LockAccounts(ctx, tx, "tenant-1", []string{"A-1"})
		assert.True(t, apperrors.IsRetryable(err))
	})
}
