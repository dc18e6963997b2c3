package repositories

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// AccountFilter narrows an account listing. Zero values mean no filter.
type AccountFilter struct {
	AccountType *domain.AccountType
	ActiveOnly  bool
	ParentCode  *string // Direct children of this code
}

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByCode retrieves an account by its tenant-scoped code.
	FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// FindAccountByID retrieves an account by its surrogate identifier, regardless of tenant.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves the accounts of a tenant ordered by code.
	ListAccounts(ctx context.Context, tenantID string, filter AccountFilter) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's descriptive fields, parent,
	// level and active flag. It never touches CurrentBalance.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// ReparentAccount writes account like UpdateAccount and sets the level of
	// each descendant, all or nothing. It fails with ErrCyclicHierarchy when
	// account.ParentCode is, at write time, a descendant of account.Code.
	ReparentAccount(ctx context.Context, account domain.Account, descendantLevels map[string]int) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
