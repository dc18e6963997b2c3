package services

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByCode retrieves an account by its tenant-scoped code.
	GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error)

	// GetAccountByID retrieves an account by its surrogate identifier.
	// It fails with CrossTenantAccess when the account belongs to another tenant.
	GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error)

	// ListAccounts retrieves every account of a tenant, active or not.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// ListAccountsByType retrieves the accounts of one type.
	ListAccountsByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]domain.Account, error)

	// ListActiveAccounts retrieves the active accounts of a tenant.
	ListActiveAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account.
	ListChildren(ctx context.Context, tenantID string, code string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// RegisterAccount persists a new account.
	RegisterAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details, including its parent.
	UpdateAccount(ctx context.Context, tenantID string, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Children are not affected.
	DeactivateAccount(ctx context.Context, tenantID string, code string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
