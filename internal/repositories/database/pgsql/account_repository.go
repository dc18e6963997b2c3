package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/models"
	"github.com/SscSPs/general_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, tenant_id, code, name, description, account_type, normal_side,
	parent_code, level, is_active, is_cash_flow, opening_balance, current_balance,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// scanAccount reads one row selected with accountColumns.
func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.Description,
		&m.AccountType,
		&m.NormalSide,
		&m.ParentCode,
		&m.Level,
		&m.IsActive,
		&m.IsCashFlow,
		&m.OpeningBalance,
		&m.CurrentBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.TenantID,
		m.Code,
		m.Name,
		m.Description,
		m.AccountType,
		m.NormalSide,
		m.ParentCode,
		m.Level,
		m.IsActive,
		m.IsCashFlow,
		m.OpeningBalance,
		m.CurrentBalance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to save account "+account.Code, apperrors.ErrDuplicateAccountCode)
	}
	return nil
}

const updateAccountSQL = `
	UPDATE accounts
	SET name = $3, description = $4, parent_code = $5, level = $6, is_active = $7,
	    is_cash_flow = $8, last_updated_at = $9, last_updated_by = $10
	WHERE tenant_id = $1 AND code = $2;`

// UpdateAccount writes the descriptive fields, parent, level and active flag.
// The balance columns are owned by ledger transactions and never written here.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return updateAccount(ctx, r.Pool, account)
}

func updateAccount(ctx context.Context, q querier, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	tag, err := q.Exec(ctx, updateAccountSQL,
		m.TenantID,
		m.Code,
		m.Name,
		m.Description,
		m.ParentCode,
		m.Level,
		m.IsActive,
		m.IsCashFlow,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update account "+account.Code, nil)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.Code)
	}
	return nil
}

// ReparentAccount moves account under its new parent and relevels the subtree
// in one transaction. A per-tenant advisory lock serializes hierarchy changes
// across processes, and the parent chain is re-read under that lock.
func (r *PgxAccountRepository) ReparentAccount(ctx context.Context, account domain.Account, descendantLevels map[string]int) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, account.TenantID); err != nil {
		return mapPgError(err, "failed to lock account hierarchy", nil)
	}
	if err := checkAncestry(ctx, tx, account.TenantID, account.Code, account.ParentCode); err != nil {
		return err
	}
	if err := updateAccount(ctx, tx, account); err != nil {
		return err
	}

	if len(descendantLevels) > 0 {
		batch := &pgx.Batch{}
		for code, level := range descendantLevels {
			batch.Queue(`
				UPDATE accounts SET level = $3, last_updated_at = $4, last_updated_by = $5
				WHERE tenant_id = $1 AND code = $2;`,
				account.TenantID, code, level, account.LastUpdatedAt, account.LastUpdatedBy)
		}
		br := tx.SendBatch(ctx, batch)
		for range descendantLevels {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return mapPgError(err, "failed to update account levels", nil)
			}
			if tag.RowsAffected() == 0 {
				br.Close()
				return fmt.Errorf("%w: level update matched no account", apperrors.ErrAccountNotFound)
			}
		}
		if err := br.Close(); err != nil {
			return mapPgError(err, "failed to update account levels", nil)
		}
	}
	return r.Commit(ctx, tx)
}

// ancestorsSQL lists parentCode and every account above it. The depth bound
// stops the walk if stored data already loops.
const ancestorsSQL = `
	WITH RECURSIVE ancestors(code, parent_code, depth) AS (
		SELECT code, parent_code, 1 FROM accounts WHERE tenant_id = $1 AND code = $2
		UNION ALL
		SELECT a.code, a.parent_code, anc.depth + 1
		FROM accounts a JOIN ancestors anc ON a.code = anc.parent_code
		WHERE a.tenant_id = $1 AND anc.depth < $3
	)
	SELECT code FROM ancestors;`

const maxHierarchyDepth = 1000

func checkAncestry(ctx context.Context, q querier, tenantID, code, parentCode string) error {
	if parentCode == "" {
		return nil
	}
	rows, err := q.Query(ctx, ancestorsSQL, tenantID, parentCode, maxHierarchyDepth)
	if err != nil {
		return mapPgError(err, "failed to read account ancestry", nil)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var ancestor string
		if err := rows.Scan(&ancestor); err != nil {
			return mapPgError(err, "failed to scan account ancestry", nil)
		}
		found = true
		if ancestor == code {
			return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrCyclicHierarchy, parentCode, code)
		}
	}
	if err := rows.Err(); err != nil {
		return mapPgError(err, "failed to read account ancestry", nil)
	}
	if !found {
		return fmt.Errorf("%w: %s", apperrors.ErrParentNotFound, parentCode)
	}
	return nil
}

// FindAccountByCode retrieves an account by its tenant-scoped code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		return nil, mapPgError(err, "failed to find account "+code, nil)
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, mapPgError(err, "failed to find account by ID "+accountID, nil)
	}
	return &acc, nil
}

// ListAccounts retrieves the accounts of a tenant matching filter, ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, filter portsrepo.AccountFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.AccountType != nil {
		args = append(args, string(*filter.AccountType))
		query += " AND account_type = $" + strconv.Itoa(len(args))
	}
	if filter.ActiveOnly {
		query += " AND is_active"
	}
	if filter.ParentCode != nil && *filter.ParentCode == "" {
		query += " AND parent_code IS NULL"
	} else if filter.ParentCode != nil {
		args = append(args, *filter.ParentCode)
		query += " AND parent_code = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY code;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to list accounts", nil)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan account row", nil)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating account rows", nil)
	}
	return accounts, nil
}
