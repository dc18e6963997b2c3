package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTxManager runs ledger transactions on a pgx transaction. Locks are
// row locks taken with SELECT ... FOR UPDATE and held until commit.
type PgxTxManager struct {
	BaseRepository
}

func newPgxTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTxManager)(nil)

// WithinTx runs fn inside a single database transaction.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer m.Rollback(ctx, tx) //nolint:errcheck

	if err := fn(ctx, &pgLedgerTx{tx: tx}); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}

type pgLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgLedgerTx)(nil)

func (t *pgLedgerTx) LockJournalEntry(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error) {
	entry, err := findEntry(ctx, t.tx, "tenant_id = $1 AND entry_number = $2", "FOR UPDATE", tenantID, entryNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, entryNumber)
	}
	return entry, nil
}

func (t *pgLedgerTx) LockAccounts(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1 AND code = ANY($2)
		ORDER BY code
		FOR UPDATE;`, tenantID, codes)
	if err != nil {
		return nil, mapPgError(err, "failed to lock accounts", nil)
	}
	defer rows.Close()

	locked := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan locked account", nil)
		}
		locked[acc.Code] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to lock accounts", nil)
	}
	return locked, nil
}

func (t *pgLedgerTx) SetAccountBalance(ctx context.Context, tenantID, code string, balance decimal.Decimal, userID string, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE accounts SET current_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND code = $2;`, tenantID, code, balance, at, userID)
	if err != nil {
		return mapPgError(err, "failed to update balance of account "+code, nil)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
	}
	return nil
}

func (t *pgLedgerTx) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	return insertEntry(ctx, t.tx, entry)
}

func (t *pgLedgerTx) UpdateJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	return updateEntry(ctx, t.tx, entry)
}

func (t *pgLedgerTx) DeleteJournalEntry(ctx context.Context, tenantID, entryNumber string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id = $1 AND entry_number = $2;`, tenantID, entryNumber)
	if err != nil {
		return mapPgError(err, "failed to delete journal entry "+entryNumber, nil)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryNumber)
	}
	return nil
}
