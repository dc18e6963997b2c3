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
	"github.com/SscSPs/general_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, voucher_type, description,
	reference_number, status, total_debit, total_credit, posted_by, posted_at, posted_seq,
	reversal_of, reversed_by, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `entry_id, line_number, account_code, account_name, debit_amount, credit_amount,
	description, cost_center, project_code, related_reference_id`

type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.VoucherType,
		&m.Description,
		&m.ReferenceNumber,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.PostedBy,
		&m.PostedAt,
		&m.PostedSeq,
		&m.ReversalOf,
		&m.ReversedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// insertEntry writes the header and lines of a new entry. A non-draft entry
// takes its posting order from journal_posting_seq.
func insertEntry(ctx context.Context, q querier, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	_, err := q.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        CASE WHEN $8 <> 'DRAFT' THEN nextval('journal_posting_seq') END,
		        $13, $14, $15, $16, $17, $18);`,
		m.EntryID,
		m.TenantID,
		m.EntryNumber,
		m.EntryDate,
		m.VoucherType,
		m.Description,
		m.ReferenceNumber,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.PostedBy,
		m.PostedAt,
		m.ReversalOf,
		m.ReversedBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to insert journal entry "+entry.EntryNumber, nil)
	}
	return insertLines(ctx, q, entry)
}

func insertLines(ctx context.Context, q querier, entry domain.JournalEntry) error {
	batch := &pgx.Batch{}
	for _, l := range mapping.ToModelJournalLines(entry) {
		batch.Queue(`
			INSERT INTO journal_entry_lines (`+lineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
			l.EntryID,
			l.LineNumber,
			l.AccountCode,
			l.AccountName,
			l.DebitAmount,
			l.CreditAmount,
			l.Description,
			l.CostCenter,
			l.ProjectCode,
			l.RelatedReferenceID,
		)
	}
	br := q.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError(err, "failed to insert lines of journal entry "+entry.EntryNumber, nil)
	}
	return nil
}

// updateEntry replaces the header and lines of an existing entry.
func updateEntry(ctx context.Context, q querier, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	tag, err := q.Exec(ctx, `
		UPDATE journal_entries
		SET entry_date = $3, description = $4, reference_number = $5, status = $6,
		    total_debit = $7, total_credit = $8, posted_by = $9, posted_at = $10,
		    posted_seq = CASE WHEN $6 <> 'DRAFT' AND posted_seq IS NULL THEN nextval('journal_posting_seq') ELSE posted_seq END,
		    reversal_of = $11, reversed_by = $12, last_updated_at = $13, last_updated_by = $14
		WHERE tenant_id = $1 AND entry_number = $2;`,
		m.TenantID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.ReferenceNumber,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.PostedBy,
		m.PostedAt,
		m.ReversalOf,
		m.ReversedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update journal entry "+entry.EntryNumber, nil)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entry.EntryNumber)
	}
	if _, err := q.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return mapPgError(err, "failed to replace lines of journal entry "+entry.EntryNumber, nil)
	}
	return insertLines(ctx, q, entry)
}

// loadLines fetches the lines of the given entries keyed by entry ID.
func loadLines(ctx context.Context, q querier, entryIDs []string) (map[string][]models.JournalEntryLine, error) {
	result := make(map[string][]models.JournalEntryLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+lineColumns+`
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_number;`, entryIDs)
	if err != nil {
		return nil, mapPgError(err, "failed to query journal lines", nil)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(
			&l.EntryID,
			&l.LineNumber,
			&l.AccountCode,
			&l.AccountName,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.Description,
			&l.CostCenter,
			&l.ProjectCode,
			&l.RelatedReferenceID,
		); err != nil {
			return nil, mapPgError(err, "failed to scan journal line", nil)
		}
		result[l.EntryID] = append(result[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating journal lines", nil)
	}
	return result, nil
}

// findEntry loads one entry with its lines. suffix is appended to the query,
// e.g. FOR UPDATE.
func findEntry(ctx context.Context, q querier, where string, suffix string, args ...any) (*domain.JournalEntry, error) {
	m, err := scanEntry(q.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE `+where+` `+suffix+`;`, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, mapPgError(err, "failed to find journal entry", nil)
	}
	lines, err := loadLines(ctx, q, []string{m.EntryID})
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(m, lines[m.EntryID])
	return &entry, nil
}

// SaveJournalEntry persists a new entry with its lines.
func (r *PgxJournalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindEntryByNumber retrieves an entry and its lines by tenant and entry number.
func (r *PgxJournalRepository) FindEntryByNumber(ctx context.Context, tenantID, entryNumber string) (*domain.JournalEntry, error) {
	entry, err := findEntry(ctx, r.Pool, "tenant_id = $1 AND entry_number = $2", "", tenantID, entryNumber)
	if errors.Is(err, apperrors.ErrEntryNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryNumber)
	}
	return entry, err
}

// FindEntryByID retrieves an entry by its surrogate identifier.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := findEntry(ctx, r.Pool, "entry_id = $1", "", entryID)
	if errors.Is(err, apperrors.ErrEntryNotFound) {
		return nil, fmt.Errorf("%w: id %s", apperrors.ErrEntryNotFound, entryID)
	}
	return entry, err
}

// ListEntries retrieves a page of entries, newest entry date first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, tenantID string, status *domain.JournalStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != nil {
		args = append(args, string(*status))
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		args = append(args, cursor.EntryDate, cursor.CreatedAt, cursor.EntryNumber)
		n := len(args)
		query += fmt.Sprintf(" AND (entry_date, created_at, entry_number) < ($%d, $%d, $%d)", n-2, n-1, n)
	}
	args = append(args, fetchLimit)
	query += " ORDER BY entry_date DESC, created_at DESC, entry_number DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapPgError(err, "failed to query journal entries for tenant "+tenantID, nil)
	}
	headers := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, nil, mapPgError(err, "failed to scan journal entry", nil)
		}
		headers = append(headers, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "error iterating journal entries", nil)
	}

	var token *string
	if len(headers) > limit {
		headers = headers[:limit]
		last := headers[len(headers)-1]
		t := pagination.EncodeToken(pagination.EntryCursor{
			EntryDate:   last.EntryDate,
			CreatedAt:   last.CreatedAt,
			EntryNumber: last.EntryNumber,
		})
		token = &t
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	lines, err := loadLines(ctx, r.Pool, ids)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		entries[i] = mapping.ToDomainJournalEntry(h, lines[h.EntryID])
	}
	return entries, token, nil
}

// ListPostedLinesByAccount retrieves every posted line against an account in posting order.
func (r *PgxJournalRepository) ListPostedLinesByAccount(ctx context.Context, tenantID, accountCode string) ([]domain.AccountStatementLine, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT e.entry_number, e.entry_date, e.posted_at, l.line_number, l.description, l.debit_amount, l.credit_amount
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = $1 AND l.account_code = $2 AND e.posted_seq IS NOT NULL
		ORDER BY e.posted_seq, l.line_number;`, tenantID, accountCode)
	if err != nil {
		return nil, mapPgError(err, "failed to query statement of account "+accountCode, nil)
	}
	defer rows.Close()

	lines := make([]domain.AccountStatementLine, 0)
	for rows.Next() {
		var sl domain.AccountStatementLine
		if err := rows.Scan(&sl.EntryNumber, &sl.EntryDate, &sl.PostedAt, &sl.LineNumber, &sl.Description, &sl.DebitAmount, &sl.CreditAmount); err != nil {
			return nil, mapPgError(err, "failed to scan statement line", nil)
		}
		lines = append(lines, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating statement lines", nil)
	}
	return lines, nil
}
