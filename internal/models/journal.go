package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table. PostedSeq is assigned
// from a database sequence when the entry leaves DRAFT and orders statements.
type JournalEntry struct {
	EntryID         string          `db:"entry_id"`
	TenantID        string          `db:"tenant_id"`
	EntryNumber     string          `db:"entry_number"`
	EntryDate       time.Time       `db:"entry_date"`
	VoucherType     string          `db:"voucher_type"`
	Description     string          `db:"description"`
	ReferenceNumber string          `db:"reference_number"`
	Status          string          `db:"status"`
	TotalDebit      decimal.Decimal `db:"total_debit"`
	TotalCredit     decimal.Decimal `db:"total_credit"`
	PostedBy        sql.NullString  `db:"posted_by"`
	PostedAt        sql.NullTime    `db:"posted_at"`
	PostedSeq       sql.NullInt64   `db:"posted_seq"`
	ReversalOf      sql.NullString  `db:"reversal_of"`
	ReversedBy      sql.NullString  `db:"reversed_by"`
	AuditFields
}

// JournalEntryLine is a row of the journal_entry_lines table.
type JournalEntryLine struct {
	EntryID            string          `db:"entry_id"`
	LineNumber         int             `db:"line_number"`
	AccountCode        string          `db:"account_code"`
	AccountName        string          `db:"account_name"`
	DebitAmount        decimal.Decimal `db:"debit_amount"`
	CreditAmount       decimal.Decimal `db:"credit_amount"`
	Description        string          `db:"description"`
	CostCenter         string          `db:"cost_center"`
	ProjectCode        string          `db:"project_code"`
	RelatedReferenceID string          `db:"related_reference_id"`
}
