package mapping

import (
	"database/sql"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry.
// Lines are converted separately with ToModelJournalLines.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	m := models.JournalEntry{
		EntryID:         d.EntryID,
		TenantID:        d.TenantID,
		EntryNumber:     d.EntryNumber,
		EntryDate:       d.EntryDate,
		VoucherType:     d.VoucherType,
		Description:     d.Description,
		ReferenceNumber: d.ReferenceNumber,
		Status:          string(d.Status),
		TotalDebit:      d.TotalDebit,
		TotalCredit:     d.TotalCredit,
		PostedBy:        nullString(d.PostedBy),
		ReversalOf:      nullString(d.ReversalOf),
		ReversedBy:      nullString(d.ReversedBy),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.PostedAt != nil {
		m.PostedAt = sql.NullTime{Time: *d.PostedAt, Valid: true}
	}
	return m
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalEntryLine) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:         m.EntryID,
		TenantID:        m.TenantID,
		EntryNumber:     m.EntryNumber,
		EntryDate:       m.EntryDate,
		VoucherType:     m.VoucherType,
		Description:     m.Description,
		ReferenceNumber: m.ReferenceNumber,
		Status:          domain.JournalStatus(m.Status),
		TotalDebit:      m.TotalDebit,
		TotalCredit:     m.TotalCredit,
		PostedBy:        m.PostedBy.String,
		ReversalOf:      m.ReversalOf.String,
		ReversedBy:      m.ReversedBy.String,
		Lines:           make([]domain.JournalEntryLine, 0, len(lines)),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.PostedAt.Valid {
		t := m.PostedAt.Time
		d.PostedAt = &t
	}
	for _, l := range lines {
		d.Lines = append(d.Lines, ToDomainJournalLine(l))
	}
	return d
}

// ToModelJournalLines converts the lines of an entry to model rows.
func ToModelJournalLines(d domain.JournalEntry) []models.JournalEntryLine {
	rows := make([]models.JournalEntryLine, len(d.Lines))
	for i, l := range d.Lines {
		rows[i] = models.JournalEntryLine{
			EntryID:            d.EntryID,
			LineNumber:         l.LineNumber,
			AccountCode:        l.AccountCode,
			AccountName:        l.AccountName,
			DebitAmount:        l.DebitAmount,
			CreditAmount:       l.CreditAmount,
			Description:        l.Description,
			CostCenter:         l.CostCenter,
			ProjectCode:        l.ProjectCode,
			RelatedReferenceID: l.RelatedReferenceID,
		}
	}
	return rows
}

// ToDomainJournalLine converts a model line to a domain line
func ToDomainJournalLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineNumber:         m.LineNumber,
		AccountCode:        m.AccountCode,
		AccountName:        m.AccountName,
		DebitAmount:        m.DebitAmount,
		CreditAmount:       m.CreditAmount,
		Description:        m.Description,
		CostCenter:         m.CostCenter,
		ProjectCode:        m.ProjectCode,
		RelatedReferenceID: m.RelatedReferenceID,
	}
}
