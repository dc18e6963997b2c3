package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// IsValid reports whether s is a known status.
func (s JournalStatus) IsValid() bool {
	return s == Draft || s == Posted || s == Reversed
}

// JournalEntry is a multi-line, balanced financial event. Lines are owned
// exclusively by the entry and kept in ascending LineNumber order.
type JournalEntry struct {
	EntryID         string             `json:"entryID"` // Surrogate key (UUID)
	TenantID        string             `json:"tenantID"`
	EntryNumber     string             `json:"entryNumber"` // Unique per tenant
	EntryDate       time.Time          `json:"entryDate"`
	VoucherType     string             `json:"voucherType"`
	Description     string             `json:"description"`
	ReferenceNumber string             `json:"referenceNumber"`
	Status          JournalStatus      `json:"status"`
	TotalDebit      decimal.Decimal    `json:"totalDebit"`
	TotalCredit     decimal.Decimal    `json:"totalCredit"`
	PostedBy        string             `json:"postedBy,omitempty"`
	PostedAt        *time.Time         `json:"postedAt,omitempty"`
	ReversalOf      string             `json:"reversalOf,omitempty"` // Entry number this entry compensates
	ReversedBy      string             `json:"reversedBy,omitempty"` // Entry number of the compensating entry
	Lines           []JournalEntryLine `json:"lines"`
	AuditFields
}

// IsReversal reports whether the entry compensates another entry.
func (e *JournalEntry) IsReversal() bool {
	return e.ReversalOf != ""
}

// AccountCodes returns the distinct account codes referenced by the lines,
// in line order.
func (e *JournalEntry) AccountCodes() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	codes := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		if _, ok := seen[line.AccountCode]; ok {
			continue
		}
		seen[line.AccountCode] = struct{}{}
		codes = append(codes, line.AccountCode)
	}
	return codes
}

// Clone returns a deep copy so callers never share line slices.
func (e JournalEntry) Clone() JournalEntry {
	c := e
	if e.PostedAt != nil {
		t := *e.PostedAt
		c.PostedAt = &t
	}
	c.Lines = make([]JournalEntryLine, len(e.Lines))
	copy(c.Lines, e.Lines)
	return c
}

// JournalEntryLine is a single debit or credit against one account.
// Exactly one of DebitAmount and CreditAmount is non-zero.
type JournalEntryLine struct {
	LineNumber         int             `json:"lineNumber"` // 1-based
	AccountCode        string          `json:"accountCode"`
	AccountName        string          `json:"accountName,omitempty"`
	DebitAmount        decimal.Decimal `json:"debitAmount"`
	CreditAmount       decimal.Decimal `json:"creditAmount"`
	Description        string          `json:"description"`
	CostCenter         string          `json:"costCenter,omitempty"`
	ProjectCode        string          `json:"projectCode,omitempty"`
	RelatedReferenceID string          `json:"relatedReferenceID,omitempty"`
}

// IsDebit reports whether the line records a debit.
func (l *JournalEntryLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Swapped returns the line with its debit and credit amounts exchanged.
func (l JournalEntryLine) Swapped() JournalEntryLine {
	l.DebitAmount, l.CreditAmount = l.CreditAmount, l.DebitAmount
	return l
}

// AccountStatementLine is one posted line seen from a single account, with
// the account balance after the line was applied.
type AccountStatementLine struct {
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	PostedAt       time.Time       `json:"postedAt"`
	LineNumber     int             `json:"lineNumber"`
	Description    string          `json:"description"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}
