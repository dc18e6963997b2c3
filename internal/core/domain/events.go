package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEventType names an event emitted after a committed ledger change.
type LedgerEventType string

const (
	EventJournalEntryPosted   LedgerEventType = "JOURNAL_ENTRY_POSTED"
	EventJournalEntryReversed LedgerEventType = "JOURNAL_ENTRY_REVERSED"
)

// LedgerEvent describes a committed posting or reversal.
type LedgerEvent struct {
	EventID     string          `json:"eventID"`
	Type        LedgerEventType `json:"type"`
	TenantID    string          `json:"tenantID"`
	EntryNumber string          `json:"entryNumber"`
	ReversalOf  string          `json:"reversalOf,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ActorID     string          `json:"actorID"`
	OccurredAt  time.Time       `json:"occurredAt"`
}
