package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountParentCodeNullability(t *testing.T) {
	root := ToModelAccount(domain.Account{Code: "1000"})
	assert.False(t, root.ParentCode.Valid)
	assert.Equal(t, "", ToDomainAccount(root).ParentCode)

	child := ToModelAccount(domain.Account{Code: "1100", ParentCode: "1000", Level: 1})
	assert.True(t, child.ParentCode.Valid)
	assert.Equal(t, "1000", ToDomainAccount(child).ParentCode)
}

func TestJournalEntryPostingFields(t *testing.T) {
	draft := domain.JournalEntry{EntryID: "e1", EntryNumber: "JE-000001", Status: domain.Draft}
	m := ToModelJournalEntry(draft)
	assert.False(t, m.PostedBy.Valid)
	assert.False(t, m.PostedAt.Valid)
	assert.False(t, m.ReversalOf.Valid)
	assert.Nil(t, ToDomainJournalEntry(m, nil).PostedAt)

	postedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reversal := domain.JournalEntry{
		EntryID:     "e2",
		EntryNumber: "RV-000001",
		Status:      domain.Posted,
		PostedBy:    "clerk-1",
		PostedAt:    &postedAt,
		ReversalOf:  "JE-000001",
		Lines: []domain.JournalEntryLine{
			{LineNumber: 1, AccountCode: "A-SALES", DebitAmount: decimal.RequireFromString("150.00"), CreditAmount: decimal.Zero},
			{LineNumber: 2, AccountCode: "A-CASH", DebitAmount: decimal.Zero, CreditAmount: decimal.RequireFromString("150.00")},
		},
	}

	rows := ToModelJournalLines(reversal)
	for _, row := range rows {
		assert.Equal(t, "e2", row.EntryID)
	}

	back := ToDomainJournalEntry(ToModelJournalEntry(reversal), rows)
	assert.Equal(t, "clerk-1", back.PostedBy)
	assert.True(t, postedAt.Equal(*back.PostedAt))
	assert.True(t, back.IsReversal())
	assert.Len(t, back.Lines, 2)
	assert.Equal(t, "A-CASH", back.Lines[1].AccountCode)
}
