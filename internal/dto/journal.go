package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// JournalLineRequest defines a single line of a journal entry request.
type JournalLineRequest struct {
	AccountCode        string `json:"accountCode" binding:"required,max=50"`
	DebitAmount        Amount `json:"debitAmount" binding:"amount"`
	CreditAmount       Amount `json:"creditAmount" binding:"amount"`
	Description        string `json:"description" binding:"max=500"`
	CostCenter         string `json:"costCenter" binding:"max=50"`
	ProjectCode        string `json:"projectCode" binding:"max=50"`
	RelatedReferenceID string `json:"relatedReferenceID" binding:"max=100"`
}

// CreateJournalEntryRequest defines the data needed to create a draft journal entry.
// Line count and balance are checked by the journal engine, not here, so that
// they surface as their own error kinds.
type CreateJournalEntryRequest struct {
	// EntryDate defaults to the current time and VoucherType to JE.
	EntryDate       time.Time            `json:"entryDate"`
	VoucherType     string               `json:"voucherType" binding:"omitempty,alphanum,max=10"`
	Description     string               `json:"description" binding:"max=1000"`
	ReferenceNumber string               `json:"referenceNumber" binding:"max=100"`
	Lines           []JournalLineRequest `json:"lines" binding:"dive"`
}

// UpdateJournalEntryRequest replaces the header and lines of a draft entry.
type UpdateJournalEntryRequest = CreateJournalEntryRequest

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineNumber         int    `json:"lineNumber"`
	AccountCode        string `json:"accountCode"`
	AccountName        string `json:"accountName,omitempty"`
	DebitAmount        string `json:"debitAmount"`
	CreditAmount       string `json:"creditAmount"`
	Description        string `json:"description,omitempty"`
	CostCenter         string `json:"costCenter,omitempty"`
	ProjectCode        string `json:"projectCode,omitempty"`
	RelatedReferenceID string `json:"relatedReferenceID,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	EntryNumber     string                `json:"entryNumber"`
	EntryDate       time.Time             `json:"entryDate"`
	VoucherType     string                `json:"voucherType"`
	Description     string                `json:"description"`
	ReferenceNumber string                `json:"referenceNumber,omitempty"`
	Status          domain.JournalStatus  `json:"status"`
	TotalDebit      string                `json:"totalDebit"`
	TotalCredit     string                `json:"totalCredit"`
	PostedBy        string                `json:"postedBy,omitempty"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	ReversalOf      string                `json:"reversalOf,omitempty"`
	ReversedBy      string                `json:"reversedBy,omitempty"`
	Lines           []JournalLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineNumber:         l.LineNumber,
			AccountCode:        l.AccountCode,
			AccountName:        l.AccountName,
			DebitAmount:        domain.FormatAmount(l.DebitAmount),
			CreditAmount:       domain.FormatAmount(l.CreditAmount),
			Description:        l.Description,
			CostCenter:         l.CostCenter,
			ProjectCode:        l.ProjectCode,
			RelatedReferenceID: l.RelatedReferenceID,
		}
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		EntryNumber:     e.EntryNumber,
		EntryDate:       e.EntryDate,
		VoucherType:     e.VoucherType,
		Description:     e.Description,
		ReferenceNumber: e.ReferenceNumber,
		Status:          e.Status,
		TotalDebit:      domain.FormatAmount(e.TotalDebit),
		TotalCredit:     domain.FormatAmount(e.TotalCredit),
		PostedBy:        e.PostedBy,
		PostedAt:        e.PostedAt,
		ReversalOf:      e.ReversalOf,
		ReversedBy:      e.ReversedBy,
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		LastUpdatedAt:   e.LastUpdatedAt,
		LastUpdatedBy:   e.LastUpdatedBy,
	}
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry to []JournalEntryResponse.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ReverseJournalEntryResponse returns both sides of a reversal.
type ReverseJournalEntryResponse struct {
	Original JournalEntryResponse `json:"original"`
	Reversal JournalEntryResponse `json:"reversal"`
}
