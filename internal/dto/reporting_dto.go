package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
	AccountType string `json:"accountType"`
	Level       int    `json:"level"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  string `json:"debit"`
		Credit string `json:"credit"`
	} `json:"totals"`
	Balanced bool `json:"balanced"`
}

// StatementLineResponse is one line of an account statement.
type StatementLineResponse struct {
	EntryNumber    string    `json:"entryNumber"`
	EntryDate      time.Time `json:"entryDate"`
	PostedAt       time.Time `json:"postedAt"`
	LineNumber     int       `json:"lineNumber"`
	Description    string    `json:"description,omitempty"`
	Debit          string    `json:"debit"`
	Credit         string    `json:"credit"`
	RunningBalance string    `json:"runningBalance"`
}

// AccountStatementResponse wraps the statement of one account.
type AccountStatementResponse struct {
	AccountCode    string                  `json:"accountCode"`
	OpeningBalance string                  `json:"openingBalance"`
	ClosingBalance string                  `json:"closingBalance"`
	Lines          []StatementLineResponse `json:"lines"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		Rows:     make([]TrialBalanceRowResponse, len(tb.Rows)),
		Balanced: tb.Balanced,
	}
	for i, row := range tb.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Level:       row.Level,
			Debit:       domain.FormatAmount(row.Debit),
			Credit:      domain.FormatAmount(row.Credit),
		}
	}
	response.Totals.Debit = domain.FormatAmount(tb.TotalDebit)
	response.Totals.Credit = domain.FormatAmount(tb.TotalCredit)
	return response
}

// ToAccountStatementResponse converts statement lines of an account to a DTO response.
func ToAccountStatementResponse(acc *domain.Account, lines []domain.AccountStatementLine) AccountStatementResponse {
	response := AccountStatementResponse{
		AccountCode:    acc.Code,
		OpeningBalance: domain.FormatAmount(acc.OpeningBalance),
		ClosingBalance: domain.FormatAmount(acc.OpeningBalance),
		Lines:          make([]StatementLineResponse, len(lines)),
	}
	for i, l := range lines {
		response.Lines[i] = StatementLineResponse{
			EntryNumber:    l.EntryNumber,
			EntryDate:      l.EntryDate,
			PostedAt:       l.PostedAt,
			LineNumber:     l.LineNumber,
			Description:    l.Description,
			Debit:          domain.FormatAmount(l.DebitAmount),
			Credit:         domain.FormatAmount(l.CreditAmount),
			RunningBalance: domain.FormatAmount(l.RunningBalance),
		}
	}
	if len(lines) > 0 {
		response.ClosingBalance = domain.FormatAmount(lines[len(lines)-1].RunningBalance)
	}
	return response
}
