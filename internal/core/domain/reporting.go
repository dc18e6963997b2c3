package domain

import (
	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report.
// The balance sits in the Debit column for debit-normal accounts and in the
// Credit column for credit-normal accounts.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	NormalSide  NormalSide      `json:"normalSide"`
	Level       int             `json:"level"`
	Balance     decimal.Decimal `json:"balance"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance aggregates every active account of a tenant.
type TrialBalance struct {
	TenantID    string            `json:"tenantID"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}
