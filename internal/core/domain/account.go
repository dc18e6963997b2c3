package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// DefaultNormalSide returns the conventional normal-balance side for the type.
// Asset and expense accounts increase on the debit side, all others on credit.
func (t AccountType) DefaultNormalSide() NormalSide {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// NormalSide is the side on which increases to an account are recorded.
type NormalSide string

const (
	Debit  NormalSide = "DEBIT"
	Credit NormalSide = "CREDIT"
)

// IsValid reports whether s is DEBIT or CREDIT.
func (s NormalSide) IsValid() bool {
	return s == Debit || s == Credit
}

// Account represents a general ledger account within the chart of accounts.
// The (TenantID, Code) pair is unique. ParentCode is a weak reference resolved
// by lookup, never an embedded pointer.
type Account struct {
	AccountID      string          `json:"accountID"` // Surrogate key (UUID)
	TenantID       string          `json:"tenantID"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	AccountType    AccountType     `json:"accountType"`
	NormalSide     NormalSide      `json:"normalSide"`
	ParentCode     string          `json:"parentCode"` // Empty for root accounts
	Level          int             `json:"level"`      // Root = 0
	IsActive       bool            `json:"isActive"`
	IsCashFlow     bool            `json:"isCashFlow"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	AuditFields
}

// IsRoot reports whether the account has no parent.
func (a *Account) IsRoot() bool {
	return a.ParentCode == ""
}
