package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
// ParentCode is NULL for root accounts.
type Account struct {
	AccountID      string          `db:"account_id"`
	TenantID       string          `db:"tenant_id"`
	Code           string          `db:"code"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	AccountType    string          `db:"account_type"`
	NormalSide     string          `db:"normal_side"`
	ParentCode     sql.NullString  `db:"parent_code"`
	Level          int             `db:"level"`
	IsActive       bool            `db:"is_active"`
	IsCashFlow     bool            `db:"is_cash_flow"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	AuditFields
}
