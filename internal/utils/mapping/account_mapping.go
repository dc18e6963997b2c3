package mapping

import (
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		TenantID:       d.TenantID,
		Code:           d.Code,
		Name:           d.Name,
		Description:    d.Description,
		AccountType:    string(d.AccountType),
		NormalSide:     string(d.NormalSide),
		ParentCode:     nullString(d.ParentCode),
		Level:          d.Level,
		IsActive:       d.IsActive,
		IsCashFlow:     d.IsCashFlow,
		OpeningBalance: d.OpeningBalance,
		CurrentBalance: d.CurrentBalance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		TenantID:       m.TenantID,
		Code:           m.Code,
		Name:           m.Name,
		Description:    m.Description,
		AccountType:    domain.AccountType(m.AccountType),
		NormalSide:     domain.NormalSide(m.NormalSide),
		ParentCode:     m.ParentCode.String,
		Level:          m.Level,
		IsActive:       m.IsActive,
		IsCashFlow:     m.IsCashFlow,
		OpeningBalance: m.OpeningBalance,
		CurrentBalance: m.CurrentBalance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
