package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to register a new account.
type CreateAccountRequest struct {
	Code           string             `json:"code" binding:"required,max=50"`
	Name           string             `json:"name" binding:"required,max=255"`
	Description    string             `json:"description" binding:"max=1000"` // Optional
	AccountType    domain.AccountType `json:"accountType" binding:"required,account_type"`
	NormalSide     domain.NormalSide  `json:"normalSide" binding:"normal_side"` // Optional, defaults from AccountType
	ParentCode     *string            `json:"parentCode"`                       // Optional, use pointer for nullability
	IsCashFlow     bool               `json:"isCashFlow"`
	OpeningBalance Amount             `json:"openingBalance" binding:"amount"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// An empty ParentCode moves the account to the root.
type UpdateAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ParentCode  *string `json:"parentCode"`
	IsActive    *bool   `json:"isActive"`
	IsCashFlow  *bool   `json:"isCashFlow"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string             `json:"accountID"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	AccountType    domain.AccountType `json:"accountType"`
	NormalSide     domain.NormalSide  `json:"normalSide"`
	ParentCode     string             `json:"parentCode"` // Note: Empty string for root accounts
	Level          int                `json:"level"`
	IsActive       bool               `json:"isActive"`
	IsCashFlow     bool               `json:"isCashFlow"`
	OpeningBalance string             `json:"openingBalance"`
	CurrentBalance string             `json:"currentBalance"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      string             `json:"createdBy"`
	LastUpdatedAt  time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy  string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Code:           acc.Code,
		Name:           acc.Name,
		Description:    acc.Description,
		AccountType:    acc.AccountType,
		NormalSide:     acc.NormalSide,
		ParentCode:     acc.ParentCode,
		Level:          acc.Level,
		IsActive:       acc.IsActive,
		IsCashFlow:     acc.IsCashFlow,
		OpeningBalance: domain.FormatAmount(acc.OpeningBalance),
		CurrentBalance: domain.FormatAmount(acc.CurrentBalance),
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Type       string `form:"type" binding:"omitempty,account_type"`
	ActiveOnly bool   `form:"activeOnly"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
