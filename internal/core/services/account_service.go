package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/utils/validation"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface. Hierarchy and
// metadata mutations for a tenant are serialized through hierarchyLocks.
type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	hierarchyLocks *tenantLocks
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the time source used for audit fields.
func WithAccountClock(clock func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.clock = clock
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:    repo,
		hierarchyLocks: newTenantLocks(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) RegisterAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", apperrors.ErrValidation)
	}
	if err := validation.ValidateStruct(req); err != nil {
		s.LogDebug(ctx, "Invalid account registration request", slog.String("error", err.Error()))
		return nil, err
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, req.AccountType)
	}
	normalSide := req.NormalSide
	if normalSide == "" {
		normalSide = req.AccountType.DefaultNormalSide()
	} else if !normalSide.IsValid() {
		return nil, fmt.Errorf("%w: unknown normal side '%s'", apperrors.ErrValidation, normalSide)
	}
	if err := domain.ValidateAmount("opening balance", req.OpeningBalance); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	release := s.hierarchyLocks.lock(tenantID)
	defer release()

	level := 0
	parentCode := ""
	if req.ParentCode != nil && *req.ParentCode != "" {
		parentCode = *req.ParentCode
		parent, err := s.findParent(ctx, tenantID, parentCode)
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve parent account",
				slog.String("tenant_id", tenantID),
				slog.String("parent_code", parentCode))
			return nil, err
		}
		level = parent.Level + 1
	}

	now := s.Now()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		TenantID:       tenantID,
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		AccountType:    req.AccountType,
		NormalSide:     normalSide,
		ParentCode:     parentCode,
		Level:          level,
		IsActive:       true,
		IsCashFlow:     req.IsCashFlow,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		AuditFields:    domain.NewAuditFields(userID, now),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("tenant_id", tenantID),
			slog.String("account_code", account.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account registered",
		slog.String("tenant_id", tenantID),
		slog.String("account_code", account.Code),
		slog.String("account_id", account.AccountID))
	return &account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, tenantID string, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	release := s.hierarchyLocks.lock(tenantID)
	defer release()

	account, err := s.GetAccountByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.IsCashFlow != nil {
		account.IsCashFlow = *req.IsCashFlow
	}

	reparent := false
	var descendantLevels map[string]int
	if req.ParentCode != nil && *req.ParentCode != account.ParentCode {
		newLevel, err := s.validateReparent(ctx, tenantID, code, *req.ParentCode)
		if err != nil {
			s.LogError(ctx, err, "Rejected parent change",
				slog.String("tenant_id", tenantID),
				slog.String("account_code", code),
				slog.String("new_parent_code", *req.ParentCode))
			return nil, err
		}
		if newLevel != account.Level {
			descendantLevels, err = s.subtreeLevels(ctx, tenantID, code, newLevel)
			if err != nil {
				return nil, err
			}
		}
		account.ParentCode = *req.ParentCode
		account.Level = newLevel
		reparent = true
	}

	account.Touch(userID, s.Now())
	if reparent {
		err = s.accountRepo.ReparentAccount(ctx, *account, descendantLevels)
	} else {
		err = s.accountRepo.UpdateAccount(ctx, *account)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to update account",
			slog.String("tenant_id", tenantID),
			slog.String("account_code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated",
		slog.String("tenant_id", tenantID),
		slog.String("account_code", code))
	return account, nil
}

// validateReparent checks that code may move under newParent and returns the
// account's new level. An empty newParent makes the account a root.
func (s *accountService) validateReparent(ctx context.Context, tenantID, code, newParent string) (int, error) {
	if newParent == "" {
		return 0, nil
	}
	if newParent == code {
		return 0, fmt.Errorf("%w: account %s cannot be its own parent", apperrors.ErrCyclicHierarchy, code)
	}
	parent, err := s.findParent(ctx, tenantID, newParent)
	if err != nil {
		return 0, err
	}

	// Walk up from the new parent; reaching code means it is a descendant.
	visited := map[string]bool{parent.Code: true}
	for cur := parent; cur.ParentCode != ""; {
		if cur.ParentCode == code {
			return 0, fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrCyclicHierarchy, newParent, code)
		}
		if visited[cur.ParentCode] {
			return 0, fmt.Errorf("%w: existing hierarchy loops at %s", apperrors.ErrCyclicHierarchy, cur.ParentCode)
		}
		visited[cur.ParentCode] = true
		next, err := s.accountRepo.FindAccountByCode(ctx, tenantID, cur.ParentCode)
		if err != nil {
			return 0, fmt.Errorf("failed to walk hierarchy at %s: %w", cur.ParentCode, err)
		}
		cur = next
	}
	return parent.Level + 1, nil
}

// subtreeLevels computes the new level of every descendant of code once code
// sits at rootLevel.
func (s *accountService) subtreeLevels(ctx context.Context, tenantID, code string, rootLevel int) (map[string]int, error) {
	levels := make(map[string]int)
	type node struct {
		code  string
		level int
	}
	queue := []node{{code: code, level: rootLevel}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		parentCode := n.code
		children, err := s.accountRepo.ListAccounts(ctx, tenantID, portsrepo.AccountFilter{ParentCode: &parentCode})
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", n.code, err)
		}
		for _, child := range children {
			if _, seen := levels[child.Code]; seen || child.Code == code {
				continue
			}
			levels[child.Code] = n.level + 1
			queue = append(queue, node{code: child.Code, level: n.level + 1})
		}
	}
	return levels, nil
}

func (s *accountService) findParent(ctx context.Context, tenantID, parentCode string) (*domain.Account, error) {
	parent, err := s.accountRepo.FindAccountByCode(ctx, tenantID, parentCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrParentNotFound, parentCode)
		}
		return nil, err
	}
	if parent.TenantID != tenantID {
		return nil, fmt.Errorf("%w: parent %s", apperrors.ErrCrossTenantAccess, parentCode)
	}
	return parent, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, tenantID string, code string, userID string) error {
	release := s.hierarchyLocks.lock(tenantID)
	defer release()

	account, err := s.GetAccountByCode(ctx, tenantID, code)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}
	account.IsActive = false
	account.Touch(userID, s.Now())
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account",
			slog.String("tenant_id", tenantID),
			slog.String("account_code", code))
		return err
	}
	s.LogInfo(ctx, "Account deactivated",
		slog.String("tenant_id", tenantID),
		slog.String("account_code", code))
	return nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, tenantID string, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, tenantID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			s.LogError(ctx, err, "Failed to get account",
				slog.String("tenant_id", tenantID),
				slog.String("account_code", code))
		}
		return nil, err
	}
	if account.TenantID != tenantID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrCrossTenantAccess, code)
	}
	return account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.TenantID != tenantID {
		s.LogWarn(ctx, "Account requested from another tenant",
			slog.String("tenant_id", tenantID),
			slog.String("account_id", accountID))
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrCrossTenantAccess, accountID)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	return s.list(ctx, tenantID, portsrepo.AccountFilter{})
}

func (s *accountService) ListAccountsByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]domain.Account, error) {
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, accountType)
	}
	return s.list(ctx, tenantID, portsrepo.AccountFilter{AccountType: &accountType})
}

func (s *accountService) ListActiveAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	return s.list(ctx, tenantID, portsrepo.AccountFilter{ActiveOnly: true})
}

func (s *accountService) ListChildren(ctx context.Context, tenantID string, code string) ([]domain.Account, error) {
	if _, err := s.GetAccountByCode(ctx, tenantID, code); err != nil {
		return nil, err
	}
	return s.list(ctx, tenantID, portsrepo.AccountFilter{ParentCode: &code})
}

func (s *accountService) list(ctx context.Context, tenantID string, filter portsrepo.AccountFilter) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, err
	}
	return accounts, nil
}
