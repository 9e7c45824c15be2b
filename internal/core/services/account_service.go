package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

var (
	ErrSelfParent         = errors.New("account cannot be its own parent")
	ErrCycleDetected      = errors.New("new parent is a descendant of the account")
	ErrParentNotFound     = errors.New("parent account not found in tenant")
	ErrSystemAccount      = errors.New("system accounts cannot be deleted")
	ErrAccountHasLines    = errors.New("account is referenced by journal history")
	ErrUnknownAccountType = errors.New("unknown account type")
)

// accountService implements the account registry: a per-tenant hierarchical
// chart of typed accounts with running balances.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a single account after validating its type, normal
// balance and parent reference.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	if !domain.ValidAccountType(req.AccountType) {
		return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrUnknownAccountType.Error(), req.AccountType)
	}

	normal := req.NormalBalance
	if normal == "" {
		normal = domain.DefaultNormalBalance(req.AccountType)
	}

	taxRole := req.TaxRole
	if taxRole == "" {
		taxRole = domain.TaxRoleNone
	}

	if req.ParentCode != "" {
		if req.ParentCode == req.Code {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrSelfParent.Error())
		}
		parent, err := s.accountRepo.FindAccountByCode(ctx, tenantID, req.ParentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrParentNotFound.Error(), req.ParentCode)
			}
			return nil, fmt.Errorf("failed to resolve parent account: %w", err)
		}
		if parent.TenantID != tenantID {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrParentNotFound.Error(), req.ParentCode)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		TenantID:       tenantID,
		Code:           req.Code,
		Name:           req.Name,
		AccountType:    req.AccountType,
		NormalBalance:  normal,
		ParentCode:     req.ParentCode,
		Description:    req.Description,
		TaxRole:        taxRole,
		IsSystem:       false,
		IsActive:       true,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s already exists in tenant", apperrors.ErrDuplicate, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("tenant_id", tenantID), slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("tenant_id", tenantID), slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// SeedStandardChart bulk-creates the built-in chart template for a new
// tenant. Seeded accounts are system accounts and cannot be deleted.
func (s *accountService) SeedStandardChart(ctx context.Context, tenantID string, creatorUserID string) ([]domain.Account, error) {
	existing, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts before seeding: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: tenant chart already seeded", apperrors.ErrConflict)
	}

	now := time.Now().UTC()
	accounts := make([]domain.Account, len(domain.StandardChartTemplate))
	for i, tpl := range domain.StandardChartTemplate {
		taxRole := tpl.TaxRole
		if taxRole == "" {
			taxRole = domain.TaxRoleNone
		}
		accounts[i] = domain.Account{
			AccountID:     uuid.NewString(),
			TenantID:      tenantID,
			Code:          tpl.Code,
			Name:          tpl.Name,
			AccountType:   tpl.AccountType,
			NormalBalance: domain.DefaultNormalBalance(tpl.AccountType),
			ParentCode:    tpl.ParentCode,
			TaxRole:       taxRole,
			IsSystem:      true,
			IsActive:      true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}

	if err := s.accountRepo.SaveAccounts(ctx, accounts); err != nil {
		s.LogError(ctx, err, "Failed to seed standard chart", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to seed standard chart: %w", err)
	}

	s.LogInfo(ctx, "Standard chart seeded", slog.String("tenant_id", tenantID), slog.Int("account_count", len(accounts)))
	return accounts, nil
}

// GetAccountByID retrieves one account.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByCode retrieves one account by its human-readable code.
func (s *accountService) GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, tenantID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account code %s: %w", code, err)
	}
	return account, nil
}

// GetAccountsByIDs retrieves a batch of accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, tenantID, accountIDs)
}

// ListAccounts returns the tenant's full chart.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, tenantID)
}

// UpdateAccount edits an account's mutable fields and returns the audited
// before/after diff.
func (s *accountService) UpdateAccount(ctx context.Context, tenantID, accountID string, req dto.UpdateAccountRequest, userID string) (*dto.AccountDiff, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	before := *account
	updated := false
	if req.Name != nil && *req.Name != account.Name {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil && *req.Description != account.Description {
		account.Description = *req.Description
		updated = true
	}
	if req.TaxRole != nil && *req.TaxRole != account.TaxRole {
		account.TaxRole = *req.TaxRole
		updated = true
	}

	if !updated {
		return &dto.AccountDiff{Before: before, After: *account}, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Account updated",
		slog.String("tenant_id", tenantID),
		slog.String("account_id", accountID),
		slog.String("before_name", before.Name),
		slog.String("after_name", account.Name),
		slog.String("updated_by", userID))
	return &dto.AccountDiff{Before: before, After: *account}, nil
}

// MoveAccount re-parents an account. Fails with ErrSelfParent when the new
// parent is the account itself and ErrCycleDetected when the new parent is
// one of its descendants.
func (s *accountService) MoveAccount(ctx context.Context, tenantID, accountID string, req dto.MoveAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	if req.NewParentCode != "" {
		if req.NewParentCode == account.Code {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrSelfParent.Error())
		}

		accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts for cycle check: %w", err)
		}
		index := indexByCode(accounts)
		if _, ok := index[req.NewParentCode]; !ok {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrParentNotFound.Error(), req.NewParentCode)
		}
		for _, desc := range descendantsOf(index, account.Code) {
			if desc.Code == req.NewParentCode {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrCycleDetected.Error())
			}
		}
	}

	account.ParentCode = req.NewParentCode
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to move account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Account moved", slog.String("tenant_id", tenantID), slog.String("account_id", accountID), slog.String("new_parent", req.NewParentCode))
	return account, nil
}

// DeleteAccount removes an account. System accounts are protected, and an
// account referenced by journal history cannot be deleted.
func (s *accountService) DeleteAccount(ctx context.Context, tenantID, accountID string, userID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	if account.IsSystem {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrSystemAccount.Error())
	}

	hasLines, err := s.accountRepo.HasJournalLines(ctx, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to check journal references for account %s: %w", accountID, err)
	}
	if hasLines {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountHasLines.Error())
	}

	if err := s.accountRepo.DeleteAccount(ctx, tenantID, accountID); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Account deleted", slog.String("tenant_id", tenantID), slog.String("account_id", accountID), slog.String("deleted_by", userID))
	return nil
}

// --- Hierarchy queries ---
//
// Accounts are flat records with a parentCode back-reference; tree shape is
// reconstructed on demand from a code-keyed map. Orphaned parent references
// degrade to "treat as root" so a tree is always produced.

func indexByCode(accounts []domain.Account) map[string]domain.Account {
	index := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		index[a.Code] = a
	}
	return index
}

// effectiveParent returns the parent code, or "" when the account is a root
// or its parent reference is orphaned.
func effectiveParent(index map[string]domain.Account, a domain.Account) string {
	if a.ParentCode == "" {
		return ""
	}
	if _, ok := index[a.ParentCode]; !ok {
		return ""
	}
	return a.ParentCode
}

func childrenOf(index map[string]domain.Account, code string) []domain.Account {
	var children []domain.Account
	for _, a := range index {
		if effectiveParent(index, a) == code && a.Code != code {
			children = append(children, a)
		}
	}
	return children
}

func descendantsOf(index map[string]domain.Account, code string) []domain.Account {
	var result []domain.Account
	queue := []string{code}
	visited := map[string]bool{code: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range childrenOf(index, current) {
			if visited[child.Code] {
				continue
			}
			visited[child.Code] = true
			result = append(result, child)
			queue = append(queue, child.Code)
		}
	}
	return result
}

// GetTree builds the full per-tenant forest.
func (s *accountService) GetTree(ctx context.Context, tenantID string) ([]*domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for tree: %w", err)
	}

	index := indexByCode(accounts)
	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.Code] = &domain.AccountNode{Account: a}
	}

	var roots []*domain.AccountNode
	for _, a := range accounts {
		node := nodes[a.Code]
		parent := effectiveParent(index, a)
		if parent == "" {
			roots = append(roots, node)
			continue
		}
		parentNode := nodes[parent]
		parentNode.Children = append(parentNode.Children, node)
	}
	return roots, nil
}

// GetChildren returns the direct children of an account.
func (s *accountService) GetChildren(ctx context.Context, tenantID, code string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := indexByCode(accounts)
	if _, ok := index[code]; !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	return childrenOf(index, code), nil
}

// GetAncestors walks the parent chain from the account to its root.
func (s *accountService) GetAncestors(ctx context.Context, tenantID, code string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := indexByCode(accounts)
	account, ok := index[code]
	if !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}

	var ancestors []domain.Account
	visited := map[string]bool{code: true}
	for {
		parent := effectiveParent(index, account)
		if parent == "" || visited[parent] {
			break
		}
		visited[parent] = true
		account = index[parent]
		ancestors = append(ancestors, account)
	}
	return ancestors, nil
}

// GetDescendants returns every account below the given one.
func (s *accountService) GetDescendants(ctx context.Context, tenantID, code string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := indexByCode(accounts)
	if _, ok := index[code]; !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	return descendantsOf(index, code), nil
}

// GetRoots returns all accounts without an (effective) parent.
func (s *accountService) GetRoots(ctx context.Context, tenantID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := indexByCode(accounts)
	var roots []domain.Account
	for _, a := range accounts {
		if effectiveParent(index, a) == "" {
			roots = append(roots, a)
		}
	}
	return roots, nil
}

// GetLeaves returns all accounts that no other account references as parent.
func (s *accountService) GetLeaves(ctx context.Context, tenantID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := indexByCode(accounts)
	childCount := make(map[string]int, len(accounts))
	for _, a := range accounts {
		if parent := effectiveParent(index, a); parent != "" {
			childCount[parent]++
		}
	}
	var leaves []domain.Account
	for _, a := range accounts {
		if childCount[a.Code] == 0 {
			leaves = append(leaves, a)
		}
	}
	return leaves, nil
}

// GetStatistics computes per-type, root, leaf and system counts in one pass
// plus a children-count aggregation.
func (s *accountService) GetStatistics(ctx context.Context, tenantID string) (*domain.AccountStatistics, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := indexByCode(accounts)

	stats := &domain.AccountStatistics{
		Total:  len(accounts),
		ByType: make(map[domain.AccountType]int),
	}
	childCount := make(map[string]int, len(accounts))
	for _, a := range accounts {
		stats.ByType[a.AccountType]++
		if a.IsSystem {
			stats.SystemCount++
		}
		parent := effectiveParent(index, a)
		if parent == "" {
			stats.RootCount++
		} else {
			childCount[parent]++
		}
	}
	for _, a := range accounts {
		if childCount[a.Code] == 0 {
			stats.LeafCount++
		}
	}
	return stats, nil
}
