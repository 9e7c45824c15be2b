package services

import (
	"context"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

// AccountSvcFacade exposes the account registry operations.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	// SeedStandardChart bulk-creates the built-in chart template at tenant
	// onboarding; seeded accounts are system accounts.
	SeedStandardChart(ctx context.Context, tenantID string, creatorUserID string) ([]domain.Account, error)
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, tenantID, accountID string, req dto.UpdateAccountRequest, userID string) (*dto.AccountDiff, error)
	MoveAccount(ctx context.Context, tenantID, accountID string, req dto.MoveAccountRequest, userID string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, tenantID, accountID string, userID string) error

	// Hierarchy queries, computed in memory over the tenant's full chart.
	GetTree(ctx context.Context, tenantID string) ([]*domain.AccountNode, error)
	GetChildren(ctx context.Context, tenantID, code string) ([]domain.Account, error)
	GetAncestors(ctx context.Context, tenantID, code string) ([]domain.Account, error)
	GetDescendants(ctx context.Context, tenantID, code string) ([]domain.Account, error)
	GetRoots(ctx context.Context, tenantID string) ([]domain.Account, error)
	GetLeaves(ctx context.Context, tenantID string) ([]domain.Account, error)
	GetStatistics(ctx context.Context, tenantID string) (*domain.AccountStatistics, error)
}
