package repositories

import (
	"context"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
)

// AccountRepository defines persistence operations for the account registry.
// All lookups are tenant-scoped.
type AccountRepository interface {
	// SaveAccount inserts a new account. Returns apperrors.ErrDuplicate when
	// (tenant, code) already exists.
	SaveAccount(ctx context.Context, account domain.Account) error
	// SaveAccounts inserts a batch of accounts atomically (template seeding).
	SaveAccounts(ctx context.Context, accounts []domain.Account) error
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	// FindAccountsByIDs returns the found accounts keyed by ID; absent IDs
	// are simply missing from the map.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	// ListAccounts returns every account of the tenant. Per-tenant account
	// counts are bounded (low thousands), so hierarchy queries load the full
	// set into memory.
	ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	DeleteAccount(ctx context.Context, tenantID, accountID string) error
	// HasJournalLines reports whether any journal line references the account.
	HasJournalLines(ctx context.Context, tenantID, accountID string) (bool, error)
}
