package services

import (
	"context"
	"time"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// JournalSvcFacade exposes the journal engine operations.
type JournalSvcFacade interface {
	CreateEntry(ctx context.Context, tenantID string, req dto.CreateEntryRequest, creatorUserID string) (*dto.CreateEntryResponse, error)
	GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
	UpdateDraft(ctx context.Context, tenantID, entryID string, req dto.UpdateDraftRequest, userID string) (*domain.JournalEntry, error)
	DeleteDraft(ctx context.Context, tenantID, entryID string, userID string) error
	PostEntry(ctx context.Context, tenantID, entryID string, userID string) (*domain.JournalEntry, error)
	ReverseEntry(ctx context.Context, tenantID, entryID string, userID string) (*domain.JournalEntry, error)
	PostMany(ctx context.Context, tenantID string, req dto.BulkEntryRequest, userID string) *dto.BulkEntryResponse
	ReverseMany(ctx context.Context, tenantID string, req dto.BulkEntryRequest, userID string) *dto.BulkEntryResponse
	// ValidateEntry runs the validation pipeline plus the advisory
	// accounting-equation check without persisting anything.
	ValidateEntry(ctx context.Context, tenantID string, req dto.CreateEntryRequest) (*dto.ValidateEntryResponse, error)
	// ImportRows groups consecutive rows sharing (date, reference) into
	// posted entries, reporting per-row errors without aborting siblings.
	ImportRows(ctx context.Context, tenantID string, rows []dto.ImportRow, userID string) (*dto.ImportResult, error)
	// ListAccountLines returns the posted lines touching one account,
	// oldest first. Zero period bounds mean unbounded.
	ListAccountLines(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]domain.PostedLine, error)
}

// BalanceSvcFacade resolves account balances.
type BalanceSvcFacade interface {
	// CurrentBalance reads the stored running balance.
	CurrentBalance(ctx context.Context, tenantID, accountID string) (decimal.Decimal, error)
	// BalanceAsOf replays posted deltas: opening + Σ(debit−credit) over
	// POSTED entries dated on or before asOf. REVERSED entries are excluded
	// entirely, regardless of when the reversal happened.
	BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error)
	// AsOfBalances resolves every account of the tenant at once, keyed by
	// account ID. A zero asOf means "current".
	AsOfBalances(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error)
}
