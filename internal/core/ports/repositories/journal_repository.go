package repositories

import (
	"context"
	"time"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalRepository defines persistence operations for journal entries and
// their lines.
//
// Posting atomicity: SaveEntry (when the entry is POSTED), MarkPosted and
// MarkReversed must apply the status write and every account balance delta
// inside a single database transaction with per-account row locks, so
// concurrent postings against the same account serialize their
// read-modify-write. A balance update without the matching status write is
// a consistency defect.
type JournalRepository interface {
	// SaveEntry inserts an entry with its lines. balanceDeltas maps account
	// ID to the raw delta (Σ debit−credit of that account's lines) and is
	// applied only when the entry is created directly POSTED; pass nil for
	// drafts. Duplicate (tenant, reference) returns apperrors.ErrDuplicate.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceDeltas map[string]decimal.Decimal) error
	FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)
	FindEntryByReference(ctx context.Context, tenantID, reference string) (*domain.JournalEntry, error)
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)
	// ListEntries pages entries newest-first using an opaque cursor token.
	ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversed bool) ([]domain.JournalEntry, *string, error)
	// UpdateDraftEntry replaces a draft's header and lines. Fails with
	// apperrors.ErrConflict if the stored entry is no longer DRAFT.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error
	// DeleteDraftEntry removes a draft and its lines. POSTED/REVERSED
	// entries are never physically deleted.
	DeleteDraftEntry(ctx context.Context, tenantID, entryID string) error
	// MarkPosted flips DRAFT→POSTED and applies balanceDeltas atomically.
	// The status write is guarded by the current status; a concurrent flip
	// surfaces as apperrors.ErrConflict.
	MarkPosted(ctx context.Context, tenantID, entryID string, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time) error
	// MarkReversed flips POSTED→REVERSED and applies the negated deltas
	// atomically, with the same status guard.
	MarkReversed(ctx context.Context, tenantID, entryID string, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time) error

	// SumPostedDeltas returns Σ(debit−credit) per account over POSTED
	// entries with entry_date in [from, to]. A zero from means "from the
	// beginning". Used by the balance resolver and the report engine.
	SumPostedDeltas(ctx context.Context, tenantID string, from, to time.Time) (map[string]decimal.Decimal, error)
	// SumPostedDeltaForAccount is the single-account as-of variant.
	SumPostedDeltaForAccount(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error)
	// FindPostedLinesInPeriod returns all lines of POSTED entries in the
	// period joined with their entry headers, for drill-down reports.
	FindPostedLinesInPeriod(ctx context.Context, tenantID string, from, to time.Time) ([]domain.PostedLine, error)
	// FindPostedLinesForAccounts restricts the period lines to the given
	// accounts (reconciliation over booked tax lines).
	FindPostedLinesForAccounts(ctx context.Context, tenantID string, accountIDs []string, from, to time.Time) ([]domain.PostedLine, error)
}

// ReportConfigRepository stores per-tenant report configurations.
type ReportConfigRepository interface {
	// GetConfig returns apperrors.ErrNotFound when the tenant has no stored
	// configuration for the report type.
	GetConfig(ctx context.Context, tenantID string, reportType domain.ReportType) (*domain.ReportConfig, error)
	// SaveConfig upserts the tenant's configuration.
	SaveConfig(ctx context.Context, config domain.ReportConfig) error
}
