package dto

import (
	"time"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one debit-or-credit line of a new entry.
type CreateLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit" binding:"gte=0"`
	Credit    decimal.Decimal `json:"credit" binding:"gte=0"`
	Narration string          `json:"narration"`
}

// StockAdjustmentRequest mirrors the outbound inventory payload attached to
// sales/purchase entries.
type StockAdjustmentRequest struct {
	Type      domain.StockAdjustmentType `json:"type" binding:"required,oneof=STOCK_IN STOCK_OUT ADJUSTED"`
	ProductID string                     `json:"productId" binding:"required"`
	Variant   string                     `json:"variant"`
	Qty       decimal.Decimal            `json:"qty" binding:"required"`
	CostPrice decimal.Decimal            `json:"costPrice"`
}

// CreateEntryRequest is the payload for creating a journal entry. Status is
// the target status resolved from caller privilege by the handler: elevated
// callers create POSTED directly, restricted callers create DRAFT.
type CreateEntryRequest struct {
	Reference        string                   `json:"reference" binding:"required"`
	Date             time.Time                `json:"date" binding:"required"`
	Description      string                   `json:"description"`
	Status           domain.EntryStatus       `json:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	Lines            []CreateLineRequest      `json:"lines" binding:"required,min=2"`
	StockAdjustments []StockAdjustmentRequest `json:"stockAdjustments"`
}

// CreateEntryResponse returns the created entry plus any non-fatal warnings
// (e.g. a failed stock-adjustment delivery, which never rolls back the
// posting).
type CreateEntryResponse struct {
	Entry    domain.JournalEntry `json:"entry"`
	Warnings []string            `json:"warnings,omitempty"`
}

// UpdateDraftRequest edits a draft entry; nil fields are unchanged, a
// non-nil Lines slice replaces all lines.
type UpdateDraftRequest struct {
	Date        *time.Time          `json:"date"`
	Description *string             `json:"description"`
	Lines       []CreateLineRequest `json:"lines"`
}

// ListEntriesParams are the query parameters for listing entries.
type ListEntriesParams struct {
	Limit           int
	NextToken       *string
	IncludeReversed bool
}

// ListEntriesResponse pages entries with an opaque cursor.
type ListEntriesResponse struct {
	Entries   []domain.JournalEntry `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// BulkEntryRequest carries the entry IDs for bulk post/reverse.
type BulkEntryRequest struct {
	EntryIDs []string `json:"entryIDs" binding:"required,min=1"`
}

// BulkFailure reports why one entry of a bulk operation failed. Failures
// never abort sibling entries.
type BulkFailure struct {
	EntryID string `json:"entryID"`
	Reason  string `json:"reason"`
}

// BulkEntryResponse partitions a bulk operation's outcomes.
type BulkEntryResponse struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// ValidateEntryResponse is the advisory validation result. EquationHolds
// reports whether the accounting equation would still hold if the candidate
// lines were posted; it never blocks posting.
type ValidateEntryResponse struct {
	Valid         bool            `json:"valid"`
	Errors        []string        `json:"errors,omitempty"`
	TotalDebits   decimal.Decimal `json:"totalDebits"`
	TotalCredits  decimal.Decimal `json:"totalCredits"`
	EquationHolds bool            `json:"equationHolds"`
}

// ImportRow is one row of a tabular journal import. Consecutive rows
// sharing (Date, Reference) form one entry.
type ImportRow struct {
	Date        string          `json:"date" binding:"required"` // YYYY-MM-DD
	Reference   string          `json:"reference" binding:"required"`
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"gte=0"`
	Credit      decimal.Decimal `json:"credit" binding:"gte=0"`
	Narration   string          `json:"narration"`
	Description string          `json:"description"`
}

// ImportRowError cites a failing row by its 1-based position. Failing rows
// never abort valid siblings.
type ImportRowError struct {
	Row       int    `json:"row"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message"`
}

// ImportResult summarises a tabular import.
type ImportResult struct {
	CreatedCount    int              `json:"createdCount"`
	CreatedEntryIDs []string         `json:"createdEntryIDs"`
	Errors          []ImportRowError `json:"errors,omitempty"`
}
