package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry. Transitions
// are forward-only and checked centrally through CanTransition; REVERSED is
// terminal.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// entryTransitions is the closed transition table for the entry lifecycle.
var entryTransitions = map[EntryStatus][]EntryStatus{
	Draft:    {Posted},
	Posted:   {Reversed},
	Reversed: {},
}

// CanTransition reports whether an entry may move from one status to target.
func CanTransition(from, target EntryStatus) bool {
	for _, t := range entryTransitions[from] {
		if t == target {
			return true
		}
	}
	return false
}

// ValidEntryStatus reports whether s is a known status.
func ValidEntryStatus(s EntryStatus) bool {
	_, ok := entryTransitions[s]
	return ok
}

// BalanceTolerance is the maximum absolute difference between total debits
// and total credits an entry may carry and still be considered balanced.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// ReportTolerance is the looser tolerance used when reports compare derived
// totals (trial balance columns, balance sheet identity).
var ReportTolerance = decimal.NewFromFloat(0.02)

// JournalLine is a single debit-or-credit line within an entry. Exactly one
// of Debit/Credit is positive; the other is zero.
type JournalLine struct {
	LineID    string          `json:"lineID"` // Primary key (UUID)
	EntryID   string          `json:"entryID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration,omitempty"`
}

// Delta is the raw stored balance effect of the line: debit minus credit.
// Normal-balance sign interpretation happens at read time, not here.
func (l JournalLine) Delta() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// JournalEntry represents a single balanced financial event.
type JournalEntry struct {
	EntryID     string        `json:"entryID"` // Primary key (UUID)
	TenantID    string        `json:"tenantID"`
	Reference   string        `json:"reference"` // Unique per tenant
	EntryDate   time.Time     `json:"entryDate"`
	Description string        `json:"description"`
	Status      EntryStatus   `json:"status"`
	Lines       []JournalLine `json:"lines,omitempty"`
	ReversedAt  *time.Time    `json:"reversedAt,omitempty"`
	AuditFields
}

// TotalDebits sums the debit side of the given lines.
func TotalDebits(lines []JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredits sums the credit side of the given lines.
func TotalCredits(lines []JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Credit)
	}
	return total
}

// LinesBalance reports whether total debits equal total credits within
// BalanceTolerance.
func LinesBalance(lines []JournalLine) bool {
	diff := TotalDebits(lines).Sub(TotalCredits(lines)).Abs()
	return diff.LessThan(BalanceTolerance)
}

// PostedLine is a journal line joined with its entry's header fields, as
// returned by period and as-of queries for reporting.
type PostedLine struct {
	JournalLine
	EntryDate        time.Time `json:"entryDate"`
	Reference        string    `json:"reference"`
	EntryDescription string    `json:"entryDescription"`
}

// StockAdjustmentType mirrors the inventory collaborator's movement types.
type StockAdjustmentType string

const (
	StockIn       StockAdjustmentType = "STOCK_IN"
	StockOut      StockAdjustmentType = "STOCK_OUT"
	StockAdjusted StockAdjustmentType = "ADJUSTED"
)

// StockAdjustment is the outbound payload sent to the inventory service when
// a sales or purchase entry posts. Delivery failures are reported to the
// caller but never roll back the journal posting.
type StockAdjustment struct {
	Type      StockAdjustmentType `json:"type"`
	ProductID string              `json:"productId"`
	Variant   string              `json:"variant,omitempty"`
	Qty       decimal.Decimal     `json:"qty"`
	CostPrice decimal.Decimal     `json:"costPrice"`
}
