package dto

import (
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportConfigRequest upserts a tenant's report configuration.
type ReportConfigRequest struct {
	ReportType      domain.ReportType                  `json:"reportType" binding:"required,oneof=PROFIT_AND_LOSS CASH_FLOW"`
	Sections        map[string][]domain.ConfigLineItem `json:"sections" binding:"required"`
	CashAccountCode string                             `json:"cashAccountCode"`
}

// StatementRowRequest is one row of an externally supplied tax statement.
type StatementRowRequest struct {
	Date        string          `json:"date" binding:"required"` // YYYY-MM-DD
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// ReconciliationRequest matches a tax statement against booked tax-credit
// lines. Zero-value tolerances fall back to defaults (1.00 amount, 3 days).
type ReconciliationRequest struct {
	From              string                `json:"from" binding:"required"` // YYYY-MM-DD
	To                string                `json:"to" binding:"required"`   // YYYY-MM-DD
	Rows              []StatementRowRequest `json:"rows" binding:"required"`
	AmountTolerance   *decimal.Decimal      `json:"amountTolerance"`
	DateToleranceDays *int                  `json:"dateToleranceDays"`
	// AccountCodes restricts matching to these accounts; empty means all
	// INPUT_TAX-role accounts.
	AccountCodes []string `json:"accountCodes"`
}
