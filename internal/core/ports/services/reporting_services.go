package services

import (
	"context"
	"time"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

// ReportingSvcFacade derives all reports from the posted ledger. It never
// mutates state, and empty periods yield zero-filled output rather than
// errors.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalanceReport, error)
	BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error)
	NetIncome(ctx context.Context, tenantID string, from, to time.Time) (*domain.NetIncomeReport, error)
	ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PnLReport, error)
	CashFlow(ctx context.Context, tenantID string, from, to time.Time) (*domain.CashFlowReport, error)
	InventoryValuation(ctx context.Context, tenantID string, asOf time.Time, parentCode string) (*domain.InventoryValuationReport, error)
	GSTSummary(ctx context.Context, tenantID string, from, to time.Time) (*domain.GSTSummaryReport, error)
	Reconcile(ctx context.Context, tenantID string, req dto.ReconciliationRequest) (*domain.ReconciliationReport, error)
	GetReportConfig(ctx context.Context, tenantID string, reportType domain.ReportType) (*domain.ReportConfig, error)
	SaveReportConfig(ctx context.Context, tenantID string, req dto.ReportConfigRequest) (*domain.ReportConfig, error)
}
