package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
)

// loadConfigOrDefault resolves the tenant's configuration for the report
// type, reporting whether the built-in default had to be used.
func (s *reportingService) loadConfigOrDefault(ctx context.Context, tenantID string, reportType domain.ReportType) (*domain.ReportConfig, bool, error) {
	config, err := s.configRepo.GetConfig(ctx, tenantID, reportType)
	if err == nil {
		return config, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to load report config: %w", err)
	}
	config, err = s.defaultConfig(reportType)
	if err != nil {
		return nil, false, err
	}
	return config, true, nil
}

// resolveConfigLines turns one section's line items into results over the
// period's signed per-account totals. Codes absent from the chart contribute
// zero rather than failing: a stored configuration survives later chart
// edits.
func resolveConfigLines(items []domain.ConfigLineItem, byCode map[string]domain.Account, signed map[string]decimal.Decimal) ([]domain.ConfigLineResult, decimal.Decimal) {
	results := make([]domain.ConfigLineResult, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		result := domain.ConfigLineResult{Label: item.Label}
		for _, code := range item.AccountCodes {
			account, ok := byCode[code]
			if !ok {
				continue
			}
			amount := signed[account.AccountID]
			if amount.IsZero() {
				continue
			}
			result.Accounts = append(result.Accounts, domain.ReportLine{
				AccountID: account.AccountID,
				Code:      account.Code,
				Name:      account.Name,
				Amount:    amount,
			})
			result.Amount = result.Amount.Add(amount)
		}
		total = total.Add(result.Amount)
		results = append(results, result)
	}
	return results, total
}

// ProfitAndLoss builds the configurable P&L statement over posted period
// activity, with the conventional rollup: gross profit, operating income,
// net income.
func (s *reportingService) ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PnLReport, error) {
	config, usedDefault, err := s.loadConfigOrDefault(ctx, tenantID, domain.ReportProfitAndLoss)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	byCode := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}

	signed, err := s.periodSignedTotals(ctx, tenantID, accounts, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.PnLReport{From: from, To: to, UsedDefaultConfig: usedDefault}
	report.Revenue.Items, report.Revenue.Total = resolveConfigLines(config.Sections[domain.SectionRevenue], byCode, signed)
	report.CostOfGoodsSold.Items, report.CostOfGoodsSold.Total = resolveConfigLines(config.Sections[domain.SectionCostOfGoodsSold], byCode, signed)
	report.OperatingExpenses.Items, report.OperatingExpenses.Total = resolveConfigLines(config.Sections[domain.SectionOperatingExpenses], byCode, signed)
	report.OtherIncome.Items, report.OtherIncome.Total = resolveConfigLines(config.Sections[domain.SectionOtherIncome], byCode, signed)
	report.OtherExpenses.Items, report.OtherExpenses.Total = resolveConfigLines(config.Sections[domain.SectionOtherExpenses], byCode, signed)

	report.GrossProfit = report.Revenue.Total.Sub(report.CostOfGoodsSold.Total)
	report.OperatingIncome = report.GrossProfit.Sub(report.OperatingExpenses.Total)
	report.NetIncome = report.OperatingIncome.Add(report.OtherIncome.Total).Sub(report.OtherExpenses.Total)
	return report, nil
}
