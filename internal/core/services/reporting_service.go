package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
	"github.com/dEvAshirvad/finager-backend/internal/utils/accounting"
)

// reportingService derives all reports from the chart and the posted ledger.
// Reports never mutate state; empty periods yield zero-filled reports.
type reportingService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	journalRepo portsrepo.JournalRepository
	configRepo  portsrepo.ReportConfigRepository
	balanceSvc  portssvc.BalanceSvcFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(accountRepo portsrepo.AccountRepository, journalRepo portsrepo.JournalRepository, configRepo portsrepo.ReportConfigRepository, balanceSvc portssvc.BalanceSvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		configRepo:  configRepo,
		balanceSvc:  balanceSvc,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// chartWithBalances loads the tenant's chart and its as-of raw balances in
// one shot. A zero asOf resolves current balances.
func (s *reportingService) chartWithBalances(ctx context.Context, tenantID string, asOf time.Time) ([]domain.Account, map[string]decimal.Decimal, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	balances, err := s.balanceSvc.AsOfBalances(ctx, tenantID, asOf)
	if err != nil {
		return nil, nil, err
	}
	return accounts, balances, nil
}

// TrialBalance lists every account's as-of balance in its natural column.
// The columns agree whenever every posted entry balanced, so a difference
// beyond tolerance is surfaced as a data-integrity signal, not an error.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalanceReport, error) {
	accounts, balances, err := s.chartWithBalances(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		AsOf: asOf,
		Rows: make([]domain.TrialBalanceRow, 0, len(accounts)),
	}
	for _, a := range accounts {
		raw := balances[a.AccountID]
		debit, credit := accounting.SplitDebitCredit(raw)
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:   a.AccountID,
			Code:        a.Code,
			Name:        a.Name,
			AccountType: a.AccountType,
			Debit:       debit,
			Credit:      credit,
		})
		report.TotalDebit = report.TotalDebit.Add(debit)
		report.TotalCredit = report.TotalCredit.Add(credit)
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Code < report.Rows[j].Code })

	diff := report.TotalDebit.Sub(report.TotalCredit)
	report.IsBalanced = diff.Abs().LessThan(domain.ReportTolerance)
	if !report.IsBalanced {
		report.Difference = &diff
	}
	return report, nil
}

// BalanceSheet groups as-of balances into assets, liabilities and equity.
// The net income folded into equity is cumulative, income minus expenses
// over all history up to asOf, not the reporting period's figure: absent a
// formal closing process, only the cumulative amount keeps the sheet
// balanced. Near-zero balances stay in the totals but are suppressed as
// lines.
func (s *reportingService) BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	accounts, balances, err := s.chartWithBalances(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{AsOf: asOf}
	for _, a := range accounts {
		signed := accounting.SignedBalance(balances[a.AccountID], a.NormalBalance)
		line := domain.ReportLine{AccountID: a.AccountID, Code: a.Code, Name: a.Name, Amount: signed}
		// Rounding dust below the balance tolerance stays in the section
		// totals but never prints a line.
		nearZero := signed.Abs().LessThan(domain.BalanceTolerance)
		switch a.AccountType {
		case domain.Asset:
			if !nearZero {
				report.Assets.Lines = append(report.Assets.Lines, line)
			}
			report.Assets.Total = report.Assets.Total.Add(signed)
		case domain.Liability:
			if !nearZero {
				report.Liabilities.Lines = append(report.Liabilities.Lines, line)
			}
			report.Liabilities.Total = report.Liabilities.Total.Add(signed)
		case domain.Equity:
			if !nearZero {
				report.Equity.Lines = append(report.Equity.Lines, line)
			}
			report.Equity.Total = report.Equity.Total.Add(signed)
		case domain.Income:
			report.NetIncome = report.NetIncome.Add(signed)
		case domain.Expense:
			report.NetIncome = report.NetIncome.Sub(signed)
		}
	}
	sortSectionLines(&report.Assets)
	sortSectionLines(&report.Liabilities)
	sortSectionLines(&report.Equity)

	report.TotalLiabilitiesAndEquity = report.Liabilities.Total.Add(report.Equity.Total).Add(report.NetIncome)
	diff := report.Assets.Total.Sub(report.TotalLiabilitiesAndEquity)
	report.IsBalanced = diff.Abs().LessThan(domain.ReportTolerance)
	if !report.IsBalanced {
		report.Difference = &diff
	}
	return report, nil
}

func sortSectionLines(section *domain.BalanceSheetSection) {
	sort.Slice(section.Lines, func(i, j int) bool { return section.Lines[i].Code < section.Lines[j].Code })
}

// periodSignedTotals sums each account's signed activity over POSTED entries
// in [from, to], keyed by account ID.
func (s *reportingService) periodSignedTotals(ctx context.Context, tenantID string, accounts []domain.Account, from, to time.Time) (map[string]decimal.Decimal, error) {
	deltas, err := s.journalRepo.SumPostedDeltas(ctx, tenantID, from, endOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted deltas: %w", err)
	}
	signed := make(map[string]decimal.Decimal, len(deltas))
	for _, a := range accounts {
		if delta, ok := deltas[a.AccountID]; ok {
			signed[a.AccountID] = accounting.SignedBalance(delta, a.NormalBalance)
		}
	}
	return signed, nil
}

// NetIncome is the period revenue-minus-expenses summary over posted
// activity only.
func (s *reportingService) NetIncome(ctx context.Context, tenantID string, from, to time.Time) (*domain.NetIncomeReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	signed, err := s.periodSignedTotals(ctx, tenantID, accounts, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.NetIncomeReport{From: from, To: to}
	for _, a := range accounts {
		switch a.AccountType {
		case domain.Income:
			report.Revenue = report.Revenue.Add(signed[a.AccountID])
		case domain.Expense:
			report.Expenses = report.Expenses.Add(signed[a.AccountID])
		}
	}
	report.NetIncome = report.Revenue.Sub(report.Expenses)
	return report, nil
}

// InventoryValuation lists as-of balances of asset accounts, optionally
// restricted to the subtree under parentCode.
func (s *reportingService) InventoryValuation(ctx context.Context, tenantID string, asOf time.Time, parentCode string) (*domain.InventoryValuationReport, error) {
	accounts, balances, err := s.chartWithBalances(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	inScope := func(domain.Account) bool { return true }
	if parentCode != "" {
		subtree := subtreeCodes(accounts, parentCode)
		if subtree == nil {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, parentCode)
		}
		inScope = func(a domain.Account) bool {
			_, ok := subtree[a.Code]
			return ok
		}
	}

	report := &domain.InventoryValuationReport{AsOf: asOf, ParentCode: parentCode, Lines: []domain.ReportLine{}}
	for _, a := range accounts {
		if a.AccountType != domain.Asset || !inScope(a) {
			continue
		}
		signed := accounting.SignedBalance(balances[a.AccountID], a.NormalBalance)
		report.Lines = append(report.Lines, domain.ReportLine{
			AccountID: a.AccountID,
			Code:      a.Code,
			Name:      a.Name,
			Amount:    signed,
		})
		report.TotalValue = report.TotalValue.Add(signed)
	}
	sort.Slice(report.Lines, func(i, j int) bool { return report.Lines[i].Code < report.Lines[j].Code })
	return report, nil
}

// subtreeCodes returns the set of codes at or under root, or nil when root
// is not in the chart.
func subtreeCodes(accounts []domain.Account, root string) map[string]struct{} {
	children := make(map[string][]string)
	exists := false
	for _, a := range accounts {
		if a.Code == root {
			exists = true
		}
		if a.ParentCode != "" {
			children[a.ParentCode] = append(children[a.ParentCode], a.Code)
		}
	}
	if !exists {
		return nil
	}

	set := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		for _, child := range children[code] {
			if _, seen := set[child]; seen {
				continue
			}
			set[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return set
}

// GetReportConfig returns the tenant's stored configuration, or the built-in
// default when none is stored.
func (s *reportingService) GetReportConfig(ctx context.Context, tenantID string, reportType domain.ReportType) (*domain.ReportConfig, error) {
	config, err := s.configRepo.GetConfig(ctx, tenantID, reportType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.defaultConfig(reportType)
		}
		return nil, fmt.Errorf("failed to load report config: %w", err)
	}
	return config, nil
}

func (s *reportingService) defaultConfig(reportType domain.ReportType) (*domain.ReportConfig, error) {
	switch reportType {
	case domain.ReportProfitAndLoss:
		c := domain.DefaultPnLConfig()
		return &c, nil
	case domain.ReportCashFlow:
		c := domain.DefaultCashFlowConfig()
		return &c, nil
	default:
		return nil, fmt.Errorf("%w: unknown report type %s", apperrors.ErrValidation, reportType)
	}
}

// SaveReportConfig validates and upserts the tenant's configuration.
// Referenced account codes must exist; cash-flow configs must designate a
// cash account.
func (s *reportingService) SaveReportConfig(ctx context.Context, tenantID string, req dto.ReportConfigRequest) (*domain.ReportConfig, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	known := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		known[a.Code] = struct{}{}
	}

	var unknown []string
	for _, items := range req.Sections {
		for _, item := range items {
			for _, code := range item.AccountCodes {
				if _, ok := known[code]; !ok {
					unknown = append(unknown, code)
				}
			}
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown account codes: %s", apperrors.ErrValidation, strings.Join(unknown, ", "))
	}

	if req.ReportType == domain.ReportCashFlow {
		if req.CashAccountCode == "" {
			return nil, fmt.Errorf("%w: cash-flow configuration requires cashAccountCode", apperrors.ErrValidation)
		}
		if _, ok := known[req.CashAccountCode]; !ok {
			return nil, fmt.Errorf("%w: unknown cash account code %s", apperrors.ErrValidation, req.CashAccountCode)
		}
	}

	config := domain.ReportConfig{
		TenantID:        tenantID,
		ReportType:      req.ReportType,
		Sections:        req.Sections,
		CashAccountCode: req.CashAccountCode,
	}
	if err := s.configRepo.SaveConfig(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to save report config: %w", err)
	}
	return &config, nil
}
