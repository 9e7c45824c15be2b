package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

// taxAccounts picks the accounts serving a tax role. When the chart carries
// no explicit role, account names are matched as a fallback and the report
// is flagged heuristic.
func taxAccounts(accounts []domain.Account, role domain.TaxRole) (matched []domain.Account, heuristic bool) {
	for _, a := range accounts {
		if a.TaxRole == role {
			matched = append(matched, a)
		}
	}
	if len(matched) > 0 {
		return matched, false
	}

	for _, a := range accounts {
		name := strings.ToLower(a.Name)
		if !strings.Contains(name, "gst") && !strings.Contains(name, "tax") {
			continue
		}
		switch role {
		case domain.TaxRoleOutput:
			if a.AccountType == domain.Liability || strings.Contains(name, "payable") || strings.Contains(name, "output") {
				matched = append(matched, a)
			}
		case domain.TaxRoleInput:
			if a.AccountType == domain.Asset || strings.Contains(name, "input") || strings.Contains(name, "credit") {
				matched = append(matched, a)
			}
		}
	}
	return matched, len(matched) > 0
}

// GSTSummary pre-fills the fixed tax-form slots from posted period activity.
// Tax slots read accounts by their explicit tax role, falling back to name
// matching on older charts; supply slots read income and expense movement.
// The output is a best-effort draft for review, not a filing.
func (s *reportingService) GSTSummary(ctx context.Context, tenantID string, from, to time.Time) (*domain.GSTSummaryReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	signed, err := s.periodSignedTotals(ctx, tenantID, accounts, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.GSTSummaryReport{From: from, To: to}

	outputAccounts, outputHeuristic := taxAccounts(accounts, domain.TaxRoleOutput)
	for _, a := range outputAccounts {
		report.OutputTax = report.OutputTax.Add(signed[a.AccountID])
	}
	inputAccounts, inputHeuristic := taxAccounts(accounts, domain.TaxRoleInput)
	for _, a := range inputAccounts {
		report.InputTaxCredit = report.InputTaxCredit.Add(signed[a.AccountID])
	}
	report.Heuristic = outputHeuristic || inputHeuristic

	for _, a := range accounts {
		switch a.AccountType {
		case domain.Income:
			report.OutwardTaxableSupplies = report.OutwardTaxableSupplies.Add(signed[a.AccountID])
		case domain.Expense:
			report.InwardSupplies = report.InwardSupplies.Add(signed[a.AccountID])
		}
	}

	report.NetTaxPayable = report.OutputTax.Sub(report.InputTaxCredit)
	return report, nil
}

var (
	defaultReconAmountTolerance = decimal.NewFromInt(1)
	defaultReconDateTolerance   = 3 // days
)

// Reconcile matches an externally supplied tax statement against booked
// tax-credit lines of the period, bucketing each row by how well its nearest
// booked line agrees on amount and date.
func (s *reportingService) Reconcile(ctx context.Context, tenantID string, req dto.ReconciliationRequest) (*domain.ReconciliationReport, error) {
	from, err := time.Parse(importDateLayout, req.From)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid from date %q", apperrors.ErrValidation, req.From)
	}
	to, err := time.Parse(importDateLayout, req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid to date %q", apperrors.ErrValidation, req.To)
	}

	amountTolerance := defaultReconAmountTolerance
	if req.AmountTolerance != nil {
		amountTolerance = *req.AmountTolerance
	}
	dateTolerance := defaultReconDateTolerance
	if req.DateToleranceDays != nil {
		dateTolerance = *req.DateToleranceDays
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var scoped []domain.Account
	if len(req.AccountCodes) > 0 {
		wanted := make(map[string]struct{}, len(req.AccountCodes))
		for _, code := range req.AccountCodes {
			wanted[code] = struct{}{}
		}
		for _, a := range accounts {
			if _, ok := wanted[a.Code]; ok {
				scoped = append(scoped, a)
			}
		}
		if len(scoped) == 0 {
			return nil, fmt.Errorf("%w: none of the requested account codes exist", apperrors.ErrNotFound)
		}
	} else {
		scoped, _ = taxAccounts(accounts, domain.TaxRoleInput)
	}

	report := &domain.ReconciliationReport{
		Matched:            []domain.ReconciliationMatch{},
		AmountMismatch:     []domain.ReconciliationMatch{},
		DateMismatch:       []domain.ReconciliationMatch{},
		MissingInBooks:     []domain.StatementRow{},
		MissingInStatement: []domain.PostedLine{},
	}

	var booked []domain.PostedLine
	if len(scoped) > 0 {
		ids := make([]string, len(scoped))
		for i, a := range scoped {
			ids[i] = a.AccountID
		}
		booked, err = s.journalRepo.FindPostedLinesForAccounts(ctx, tenantID, ids, from, endOfDay(to))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch booked lines: %w", err)
		}
	}

	rows := make([]domain.StatementRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		date, err := time.Parse(importDateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid statement row date %q", apperrors.ErrValidation, r.Date)
		}
		rows = append(rows, domain.StatementRow{
			Date:        date,
			Description: r.Description,
			Reference:   r.Reference,
			Amount:      r.Amount,
		})
	}

	consumed := make([]bool, len(booked))
	for _, row := range rows {
		best := -1
		var bestAmountDiff decimal.Decimal
		bestDateDiff := 0
		for i, line := range booked {
			if consumed[i] {
				continue
			}
			amountDiff := row.Amount.Sub(line.Delta()).Abs()
			dateDiff := daysBetween(line.EntryDate, row.Date)
			if best == -1 || amountDiff.LessThan(bestAmountDiff) ||
				(amountDiff.Equal(bestAmountDiff) && abs(dateDiff) < abs(bestDateDiff)) {
				best = i
				bestAmountDiff = amountDiff
				bestDateDiff = dateDiff
			}
		}

		if best == -1 {
			report.MissingInBooks = append(report.MissingInBooks, row)
			continue
		}

		amountOK := bestAmountDiff.LessThanOrEqual(amountTolerance)
		dateOK := abs(bestDateDiff) <= dateTolerance
		match := domain.ReconciliationMatch{
			Statement:  row,
			BookedLine: booked[best],
			AmountDiff: bestAmountDiff,
			DateDiff:   bestDateDiff,
		}
		switch {
		case amountOK && dateOK:
			consumed[best] = true
			report.Matched = append(report.Matched, match)
		case amountOK:
			consumed[best] = true
			report.DateMismatch = append(report.DateMismatch, match)
		case dateOK:
			consumed[best] = true
			report.AmountMismatch = append(report.AmountMismatch, match)
		default:
			// Nothing plausibly close: the supplier likely never filed it.
			report.MissingInBooks = append(report.MissingInBooks, row)
		}
	}

	for i, line := range booked {
		if !consumed[i] {
			report.MissingInStatement = append(report.MissingInStatement, line)
		}
	}
	return report, nil
}

// daysBetween is the whole-day difference from a to b.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
