package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
)

// cashFlowSlot locates one configured line item within its section.
type cashFlowSlot struct {
	section string
	item    int
}

// cashFlowBuilder accumulates classified cash movements for one report run.
type cashFlowBuilder struct {
	config   *domain.ReportConfig
	byID     map[string]domain.Account
	slots    map[string]cashFlowSlot // account code → configured slot
	signs    map[cashFlowSlot]domain.LineItemSign
	sections map[string]*domain.CashFlowSection
	// perItemAccounts accumulates the per-account breakdown of each item.
	perItemAccounts map[cashFlowSlot]map[string]decimal.Decimal
}

func newCashFlowBuilder(config *domain.ReportConfig, accounts []domain.Account) *cashFlowBuilder {
	b := &cashFlowBuilder{
		config:          config,
		byID:            make(map[string]domain.Account, len(accounts)),
		slots:           make(map[string]cashFlowSlot),
		signs:           make(map[cashFlowSlot]domain.LineItemSign),
		sections:        make(map[string]*domain.CashFlowSection),
		perItemAccounts: make(map[cashFlowSlot]map[string]decimal.Decimal),
	}
	for _, a := range accounts {
		b.byID[a.AccountID] = a
	}
	for _, name := range []string{domain.SectionOperating, domain.SectionInvesting, domain.SectionFinancing} {
		section := &domain.CashFlowSection{Items: make([]domain.ConfigLineResult, len(config.Sections[name]))}
		for i, item := range config.Sections[name] {
			section.Items[i] = domain.ConfigLineResult{Label: item.Label}
			slot := cashFlowSlot{section: name, item: i}
			b.signs[slot] = item.Sign
			for _, code := range item.AccountCodes {
				b.slots[code] = slot
			}
		}
		b.sections[name] = section
	}
	return b
}

// classify returns the configured slot for a counter-account code.
// Unconfigured accounts default to an extra operating item, so every cash
// movement lands somewhere and the statement always ties to the cash balance.
func (b *cashFlowBuilder) classify(code string) cashFlowSlot {
	if slot, ok := b.slots[code]; ok {
		return slot
	}
	operating := b.sections[domain.SectionOperating]
	for i, item := range operating.Items {
		if item.Label == "Unclassified" {
			slot := cashFlowSlot{section: domain.SectionOperating, item: i}
			b.slots[code] = slot
			return slot
		}
	}
	operating.Items = append(operating.Items, domain.ConfigLineResult{Label: "Unclassified"})
	slot := cashFlowSlot{section: domain.SectionOperating, item: len(operating.Items) - 1}
	b.slots[code] = slot
	return slot
}

// add records one counter-line's cash effect. An item's configured sign
// normalizes the contribution's direction; the transaction keeps the factual
// cash movement for drill-down.
func (b *cashFlowBuilder) add(txn domain.CashFlowTransaction) {
	slot := b.classify(txn.CounterCode)
	txn.Section = slot.section
	contribution := txn.Amount
	switch b.signs[slot] {
	case domain.SignPositive:
		contribution = txn.Amount.Abs()
	case domain.SignNegative:
		contribution = txn.Amount.Abs().Neg()
	}
	section := b.sections[slot.section]
	section.Items[slot.item].Amount = section.Items[slot.item].Amount.Add(contribution)
	section.Transactions = append(section.Transactions, txn)
	section.Total = section.Total.Add(contribution)

	if b.perItemAccounts[slot] == nil {
		b.perItemAccounts[slot] = make(map[string]decimal.Decimal)
	}
	b.perItemAccounts[slot][txn.CounterCode] = b.perItemAccounts[slot][txn.CounterCode].Add(contribution)
}

// finish materializes the per-account breakdowns in configured code order.
func (b *cashFlowBuilder) finish(byCode map[string]domain.Account) {
	for slot, amounts := range b.perItemAccounts {
		section := b.sections[slot.section]
		item := &section.Items[slot.item]
		var codes []string
		if slot.item < len(b.config.Sections[slot.section]) {
			codes = b.config.Sections[slot.section][slot.item].AccountCodes
		}
		seen := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			seen[code] = struct{}{}
		}
		for code := range amounts {
			if _, ok := seen[code]; !ok {
				codes = append(codes, code)
			}
		}
		for _, code := range codes {
			amount, ok := amounts[code]
			if !ok {
				continue
			}
			line := domain.ReportLine{Code: code, Amount: amount}
			if account, found := byCode[code]; found {
				line.AccountID = account.AccountID
				line.Name = account.Name
			}
			item.Accounts = append(item.Accounts, line)
		}
	}
}

// CashFlow builds the configurable cash-flow statement over [from, to].
// Every posted entry touching the designated cash account contributes its
// counter-lines' cash effects, classified by the section containing the
// counter-account, so net cash flow always equals the period movement of the
// cash balance.
func (s *reportingService) CashFlow(ctx context.Context, tenantID string, from, to time.Time) (*domain.CashFlowReport, error) {
	config, usedDefault, err := s.loadConfigOrDefault(ctx, tenantID, domain.ReportCashFlow)
	if err != nil {
		return nil, err
	}
	if config.CashAccountCode == "" {
		return nil, fmt.Errorf("%w: cash-flow configuration has no cash account", apperrors.ErrValidation)
	}

	cashAccount, err := s.accountRepo.FindAccountByCode(ctx, tenantID, config.CashAccountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cash account %s: %w", config.CashAccountCode, err)
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	byCode := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}

	lines, err := s.journalRepo.FindPostedLinesInPeriod(ctx, tenantID, from, endOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posted lines: %w", err)
	}

	byEntry := make(map[string][]domain.PostedLine)
	entryOrder := make([]string, 0)
	for _, l := range lines {
		if _, seen := byEntry[l.EntryID]; !seen {
			entryOrder = append(entryOrder, l.EntryID)
		}
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}

	builder := newCashFlowBuilder(config, accounts)
	for _, entryID := range entryOrder {
		entryLines := byEntry[entryID]
		touchesCash := false
		for _, l := range entryLines {
			if l.AccountID == cashAccount.AccountID {
				touchesCash = true
				break
			}
		}
		if !touchesCash {
			continue
		}

		// Each counter-line's negated delta is the cash it moved: crediting
		// capital means cash came in, debiting rent means cash went out.
		for _, l := range entryLines {
			if l.AccountID == cashAccount.AccountID {
				continue
			}
			counter, ok := builder.byID[l.AccountID]
			if !ok {
				continue
			}
			builder.add(domain.CashFlowTransaction{
				EntryID:     l.EntryID,
				Reference:   l.Reference,
				Date:        l.EntryDate,
				Description: l.EntryDescription,
				CounterCode: counter.Code,
				Amount:      l.Delta().Neg(),
			})
		}
	}
	builder.finish(byCode)

	opening, err := s.balanceSvc.BalanceAsOf(ctx, tenantID, cashAccount.AccountID, from.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	closing, err := s.balanceSvc.BalanceAsOf(ctx, tenantID, cashAccount.AccountID, to)
	if err != nil {
		return nil, err
	}

	report := &domain.CashFlowReport{
		From:               from,
		To:                 to,
		Operating:          *builder.sections[domain.SectionOperating],
		Investing:          *builder.sections[domain.SectionInvesting],
		Financing:          *builder.sections[domain.SectionFinancing],
		OpeningCashBalance: opening,
		ClosingCashBalance: closing,
		UsedDefaultConfig:  usedDefault,
	}
	report.NetCashFlow = report.Operating.Total.Add(report.Investing.Total).Add(report.Financing.Total)
	return report, nil
}
