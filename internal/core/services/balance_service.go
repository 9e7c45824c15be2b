package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
)

// balanceService resolves account balances. Current balances come straight
// from the stored running balance; historical balances are replayed from
// POSTED entries. REVERSED entries are excluded from replay entirely, so a
// reversal retroactively erases the original entry from history rather than
// showing a later offset.
type balanceService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	journalRepo portsrepo.JournalRepository
}

// NewBalanceService creates a new balance service.
func NewBalanceService(accountRepo portsrepo.AccountRepository, journalRepo portsrepo.JournalRepository) portssvc.BalanceSvcFacade {
	return &balanceService{accountRepo: accountRepo, journalRepo: journalRepo}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// CurrentBalance reads the stored running balance maintained by the journal
// engine.
func (s *balanceService) CurrentBalance(ctx context.Context, tenantID, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account.CurrentBalance, nil
}

// BalanceAsOf resolves the account's balance at end of day asOf: opening
// balance plus Σ(debit−credit) over POSTED entries dated on or before asOf.
func (s *balanceService) BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	delta, err := s.journalRepo.SumPostedDeltaForAccount(ctx, tenantID, accountID, endOfDay(asOf))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum posted deltas for account %s: %w", accountID, err)
	}
	return account.OpeningBalance.Add(delta), nil
}

// AsOfBalances resolves all accounts of the tenant at once, keyed by account
// ID. A zero asOf means "current": the stored running balances are returned
// without replay.
func (s *balanceService) AsOfBalances(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	balances := make(map[string]decimal.Decimal, len(accounts))
	if asOf.IsZero() {
		for _, a := range accounts {
			balances[a.AccountID] = a.CurrentBalance
		}
		return balances, nil
	}

	deltas, err := s.journalRepo.SumPostedDeltas(ctx, tenantID, time.Time{}, endOfDay(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted deltas: %w", err)
	}
	for _, a := range accounts {
		balances[a.AccountID] = a.OpeningBalance.Add(deltas[a.AccountID])
	}
	return balances, nil
}

// endOfDay pushes an as-of or period-end date to 23:59:59.999999999 of the
// same calendar day, so entries dated anywhere on that day are included.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
