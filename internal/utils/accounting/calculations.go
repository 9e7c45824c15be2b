package accounting

import (
	"fmt"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedBalance interprets a raw stored balance (opening + Σ debit−credit)
// under the account's normal balance convention: for a DEBIT-normal account
// a positive raw balance is already a positive debit balance; for a
// CREDIT-normal account the raw balance is negated so that a credit balance
// reads positive. Used by report builders; never applied at write time.
func SignedBalance(raw decimal.Decimal, normal domain.NormalBalance) decimal.Decimal {
	if normal == domain.CreditNormal {
		return raw.Neg()
	}
	return raw
}

// SplitDebitCredit decomposes a raw balance into its trial-balance columns.
// A positive raw balance sits in the debit column, a negative one (negated)
// in the credit column.
func SplitDebitCredit(raw decimal.Decimal) (debit, credit decimal.Decimal) {
	if raw.IsNegative() {
		return decimal.Zero, raw.Neg()
	}
	return raw, decimal.Zero
}

// ValidateLine checks the structural line invariant: both sides
// non-negative and exactly one side positive.
func ValidateLine(line domain.JournalLine) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("debit and credit must be non-negative for account %s", line.AccountID)
	}
	debitSet := line.Debit.IsPositive()
	creditSet := line.Credit.IsPositive()
	if debitSet == creditSet {
		return fmt.Errorf("exactly one of debit or credit must be positive for account %s", line.AccountID)
	}
	return nil
}

// ValidateEntryBalance checks the double-entry invariant over a full set of
// lines: at least two lines, each structurally valid, and total debits
// equal to total credits within domain.BalanceTolerance.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines")
	}
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return err
		}
	}
	debits := domain.TotalDebits(lines)
	credits := domain.TotalCredits(lines)
	if debits.Sub(credits).Abs().GreaterThanOrEqual(domain.BalanceTolerance) {
		return fmt.Errorf("entry does not balance: debits %s, credits %s", debits.String(), credits.String())
	}
	return nil
}
