package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow decomposes an account's as-of balance into its debit or
// credit column according to the account's normal balance.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport is the full trial balance as of a date.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
	// Difference is attached only when the columns disagree beyond tolerance.
	Difference *decimal.Decimal `json:"difference,omitempty"`
}

// ReportLine is one account's contribution to a grouped report section.
type ReportLine struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// BalanceSheetSection groups accounts of a single type with their total.
type BalanceSheetSection struct {
	Lines []ReportLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheetReport groups as-of balances into assets, liabilities and
// equity, with period net income folded into the equity side.
type BalanceSheetReport struct {
	AsOf                      time.Time           `json:"asOf"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	NetIncome                 decimal.Decimal     `json:"netIncome"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"totalLiabilitiesAndEquity"`
	IsBalanced                bool                `json:"isBalanced"`
	Difference                *decimal.Decimal    `json:"difference,omitempty"`
}

// NetIncomeReport is the period revenue-minus-expenses summary.
type NetIncomeReport struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

// ConfigLineResult is a resolved configuration line item with its period
// total and per-account breakdown.
type ConfigLineResult struct {
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Accounts []ReportLine    `json:"accounts,omitempty"`
}

// PnLSection is one named section of a profit-and-loss report.
type PnLSection struct {
	Items []ConfigLineResult `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// PnLReport is the configurable profit-and-loss statement.
type PnLReport struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	Revenue           PnLSection      `json:"revenue"`
	CostOfGoodsSold   PnLSection      `json:"costOfGoodsSold"`
	OperatingExpenses PnLSection      `json:"operatingExpenses"`
	OtherIncome       PnLSection      `json:"otherIncome"`
	OtherExpenses     PnLSection      `json:"otherExpenses"`
	GrossProfit       decimal.Decimal `json:"grossProfit"`
	OperatingIncome   decimal.Decimal `json:"operatingIncome"`
	NetIncome         decimal.Decimal `json:"netIncome"`
	UsedDefaultConfig bool            `json:"usedDefaultConfig"`
}

// CashFlowTransaction is one drill-down line: a single posted entry touching
// the cash account, classified by the section containing its counter-account.
type CashFlowTransaction struct {
	EntryID     string          `json:"entryID"`
	Reference   string          `json:"reference"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Section     string          `json:"section"` // operating, investing or financing
	CounterCode string          `json:"counterCode"`
	Amount      decimal.Decimal `json:"amount"` // Signed cash effect
}

// CashFlowSection is one activity section of the cash-flow statement.
type CashFlowSection struct {
	Items        []ConfigLineResult    `json:"items"`
	Transactions []CashFlowTransaction `json:"transactions,omitempty"`
	Total        decimal.Decimal       `json:"total"`
}

// CashFlowReport is the configurable cash-flow statement with
// transaction-level drill-down.
type CashFlowReport struct {
	From               time.Time       `json:"from"`
	To                 time.Time       `json:"to"`
	Operating          CashFlowSection `json:"operating"`
	Investing          CashFlowSection `json:"investing"`
	Financing          CashFlowSection `json:"financing"`
	NetCashFlow        decimal.Decimal `json:"netCashFlow"`
	OpeningCashBalance decimal.Decimal `json:"openingCashBalance"`
	ClosingCashBalance decimal.Decimal `json:"closingCashBalance"`
	UsedDefaultConfig  bool            `json:"usedDefaultConfig"`
}

// InventoryValuationReport lists as-of balances of asset accounts,
// optionally restricted to a parent-code subtree.
type InventoryValuationReport struct {
	AsOf       time.Time       `json:"asOf"`
	ParentCode string          `json:"parentCode,omitempty"`
	Lines      []ReportLine    `json:"lines"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// GSTSummaryReport is a best-effort pre-fill of the fixed external tax form
// from posted period activity on tax-role accounts.
type GSTSummaryReport struct {
	From                   time.Time       `json:"from"`
	To                     time.Time       `json:"to"`
	OutwardTaxableSupplies decimal.Decimal `json:"outwardTaxableSupplies"`
	OutputTax              decimal.Decimal `json:"outputTax"`
	InwardSupplies         decimal.Decimal `json:"inwardSupplies"`
	InputTaxCredit         decimal.Decimal `json:"inputTaxCredit"`
	NetTaxPayable          decimal.Decimal `json:"netTaxPayable"`
	// Heuristic reports whether any slot was filled by name matching rather
	// than an explicit tax role.
	Heuristic bool `json:"heuristic"`
}

// StatementRow is one row of an externally supplied tax statement.
type StatementRow struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReconciliationMatch pairs a statement row with a booked ledger line.
type ReconciliationMatch struct {
	Statement  StatementRow    `json:"statement"`
	BookedLine PostedLine      `json:"bookedLine"`
	AmountDiff decimal.Decimal `json:"amountDiff"`
	DateDiff   int             `json:"dateDiffDays"`
}

// ReconciliationReport buckets statement rows against booked tax-credit
// lines.
type ReconciliationReport struct {
	Matched            []ReconciliationMatch `json:"matched"`
	AmountMismatch     []ReconciliationMatch `json:"amountMismatch"`
	DateMismatch       []ReconciliationMatch `json:"dateMismatch"`
	MissingInBooks     []StatementRow        `json:"missingInBooks"`
	MissingInStatement []PostedLine          `json:"missingInStatement"`
}
