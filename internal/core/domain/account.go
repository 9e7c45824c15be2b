package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance is the sign convention under which an account's balance is
// conventionally positive.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

// TaxRole marks an account as participating in tax reporting. Set at
// creation so the GST summary can key off it instead of free-text name
// matching.
type TaxRole string

const (
	TaxRoleNone   TaxRole = "NONE"
	TaxRoleOutput TaxRole = "OUTPUT_TAX"
	TaxRoleInput  TaxRole = "INPUT_TAX"
)

// DefaultNormalBalance returns the conventional normal balance for an
// account type. Assets and expenses carry debit balances; everything else
// carries credit balances.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// ValidAccountType reports whether t is one of the five closed account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// Account represents a ledger account within a tenant's chart of accounts.
// Accounts form a parent-pointer forest: ParentCode references another
// account's Code within the same tenant, and tree shape is reconstructed on
// demand from a code-keyed map rather than held as live pointers.
type Account struct {
	AccountID     string          `json:"accountID"` // Primary key (UUID)
	TenantID      string          `json:"tenantID"`
	Code          string          `json:"code"` // Unique per tenant
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	ParentCode    string          `json:"parentCode,omitempty"` // Empty for roots
	Description   string          `json:"description,omitempty"`
	TaxRole       TaxRole         `json:"taxRole"`
	IsSystem      bool            `json:"isSystem"` // Seeded accounts, non-deletable
	IsActive      bool            `json:"isActive"`
	// OpeningBalance is the raw balance carried in at account creation.
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	// CurrentBalance is the raw running balance: opening plus the sum of
	// debit-minus-credit across posted lines. Mutated only by the journal
	// engine; sign interpretation is applied at read time.
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	AuditFields
}

// AccountNode is an account plus its resolved children, produced by the
// hierarchy queries.
type AccountNode struct {
	Account  Account        `json:"account"`
	Children []*AccountNode `json:"children"`
}

// AccountStatistics summarises a tenant's chart of accounts.
type AccountStatistics struct {
	Total       int                 `json:"total"`
	ByType      map[AccountType]int `json:"byType"`
	RootCount   int                 `json:"rootCount"`
	LeafCount   int                 `json:"leafCount"`
	SystemCount int                 `json:"systemCount"`
}

// TemplateAccount is one row of the standard seeded chart template.
type TemplateAccount struct {
	Code        string
	Name        string
	AccountType AccountType
	ParentCode  string
	TaxRole     TaxRole
}

// StandardChartTemplate is the built-in chart seeded at tenant onboarding.
// The default profit-and-loss and cash-flow report configurations are keyed
// to these codes.
var StandardChartTemplate = []TemplateAccount{
	{Code: "1000", Name: "Assets", AccountType: Asset},
	{Code: "1001", Name: "Cash", AccountType: Asset, ParentCode: "1000"},
	{Code: "1100", Name: "Accounts Receivable", AccountType: Asset, ParentCode: "1000"},
	{Code: "1200", Name: "Inventory", AccountType: Asset, ParentCode: "1000"},
	{Code: "1300", Name: "GST Input Credit", AccountType: Asset, ParentCode: "1000", TaxRole: TaxRoleInput},
	{Code: "1500", Name: "Fixed Assets", AccountType: Asset, ParentCode: "1000"},
	{Code: "2000", Name: "Liabilities", AccountType: Liability},
	{Code: "2100", Name: "Accounts Payable", AccountType: Liability, ParentCode: "2000"},
	{Code: "2200", Name: "GST Payable", AccountType: Liability, ParentCode: "2000", TaxRole: TaxRoleOutput},
	{Code: "2300", Name: "Loans Payable", AccountType: Liability, ParentCode: "2000"},
	{Code: "3000", Name: "Owner Capital", AccountType: Equity},
	{Code: "3100", Name: "Retained Earnings", AccountType: Equity},
	{Code: "4000", Name: "Sales Revenue", AccountType: Income},
	{Code: "4100", Name: "Other Income", AccountType: Income},
	{Code: "5000", Name: "Cost of Goods Sold", AccountType: Expense},
	{Code: "5100", Name: "Salaries Expense", AccountType: Expense},
	{Code: "5200", Name: "Rent Expense", AccountType: Expense},
	{Code: "5300", Name: "Utilities Expense", AccountType: Expense},
}
