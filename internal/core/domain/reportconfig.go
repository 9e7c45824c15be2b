package domain

import "encoding/json"

// ReportType identifies which report a stored configuration belongs to.
type ReportType string

const (
	ReportProfitAndLoss ReportType = "PROFIT_AND_LOSS"
	ReportCashFlow      ReportType = "CASH_FLOW"
)

// LineItemSign controls whether a cash-flow line item adds to or subtracts
// from its section total.
type LineItemSign string

const (
	SignPositive LineItemSign = "positive"
	SignNegative LineItemSign = "negative"
)

// ConfigLineItem maps a display label to a set of account codes. Codes are
// used instead of internal account IDs so a configuration is portable
// across tenants with differing identifiers.
type ConfigLineItem struct {
	Label        string       `json:"label"`
	AccountCodes []string     `json:"accountCodes"`
	Sign         LineItemSign `json:"sign,omitempty"` // Cash flow only
}

// ReportConfig is a tenant's stored configuration for one report type: a
// mapping of section name to ordered line items. It round-trips through
// JSON without loss.
type ReportConfig struct {
	TenantID   string                      `json:"tenantID,omitempty"`
	ReportType ReportType                  `json:"reportType"`
	Sections   map[string][]ConfigLineItem `json:"sections"`
	// CashAccountCode designates the cash account used for cash-flow
	// drill-down and the closing balance. Ignored for other reports.
	CashAccountCode string `json:"cashAccountCode,omitempty"`
}

// MarshalSections serializes just the section mapping for persistence.
func (c ReportConfig) MarshalSections() ([]byte, error) {
	return json.Marshal(struct {
		Sections        map[string][]ConfigLineItem `json:"sections"`
		CashAccountCode string                      `json:"cashAccountCode,omitempty"`
	}{c.Sections, c.CashAccountCode})
}

// UnmarshalSections restores the section mapping from its persisted form.
func (c *ReportConfig) UnmarshalSections(data []byte) error {
	var v struct {
		Sections        map[string][]ConfigLineItem `json:"sections"`
		CashAccountCode string                      `json:"cashAccountCode,omitempty"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	c.Sections = v.Sections
	c.CashAccountCode = v.CashAccountCode
	return nil
}

// Profit-and-loss section names.
const (
	SectionRevenue           = "revenue"
	SectionCostOfGoodsSold   = "costOfGoodsSold"
	SectionOperatingExpenses = "operatingExpenses"
	SectionOtherIncome       = "otherIncome"
	SectionOtherExpenses     = "otherExpenses"
)

// Cash-flow section names.
const (
	SectionOperating = "operating"
	SectionInvesting = "investing"
	SectionFinancing = "financing"
)

// DefaultPnLConfig is the built-in profit-and-loss configuration keyed to
// the standard seeded chart. Used when a tenant has no stored
// configuration; reports built from it set UsedDefaultConfig.
func DefaultPnLConfig() ReportConfig {
	return ReportConfig{
		ReportType: ReportProfitAndLoss,
		Sections: map[string][]ConfigLineItem{
			SectionRevenue: {
				{Label: "Sales Revenue", AccountCodes: []string{"4000"}},
			},
			SectionCostOfGoodsSold: {
				{Label: "Cost of Goods Sold", AccountCodes: []string{"5000"}},
			},
			SectionOperatingExpenses: {
				{Label: "Salaries", AccountCodes: []string{"5100"}},
				{Label: "Rent", AccountCodes: []string{"5200"}},
				{Label: "Utilities", AccountCodes: []string{"5300"}},
			},
			SectionOtherIncome: {
				{Label: "Other Income", AccountCodes: []string{"4100"}},
			},
			SectionOtherExpenses: {},
		},
	}
}

// DefaultCashFlowConfig is the built-in cash-flow configuration keyed to
// the standard seeded chart.
func DefaultCashFlowConfig() ReportConfig {
	return ReportConfig{
		ReportType:      ReportCashFlow,
		CashAccountCode: "1001",
		Sections: map[string][]ConfigLineItem{
			SectionOperating: {
				{Label: "Receipts from Customers", AccountCodes: []string{"4000", "4100", "1100"}, Sign: SignPositive},
				{Label: "Payments to Suppliers", AccountCodes: []string{"5000", "2100", "1200"}, Sign: SignNegative},
				{Label: "Operating Expenses Paid", AccountCodes: []string{"5100", "5200", "5300"}, Sign: SignNegative},
				{Label: "Net Tax Movement", AccountCodes: []string{"1300", "2200"}, Sign: SignNegative},
			},
			SectionInvesting: {
				{Label: "Purchase of Fixed Assets", AccountCodes: []string{"1500"}, Sign: SignNegative},
			},
			SectionFinancing: {
				{Label: "Capital Contributions", AccountCodes: []string{"3000"}, Sign: SignPositive},
				{Label: "Loan Movements", AccountCodes: []string{"2300"}, Sign: SignPositive},
			},
		},
	}
}
