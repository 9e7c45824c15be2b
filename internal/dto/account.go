package dto

import (
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for creating a single account.
type CreateAccountRequest struct {
	Code           string               `json:"code" binding:"required"`
	Name           string               `json:"name" binding:"required"`
	AccountType    domain.AccountType   `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	NormalBalance  domain.NormalBalance `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"`
	ParentCode     string               `json:"parentCode"`
	Description    string               `json:"description"`
	TaxRole        domain.TaxRole       `json:"taxRole" binding:"omitempty,oneof=NONE OUTPUT_TAX INPUT_TAX"`
	OpeningBalance decimal.Decimal      `json:"openingBalance"`
}

// UpdateAccountRequest carries the editable account fields; nil means
// unchanged. Edits are audited via a before/after diff.
type UpdateAccountRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	TaxRole     *domain.TaxRole `json:"taxRole" binding:"omitempty,oneof=NONE OUTPUT_TAX INPUT_TAX"`
}

// MoveAccountRequest re-parents an account. An empty NewParentCode makes
// the account a root.
type MoveAccountRequest struct {
	NewParentCode string `json:"newParentCode"`
}

// AccountDiff is the audited before/after snapshot of an account edit.
type AccountDiff struct {
	Before domain.Account `json:"before"`
	After  domain.Account `json:"after"`
}
