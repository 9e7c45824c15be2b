package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/core/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
	ctx             context.Context

	tenantID string
	userID   string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
	suite.ctx = context.Background()

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// testChart is a small forest: 1000 > 1100 > 1110, and a root 4000.
func (suite *AccountServiceTestSuite) testChart() []domain.Account {
	return []domain.Account{
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "1000", Name: "Assets", AccountType: domain.Asset},
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "1100", Name: "Receivables", AccountType: domain.Asset, ParentCode: "1000"},
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "1110", Name: "Trade Debtors", AccountType: domain.Asset, ParentCode: "1100"},
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "4000", Name: "Sales", AccountType: domain.Income},
	}
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{
		Code:           "1001",
		Name:           "Cash",
		AccountType:    domain.Asset,
		OpeningBalance: decimal.NewFromInt(5000),
	}

	suite.mockAccountRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.TenantID == suite.tenantID &&
			a.Code == "1001" &&
			a.NormalBalance == domain.DebitNormal &&
			a.TaxRole == domain.TaxRoleNone &&
			a.IsActive && !a.IsSystem &&
			a.CurrentBalance.Equal(a.OpeningBalance)
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(account.AccountID)
	suite.Equal(domain.DebitNormal, account.NormalBalance)
	suite.Equal(suite.userID, account.CreatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CreditNormalDefault() {
	req := dto.CreateAccountRequest{Code: "2100", Name: "Accounts Payable", AccountType: domain.Liability}

	suite.mockAccountRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.NormalBalance == domain.CreditNormal
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CreditNormal, account.NormalBalance)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownType() {
	req := dto.CreateAccountRequest{Code: "1001", Name: "Cash", AccountType: "CONTRA"}

	_, err := suite.service.CreateAccount(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentNotFound() {
	req := dto.CreateAccountRequest{Code: "1001", Name: "Cash", AccountType: domain.Asset, ParentCode: "1000"}

	suite.mockAccountRepo.On("FindAccountByCode", suite.ctx, suite.tenantID, "1000").
		Return(nil, apperrors.NewNotFoundError("account not found")).Once()

	_, err := suite.service.CreateAccount(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, services.ErrParentNotFound.Error())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	req := dto.CreateAccountRequest{Code: "1001", Name: "Cash", AccountType: domain.Asset}

	suite.mockAccountRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(suite.ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestSeedStandardChart_Success() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return([]domain.Account{}, nil).Once()
	suite.mockAccountRepo.On("SaveAccounts", suite.ctx, mock.MatchedBy(func(accounts []domain.Account) bool {
		if len(accounts) != len(domain.StandardChartTemplate) {
			return false
		}
		for _, a := range accounts {
			if !a.IsSystem || a.TenantID != suite.tenantID {
				return false
			}
		}
		return true
	})).Return(nil).Once()

	accounts, err := suite.service.SeedStandardChart(suite.ctx, suite.tenantID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(accounts, len(domain.StandardChartTemplate))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestSeedStandardChart_AlreadySeeded() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(suite.testChart(), nil).Once()

	_, err := suite.service.SeedStandardChart(suite.ctx, suite.tenantID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccounts", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_ReturnsDiff() {
	account := suite.testChart()[1]
	newName := "Accounts Receivable"

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == newName && a.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	diff, err := suite.service.UpdateAccount(suite.ctx, suite.tenantID, account.AccountID, dto.UpdateAccountRequest{Name: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Receivables", diff.Before.Name)
	suite.Equal(newName, diff.After.Name)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoChangeSkipsWrite() {
	account := suite.testChart()[1]
	sameName := account.Name

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()

	diff, err := suite.service.UpdateAccount(suite.ctx, suite.tenantID, account.AccountID, dto.UpdateAccountRequest{Name: &sameName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(diff.Before.Name, diff.After.Name)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestMoveAccount_SelfParent() {
	account := suite.testChart()[1]

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()

	_, err := suite.service.MoveAccount(suite.ctx, suite.tenantID, account.AccountID, dto.MoveAccountRequest{NewParentCode: account.Code}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorContains(err, services.ErrSelfParent.Error())
}

func (suite *AccountServiceTestSuite) TestMoveAccount_CycleDetected() {
	chart := suite.testChart()
	parent := chart[1] // 1100, whose descendant is 1110

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, parent.AccountID).
		Return(&parent, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(chart, nil).Once()

	_, err := suite.service.MoveAccount(suite.ctx, suite.tenantID, parent.AccountID, dto.MoveAccountRequest{NewParentCode: "1110"}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorContains(err, services.ErrCycleDetected.Error())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestMoveAccount_ToRoot() {
	chart := suite.testChart()
	account := chart[2] // 1110

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.ParentCode == ""
	})).Return(nil).Once()

	moved, err := suite.service.MoveAccount(suite.ctx, suite.tenantID, account.AccountID, dto.MoveAccountRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(moved.ParentCode)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_SystemProtected() {
	account := suite.testChart()[0]
	account.IsSystem = true

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()

	err := suite.service.DeleteAccount(suite.ctx, suite.tenantID, account.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_ReferencedByJournal() {
	account := suite.testChart()[3]

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()
	suite.mockAccountRepo.On("HasJournalLines", suite.ctx, suite.tenantID, account.AccountID).
		Return(true, nil).Once()

	err := suite.service.DeleteAccount(suite.ctx, suite.tenantID, account.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_Success() {
	account := suite.testChart()[3]

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.tenantID, account.AccountID).
		Return(&account, nil).Once()
	suite.mockAccountRepo.On("HasJournalLines", suite.ctx, suite.tenantID, account.AccountID).
		Return(false, nil).Once()
	suite.mockAccountRepo.On("DeleteAccount", suite.ctx, suite.tenantID, account.AccountID).
		Return(nil).Once()

	err := suite.service.DeleteAccount(suite.ctx, suite.tenantID, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetTree() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(suite.testChart(), nil).Once()

	roots, err := suite.service.GetTree(suite.ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.Require().Len(roots, 2)

	byCode := make(map[string]*domain.AccountNode, len(roots))
	for _, r := range roots {
		byCode[r.Account.Code] = r
	}
	assets := byCode["1000"]
	suite.Require().NotNil(assets)
	suite.Require().Len(assets.Children, 1)
	suite.Equal("1100", assets.Children[0].Account.Code)
	suite.Require().Len(assets.Children[0].Children, 1)
	suite.Equal("1110", assets.Children[0].Children[0].Account.Code)
	suite.Empty(byCode["4000"].Children)
}

func (suite *AccountServiceTestSuite) TestGetTree_OrphanedParentBecomesRoot() {
	chart := suite.testChart()
	chart[2].ParentCode = "9999" // dangling reference

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(chart, nil).Once()

	roots, err := suite.service.GetTree(suite.ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.Len(roots, 3)
}

func (suite *AccountServiceTestSuite) TestGetAncestors() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(suite.testChart(), nil).Once()

	ancestors, err := suite.service.GetAncestors(suite.ctx, suite.tenantID, "1110")

	suite.Require().NoError(err)
	suite.Require().Len(ancestors, 2)
	suite.Equal("1100", ancestors[0].Code)
	suite.Equal("1000", ancestors[1].Code)
}

func (suite *AccountServiceTestSuite) TestGetDescendants() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(suite.testChart(), nil).Once()

	descendants, err := suite.service.GetDescendants(suite.ctx, suite.tenantID, "1000")

	suite.Require().NoError(err)
	suite.Len(descendants, 2)
}

func (suite *AccountServiceTestSuite) TestGetDescendants_UnknownCode() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(suite.testChart(), nil).Once()

	_, err := suite.service.GetDescendants(suite.ctx, suite.tenantID, "8888")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetRootsAndLeaves() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(suite.testChart(), nil).Twice()

	roots, err := suite.service.GetRoots(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)
	suite.Len(roots, 2)

	leaves, err := suite.service.GetLeaves(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)
	suite.Require().Len(leaves, 2)
	leafCodes := []string{leaves[0].Code, leaves[1].Code}
	suite.ElementsMatch([]string{"1110", "4000"}, leafCodes)
}

func (suite *AccountServiceTestSuite) TestGetStatistics() {
	chart := suite.testChart()
	chart[0].IsSystem = true

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).
		Return(chart, nil).Once()

	stats, err := suite.service.GetStatistics(suite.ctx, suite.tenantID)

	suite.Require().NoError(err)
	suite.Equal(4, stats.Total)
	suite.Equal(3, stats.ByType[domain.Asset])
	suite.Equal(1, stats.ByType[domain.Income])
	suite.Equal(2, stats.RootCount)
	suite.Equal(2, stats.LeafCount)
	suite.Equal(1, stats.SystemCount)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
