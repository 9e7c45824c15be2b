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

type JournalImportTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountSvc  *MockAccountService
	service         portssvc.JournalSvcFacade
	ctx             context.Context

	tenantID string
	userID   string
	chart    []domain.Account
}

func (suite *JournalImportTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountSvc)
	suite.ctx = context.Background()

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.chart = []domain.Account{
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "1001", Name: "Cash", AccountType: domain.Asset, NormalBalance: domain.DebitNormal},
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "4000", Name: "Sales Revenue", AccountType: domain.Income, NormalBalance: domain.CreditNormal},
		{AccountID: uuid.NewString(), TenantID: suite.tenantID, Code: "5200", Name: "Rent Expense", AccountType: domain.Expense, NormalBalance: domain.DebitNormal},
	}
}

func (suite *JournalImportTestSuite) chartByID() map[string]domain.Account {
	byID := make(map[string]domain.Account, len(suite.chart))
	for _, a := range suite.chart {
		byID[a.AccountID] = a
	}
	return byID
}

// expectEntryCreated wires the mocks for one successful posted entry.
func (suite *JournalImportTestSuite) expectEntryCreated(reference string) {
	suite.mockJournalRepo.On("FindEntryByReference", suite.ctx, suite.tenantID, reference).
		Return(nil, apperrors.NewNotFoundError("entry not found")).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", suite.ctx, suite.tenantID, mock.AnythingOfType("[]string")).
		Return(suite.chartByID(), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", suite.ctx,
		mock.MatchedBy(func(entry domain.JournalEntry) bool {
			return entry.Reference == reference && entry.Status == domain.Posted
		}),
		mock.AnythingOfType("[]domain.JournalLine"),
		mock.AnythingOfType("map[string]decimal.Decimal")).
		Return(nil).Once()
}

func (suite *JournalImportTestSuite) TestImportRows_GroupsConsecutiveRuns() {
	rows := []dto.ImportRow{
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "1001", Debit: decimal.NewFromInt(1000), Description: "cash sale"},
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "4000", Credit: decimal.NewFromInt(1000)},
		{Date: "2025-04-02", Reference: "IMP-2", AccountCode: "5200", Debit: decimal.NewFromInt(300)},
		{Date: "2025-04-02", Reference: "IMP-2", AccountCode: "1001", Credit: decimal.NewFromInt(300)},
	}

	suite.mockAccountSvc.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart, nil).Once()
	suite.expectEntryCreated("IMP-1")
	suite.expectEntryCreated("IMP-2")

	result, err := suite.service.ImportRows(suite.ctx, suite.tenantID, rows, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, result.CreatedCount)
	suite.Len(result.CreatedEntryIDs, 2)
	suite.Empty(result.Errors)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalImportTestSuite) TestImportRows_UnknownCodeFailsWholeGroup() {
	rows := []dto.ImportRow{
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "1001", Debit: decimal.NewFromInt(1000)},
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "4000", Credit: decimal.NewFromInt(1000)},
		{Date: "2025-04-02", Reference: "IMP-2", AccountCode: "9999", Debit: decimal.NewFromInt(300)},
		{Date: "2025-04-02", Reference: "IMP-2", AccountCode: "1001", Credit: decimal.NewFromInt(300)},
	}

	suite.mockAccountSvc.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart, nil).Once()
	suite.expectEntryCreated("IMP-1")

	result, err := suite.service.ImportRows(suite.ctx, suite.tenantID, rows, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.CreatedCount)
	suite.Require().Len(result.Errors, 1)
	suite.Equal(3, result.Errors[0].Row)
	suite.Equal("IMP-2", result.Errors[0].Reference)
	suite.Contains(result.Errors[0].Message, "9999")
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalImportTestSuite) TestImportRows_BadDateSkipsRowNotRun() {
	rows := []dto.ImportRow{
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "1001", Debit: decimal.NewFromInt(500)},
		{Date: "01/04/2025", Reference: "IMP-X", AccountCode: "5200", Debit: decimal.NewFromInt(42)},
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "4000", Credit: decimal.NewFromInt(500)},
	}

	suite.mockAccountSvc.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart, nil).Once()
	suite.expectEntryCreated("IMP-1")

	result, err := suite.service.ImportRows(suite.ctx, suite.tenantID, rows, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.CreatedCount)
	suite.Require().Len(result.Errors, 1)
	suite.Equal(2, result.Errors[0].Row)
	suite.Contains(result.Errors[0].Message, "invalid date")
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalImportTestSuite) TestImportRows_DuplicateReferenceFailsGroup() {
	rows := []dto.ImportRow{
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "1001", Debit: decimal.NewFromInt(500)},
		{Date: "2025-04-01", Reference: "IMP-1", AccountCode: "4000", Credit: decimal.NewFromInt(500)},
	}
	existing := &domain.JournalEntry{EntryID: uuid.NewString(), TenantID: suite.tenantID, Reference: "IMP-1"}

	suite.mockAccountSvc.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart, nil).Once()
	suite.mockJournalRepo.On("FindEntryByReference", suite.ctx, suite.tenantID, "IMP-1").
		Return(existing, nil).Once()

	result, err := suite.service.ImportRows(suite.ctx, suite.tenantID, rows, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(0, result.CreatedCount)
	suite.Require().Len(result.Errors, 1)
	suite.Equal(1, result.Errors[0].Row)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalImportTestSuite) TestImportRows_Empty() {
	result, err := suite.service.ImportRows(suite.ctx, suite.tenantID, nil, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(0, result.CreatedCount)
	suite.Empty(result.Errors)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything)
}

func TestJournalImportTestSuite(t *testing.T) {
	suite.Run(t, new(JournalImportTestSuite))
}
