package services_test

import (
	"context"
	"testing"
	"time"

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

type GSTReportingTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockJournalRepo *MockJournalRepository
	mockConfigRepo  *MockReportConfigRepository
	service         portssvc.ReportingSvcFacade
	ctx             context.Context

	tenantID string
	from     time.Time
	to       time.Time

	gstPayable domain.Account
	gstInput   domain.Account
	sales      domain.Account
	purchases  domain.Account
}

func (suite *GSTReportingTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockConfigRepo = new(MockReportConfigRepository)
	balanceSvc := services.NewBalanceService(suite.mockAccountRepo, suite.mockJournalRepo)
	suite.service = services.NewReportingService(suite.mockAccountRepo, suite.mockJournalRepo, suite.mockConfigRepo, balanceSvc)
	suite.ctx = context.Background()

	suite.tenantID = uuid.NewString()
	suite.from = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	suite.to = time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	suite.gstPayable = domain.Account{
		AccountID: uuid.NewString(), TenantID: suite.tenantID,
		Code: "2200", Name: "GST Payable", AccountType: domain.Liability, NormalBalance: domain.CreditNormal,
		TaxRole: domain.TaxRoleOutput,
	}
	suite.gstInput = domain.Account{
		AccountID: uuid.NewString(), TenantID: suite.tenantID,
		Code: "1300", Name: "GST Input Credit", AccountType: domain.Asset, NormalBalance: domain.DebitNormal,
		TaxRole: domain.TaxRoleInput,
	}
	suite.sales = domain.Account{
		AccountID: uuid.NewString(), TenantID: suite.tenantID,
		Code: "4000", Name: "Sales Revenue", AccountType: domain.Income, NormalBalance: domain.CreditNormal,
		TaxRole: domain.TaxRoleNone,
	}
	suite.purchases = domain.Account{
		AccountID: uuid.NewString(), TenantID: suite.tenantID,
		Code: "5000", Name: "Purchases", AccountType: domain.Expense, NormalBalance: domain.DebitNormal,
		TaxRole: domain.TaxRoleNone,
	}
}

func (suite *GSTReportingTestSuite) chart() []domain.Account {
	return []domain.Account{suite.gstPayable, suite.gstInput, suite.sales, suite.purchases}
}

func (suite *GSTReportingTestSuite) TestGSTSummary_ExplicitTaxRoles() {
	deltas := map[string]decimal.Decimal{
		suite.gstPayable.AccountID: decimal.NewFromInt(-1800), // credit 1800 collected
		suite.gstInput.AccountID:   decimal.NewFromInt(900),   // debit 900 credit claimable
		suite.sales.AccountID:      decimal.NewFromInt(-10000),
		suite.purchases.AccountID:  decimal.NewFromInt(5000),
	}

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart(), nil).Once()
	suite.mockJournalRepo.On("SumPostedDeltas", suite.ctx, suite.tenantID, suite.from,
		mock.MatchedBy(sameEndOfDay(suite.to))).
		Return(deltas, nil).Once()

	report, err := suite.service.GSTSummary(suite.ctx, suite.tenantID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.False(report.Heuristic)
	suite.True(report.OutputTax.Equal(decimal.NewFromInt(1800)))
	suite.True(report.InputTaxCredit.Equal(decimal.NewFromInt(900)))
	suite.True(report.OutwardTaxableSupplies.Equal(decimal.NewFromInt(10000)))
	suite.True(report.InwardSupplies.Equal(decimal.NewFromInt(5000)))
	suite.True(report.NetTaxPayable.Equal(decimal.NewFromInt(900)))
}

func (suite *GSTReportingTestSuite) TestGSTSummary_NameHeuristicFallback() {
	// An older chart with no tax roles at all.
	chart := suite.chart()
	for i := range chart {
		chart[i].TaxRole = domain.TaxRoleNone
	}
	deltas := map[string]decimal.Decimal{
		suite.gstPayable.AccountID: decimal.NewFromInt(-600),
		suite.gstInput.AccountID:   decimal.NewFromInt(250),
	}

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(chart, nil).Once()
	suite.mockJournalRepo.On("SumPostedDeltas", suite.ctx, suite.tenantID, suite.from,
		mock.MatchedBy(sameEndOfDay(suite.to))).
		Return(deltas, nil).Once()

	report, err := suite.service.GSTSummary(suite.ctx, suite.tenantID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(report.Heuristic)
	suite.True(report.OutputTax.Equal(decimal.NewFromInt(600)))
	suite.True(report.InputTaxCredit.Equal(decimal.NewFromInt(250)))
	suite.True(report.NetTaxPayable.Equal(decimal.NewFromInt(350)))
}

func (suite *GSTReportingTestSuite) TestGSTSummary_EmptyPeriodIsZeroFilled() {
	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart(), nil).Once()
	suite.mockJournalRepo.On("SumPostedDeltas", suite.ctx, suite.tenantID, suite.from,
		mock.MatchedBy(sameEndOfDay(suite.to))).
		Return(map[string]decimal.Decimal{}, nil).Once()

	report, err := suite.service.GSTSummary(suite.ctx, suite.tenantID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(report.OutputTax.IsZero())
	suite.True(report.InputTaxCredit.IsZero())
	suite.True(report.NetTaxPayable.IsZero())
}

func (suite *GSTReportingTestSuite) bookedLine(reference string, date time.Time, debit int64) domain.PostedLine {
	return domain.PostedLine{
		JournalLine: domain.JournalLine{
			LineID:    uuid.NewString(),
			EntryID:   uuid.NewString(),
			AccountID: suite.gstInput.AccountID,
			Debit:     decimal.NewFromInt(debit),
		},
		EntryDate: date,
		Reference: reference,
	}
}

func (suite *GSTReportingTestSuite) TestReconcile_BucketsRows() {
	booked := []domain.PostedLine{
		suite.bookedLine("PUR-1", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 900),
		suite.bookedLine("PUR-2", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), 450),
		suite.bookedLine("PUR-3", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 200),
	}
	req := dto.ReconciliationRequest{
		From: "2025-04-01",
		To:   "2025-04-30",
		Rows: []dto.StatementRowRequest{
			// Exact amount, one day off: matched.
			{Date: "2025-04-11", Reference: "STMT-1", Amount: decimal.NewFromInt(900)},
			// Same day, 10 off in amount: amount mismatch.
			{Date: "2025-04-20", Reference: "STMT-2", Amount: decimal.NewFromInt(460)},
			// Nothing plausibly close remains.
			{Date: "2025-04-25", Reference: "STMT-3", Amount: decimal.NewFromInt(5000)},
		},
	}

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart(), nil).Once()
	suite.mockJournalRepo.On("FindPostedLinesForAccounts", suite.ctx, suite.tenantID,
		mock.MatchedBy(func(ids []string) bool {
			return len(ids) == 1 && ids[0] == suite.gstInput.AccountID
		}),
		mock.AnythingOfType("time.Time"), mock.MatchedBy(sameEndOfDay(time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)))).
		Return(booked, nil).Once()

	report, err := suite.service.Reconcile(suite.ctx, suite.tenantID, req)

	suite.Require().NoError(err)
	suite.Require().Len(report.Matched, 1)
	suite.Equal("PUR-1", report.Matched[0].BookedLine.Reference)
	suite.Equal(1, report.Matched[0].DateDiff)

	suite.Require().Len(report.AmountMismatch, 1)
	suite.Equal("PUR-2", report.AmountMismatch[0].BookedLine.Reference)
	suite.True(report.AmountMismatch[0].AmountDiff.Equal(decimal.NewFromInt(10)))

	suite.Require().Len(report.MissingInBooks, 1)
	suite.Equal("STMT-3", report.MissingInBooks[0].Reference)

	suite.Require().Len(report.MissingInStatement, 1)
	suite.Equal("PUR-3", report.MissingInStatement[0].Reference)

	suite.Empty(report.DateMismatch)
}

func (suite *GSTReportingTestSuite) TestReconcile_DateMismatchBeyondTolerance() {
	booked := []domain.PostedLine{
		suite.bookedLine("PUR-1", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), 900),
	}
	req := dto.ReconciliationRequest{
		From: "2025-04-01",
		To:   "2025-04-30",
		Rows: []dto.StatementRowRequest{
			// Exact amount but 10 days away, beyond the 3-day default.
			{Date: "2025-04-12", Reference: "STMT-1", Amount: decimal.NewFromInt(900)},
		},
	}

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart(), nil).Once()
	suite.mockJournalRepo.On("FindPostedLinesForAccounts", suite.ctx, suite.tenantID,
		mock.AnythingOfType("[]string"), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(booked, nil).Once()

	report, err := suite.service.Reconcile(suite.ctx, suite.tenantID, req)

	suite.Require().NoError(err)
	suite.Require().Len(report.DateMismatch, 1)
	suite.Equal(10, report.DateMismatch[0].DateDiff)
	suite.Empty(report.Matched)
	suite.Empty(report.MissingInStatement)
}

func (suite *GSTReportingTestSuite) TestReconcile_CustomTolerances() {
	booked := []domain.PostedLine{
		suite.bookedLine("PUR-1", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 900),
	}
	amountTolerance := decimal.NewFromInt(20)
	dateTolerance := 0
	req := dto.ReconciliationRequest{
		From:              "2025-04-01",
		To:                "2025-04-30",
		AmountTolerance:   &amountTolerance,
		DateToleranceDays: &dateTolerance,
		Rows: []dto.StatementRowRequest{
			{Date: "2025-04-10", Reference: "STMT-1", Amount: decimal.NewFromInt(910)},
		},
	}

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart(), nil).Once()
	suite.mockJournalRepo.On("FindPostedLinesForAccounts", suite.ctx, suite.tenantID,
		mock.AnythingOfType("[]string"), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(booked, nil).Once()

	report, err := suite.service.Reconcile(suite.ctx, suite.tenantID, req)

	suite.Require().NoError(err)
	suite.Len(report.Matched, 1)
}

func (suite *GSTReportingTestSuite) TestReconcile_InvalidDates() {
	_, err := suite.service.Reconcile(suite.ctx, suite.tenantID, dto.ReconciliationRequest{From: "04-01-2025", To: "2025-04-30"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *GSTReportingTestSuite) TestReconcile_UnknownScopeCodes() {
	req := dto.ReconciliationRequest{
		From:         "2025-04-01",
		To:           "2025-04-30",
		AccountCodes: []string{"7777"},
	}

	suite.mockAccountRepo.On("ListAccounts", suite.ctx, suite.tenantID).Return(suite.chart(), nil).Once()

	_, err := suite.service.Reconcile(suite.ctx, suite.tenantID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestGSTReportingTestSuite(t *testing.T) {
	suite.Run(t, new(GSTReportingTestSuite))
}
