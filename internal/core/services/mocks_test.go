package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	args := m.Called(ctx, tenantID, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) HasJournalLines(ctx context.Context, tenantID, accountID string) (bool, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Bool(0), args.Error(1)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepository = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, entry, lines, balanceDeltas)
	return args.Error(0)
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByReference(ctx context.Context, tenantID, reference string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversed bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, tenantID, limit, nextToken, includeReversed)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteDraftEntry(ctx context.Context, tenantID, entryID string) error {
	args := m.Called(ctx, tenantID, entryID)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkPosted(ctx context.Context, tenantID, entryID string, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time) error {
	args := m.Called(ctx, tenantID, entryID, balanceDeltas, userID, at)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkReversed(ctx context.Context, tenantID, entryID string, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time) error {
	args := m.Called(ctx, tenantID, entryID, balanceDeltas, userID, at)
	return args.Error(0)
}

func (m *MockJournalRepository) SumPostedDeltas(ctx context.Context, tenantID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockJournalRepository) SumPostedDeltaForAccount(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockJournalRepository) FindPostedLinesInPeriod(ctx context.Context, tenantID string, from, to time.Time) ([]domain.PostedLine, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostedLine), args.Error(1)
}

func (m *MockJournalRepository) FindPostedLinesForAccounts(ctx context.Context, tenantID string, accountIDs []string, from, to time.Time) ([]domain.PostedLine, error) {
	args := m.Called(ctx, tenantID, accountIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostedLine), args.Error(1)
}

// --- Mock ReportConfigRepository ---

type MockReportConfigRepository struct {
	mock.Mock
}

var _ portsrepo.ReportConfigRepository = (*MockReportConfigRepository)(nil)

func (m *MockReportConfigRepository) GetConfig(ctx context.Context, tenantID string, reportType domain.ReportType) (*domain.ReportConfig, error) {
	args := m.Called(ctx, tenantID, reportType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportConfig), args.Error(1)
}

func (m *MockReportConfigRepository) SaveConfig(ctx context.Context, config domain.ReportConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

// --- Mock AccountService (as used by JournalService) ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) SeedStandardChart(ctx context.Context, tenantID string, creatorUserID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, tenantID, accountID string, req dto.UpdateAccountRequest, userID string) (*dto.AccountDiff, error) {
	args := m.Called(ctx, tenantID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountDiff), args.Error(1)
}

func (m *MockAccountService) MoveAccount(ctx context.Context, tenantID, accountID string, req dto.MoveAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, tenantID, accountID string, userID string) error {
	args := m.Called(ctx, tenantID, accountID, userID)
	return args.Error(0)
}

func (m *MockAccountService) GetTree(ctx context.Context, tenantID string) ([]*domain.AccountNode, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountNode), args.Error(1)
}

func (m *MockAccountService) GetChildren(ctx context.Context, tenantID, code string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAncestors(ctx context.Context, tenantID, code string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetDescendants(ctx context.Context, tenantID, code string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetRoots(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetLeaves(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetStatistics(ctx context.Context, tenantID string) (*domain.AccountStatistics, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountStatistics), args.Error(1)
}

// --- Mock EventDispatcher ---

type MockEventDispatcher struct {
	mock.Mock
}

var _ portssvc.EventDispatcher = (*MockEventDispatcher)(nil)

func (m *MockEventDispatcher) Dispatch(ctx context.Context, tenantID, eventCode string, payload map[string]any) error {
	args := m.Called(ctx, tenantID, eventCode, payload)
	return args.Error(0)
}
