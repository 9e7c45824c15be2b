package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
	"github.com/dEvAshirvad/finager-backend/internal/utils/accounting"
)

var (
	ErrEntryMinLines     = errors.New("entry must have at least two lines")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEntryNotDraft     = errors.New("entry is not a draft")
	ErrReferenceExists   = errors.New("reference already exists in tenant")
)

// journalService implements the journal engine: it validates and commits
// balanced double-entry transactions and is the sole writer of account
// running balances.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepository
	accountSvc  portssvc.AccountSvcFacade
	inventory   portssvc.InventoryAdjuster // Optional outbound collaborator
	events      portssvc.EventDispatcher   // Optional outbound collaborator
}

// JournalServiceOption configures the journal service.
type JournalServiceOption func(*journalService)

// WithInventoryAdjuster wires the outbound inventory collaborator.
func WithInventoryAdjuster(adjuster portssvc.InventoryAdjuster) JournalServiceOption {
	return func(s *journalService) {
		s.inventory = adjuster
	}
}

// WithEventDispatcher wires the outbound business-event dispatcher.
func WithEventDispatcher(dispatcher portssvc.EventDispatcher) JournalServiceOption {
	return func(s *journalService) {
		s.events = dispatcher
	}
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepository, accountSvc portssvc.AccountSvcFacade, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines to domain lines and validates the
// structural and balance invariants.
func (s *journalService) buildLines(entryID string, reqLines []dto.CreateLineRequest) ([]domain.JournalLine, error) {
	if len(reqLines) < 2 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEntryMinLines.Error())
	}

	lines := make([]domain.JournalLine, len(reqLines))
	for i, lr := range reqLines {
		lines[i] = domain.JournalLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: lr.AccountID,
			Debit:     lr.Debit,
			Credit:    lr.Credit,
			Narration: lr.Narration,
		}
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return lines, nil
}

// resolveAccounts ensures every referenced account exists in-tenant. An
// unknown account aborts the whole entry; there is no partial commit.
func (s *journalService) resolveAccounts(ctx context.Context, tenantID string, lines []domain.JournalLine) (map[string]domain.Account, error) {
	idSet := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := idSet[l.AccountID]; !ok {
			idSet[l.AccountID] = struct{}{}
			ids = append(ids, l.AccountID)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range ids {
		if _, found := accounts[id]; !found {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrNotFound, ErrAccountNotFound.Error(), id)
		}
	}
	return accounts, nil
}

// balanceDeltas aggregates the raw stored delta (debit − credit) per
// account. Normal-balance sign interpretation is applied only at read time
// by the balance resolver, never here.
func balanceDeltas(lines []domain.JournalLine) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal)
	for _, l := range lines {
		deltas[l.AccountID] = deltas[l.AccountID].Add(l.Delta())
	}
	return deltas
}

func negateDeltas(deltas map[string]decimal.Decimal) map[string]decimal.Decimal {
	negated := make(map[string]decimal.Decimal, len(deltas))
	for id, d := range deltas {
		negated[id] = d.Neg()
	}
	return negated
}

// CreateEntry validates and persists a new journal entry. The target status
// comes from the caller's privilege: elevated callers post immediately,
// restricted callers create drafts. The engine enforces only the state
// machine, not who may request which status.
func (s *journalService) CreateEntry(ctx context.Context, tenantID string, req dto.CreateEntryRequest, creatorUserID string) (*dto.CreateEntryResponse, error) {
	status := req.Status
	if status == "" {
		status = domain.Draft
	}
	if status != domain.Draft && status != domain.Posted {
		return nil, fmt.Errorf("%w: entries are created DRAFT or POSTED, not %s", apperrors.ErrValidation, status)
	}

	if existing, err := s.journalRepo.FindEntryByReference(ctx, tenantID, req.Reference); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, ErrReferenceExists.Error(), req.Reference)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check reference uniqueness: %w", err)
	}

	entryID := uuid.NewString()
	lines, err := s.buildLines(entryID, req.Lines)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveAccounts(ctx, tenantID, lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:     entryID,
		TenantID:    tenantID,
		Reference:   req.Reference,
		EntryDate:   req.Date,
		Description: req.Description,
		Status:      status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	var deltas map[string]decimal.Decimal
	if status == domain.Posted {
		deltas = balanceDeltas(lines)
	}

	if err := s.journalRepo.SaveEntry(ctx, entry, lines, deltas); err != nil {
		s.LogError(ctx, err, "Failed to save entry", slog.String("tenant_id", tenantID), slog.String("reference", req.Reference))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	resp := &dto.CreateEntryResponse{Entry: entry}
	resp.Entry.Lines = lines

	// Stock adjustments ride along with sales/purchase postings. A delivery
	// failure is reported but never rolls back the journal posting.
	if status == domain.Posted && s.inventory != nil {
		for _, adj := range req.StockAdjustments {
			err := s.inventory.AdjustStock(ctx, tenantID, domain.StockAdjustment{
				Type:      adj.Type,
				ProductID: adj.ProductID,
				Variant:   adj.Variant,
				Qty:       adj.Qty,
				CostPrice: adj.CostPrice,
			})
			if err != nil {
				s.LogWarn(ctx, "Stock adjustment failed",
					slog.String("tenant_id", tenantID),
					slog.String("entry_id", entryID),
					slog.String("product_id", adj.ProductID),
					slog.String("error", err.Error()))
				resp.Warnings = append(resp.Warnings, fmt.Sprintf("stock adjustment failed for product %s: %s", adj.ProductID, err.Error()))
			}
		}
	}

	if status == domain.Posted {
		s.notifyEvent(ctx, tenantID, "journal.entry.posted", entryID)
	}

	s.LogInfo(ctx, "Entry created", slog.String("tenant_id", tenantID), slog.String("entry_id", entryID), slog.String("status", string(status)))
	return resp, nil
}

// notifyEvent reports an entry lifecycle event to the dispatcher, if one is
// wired. Delivery failures are logged and never affect the ledger write.
func (s *journalService) notifyEvent(ctx context.Context, tenantID, eventCode, entryID string) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, tenantID, eventCode, map[string]any{"entryID": entryID}); err != nil {
		s.LogWarn(ctx, "Event dispatch failed",
			slog.String("tenant_id", tenantID),
			slog.String("entry_id", entryID),
			slog.String("event_code", eventCode),
			slog.String("error", err.Error()))
	}
}

// GetEntry retrieves an entry with its lines. A posted entry whose stored
// lines no longer balance is an internal defect: it is surfaced as a
// consistency error and quarantined for manual review, never silently
// accepted.
func (s *journalService) GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines

	if entry.Status == domain.Posted && !domain.LinesBalance(lines) {
		s.LogError(ctx, apperrors.ErrConsistency, "Posted entry lines do not balance, quarantining",
			slog.String("tenant_id", tenantID),
			slog.String("entry_id", entryID))
		return nil, fmt.Errorf("%w: posted entry %s has unbalanced lines", apperrors.ErrConsistency, entryID)
	}

	return entry, nil
}

// ListEntries retrieves a paginated list of entries for the tenant.
func (s *journalService) ListEntries(ctx context.Context, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, tenantID, limit, params.NextToken, params.IncludeReversed)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &dto.ListEntriesResponse{Entries: entries, NextToken: nextToken}, nil
}

// ListAccountLines returns the posted lines touching one account, oldest
// first. Zero period bounds mean unbounded.
func (s *journalService) ListAccountLines(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]domain.PostedLine, error) {
	if _, err := s.accountSvc.GetAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if to.IsZero() {
		to = time.Now()
	}
	return s.journalRepo.FindPostedLinesForAccounts(ctx, tenantID, []string{accountID}, from, endOfDay(to))
}

// UpdateDraft edits a draft entry. Drafts are mutable only by their creator.
func (s *journalService) UpdateDraft(ctx context.Context, tenantID, entryID string, req dto.UpdateDraftRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrEntryNotDraft.Error())
	}
	if entry.CreatedBy != userID {
		return nil, fmt.Errorf("%w: drafts are editable only by their creator", apperrors.ErrForbidden)
	}

	if req.Date != nil {
		entry.EntryDate = *req.Date
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}

	var lines []domain.JournalLine
	if req.Lines != nil {
		lines, err = s.buildLines(entryID, req.Lines)
		if err != nil {
			return nil, err
		}
		if _, err := s.resolveAccounts(ctx, tenantID, lines); err != nil {
			return nil, err
		}
	} else {
		lines, err = s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
		}
	}

	entry.LastUpdatedAt = time.Now().UTC()
	entry.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateDraftEntry(ctx, *entry, lines); err != nil {
		return nil, fmt.Errorf("failed to update draft %s: %w", entryID, err)
	}

	entry.Lines = lines
	return entry, nil
}

// DeleteDraft removes a draft entry. Posted and reversed entries are never
// physically deleted.
func (s *journalService) DeleteDraft(ctx context.Context, tenantID, entryID string, userID string) error {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	if entry.Status != domain.Draft {
		return fmt.Errorf("%w: %s: only drafts may be deleted", apperrors.ErrConflict, ErrInvalidTransition.Error())
	}
	if entry.CreatedBy != userID {
		return fmt.Errorf("%w: drafts are deletable only by their creator", apperrors.ErrForbidden)
	}

	if err := s.journalRepo.DeleteDraftEntry(ctx, tenantID, entryID); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", entryID, err)
	}

	s.LogInfo(ctx, "Draft deleted", slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
	return nil
}

// PostEntry transitions a draft to POSTED, applying every line's balance
// delta and the status flip as one atomic unit.
func (s *journalService) PostEntry(ctx context.Context, tenantID, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	if !domain.CanTransition(entry.Status, domain.Posted) {
		return nil, fmt.Errorf("%w: %s: %s cannot move to POSTED", apperrors.ErrConflict, ErrInvalidTransition.Error(), entry.Status)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	if !domain.LinesBalance(lines) {
		s.LogError(ctx, apperrors.ErrConsistency, "Stored draft lines do not balance",
			slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("%w: entry %s has unbalanced stored lines", apperrors.ErrConsistency, entryID)
	}

	if _, err := s.resolveAccounts(ctx, tenantID, lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkPosted(ctx, tenantID, entryID, balanceDeltas(lines), userID, now); err != nil {
		return nil, fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}

	entry.Status = domain.Posted
	entry.Lines = lines
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	s.notifyEvent(ctx, tenantID, "journal.entry.posted", entryID)

	s.LogInfo(ctx, "Entry posted", slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
	return entry, nil
}

// ReverseEntry transitions a posted entry to REVERSED, applying the exact
// negation of its balance effects. REVERSED is terminal.
func (s *journalService) ReverseEntry(ctx context.Context, tenantID, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	if !domain.CanTransition(entry.Status, domain.Reversed) {
		return nil, fmt.Errorf("%w: %s: %s cannot move to REVERSED", apperrors.ErrConflict, ErrInvalidTransition.Error(), entry.Status)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}
	if !domain.LinesBalance(lines) {
		s.LogError(ctx, apperrors.ErrConsistency, "Posted entry lines do not balance, refusing reversal",
			slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("%w: entry %s has unbalanced stored lines", apperrors.ErrConsistency, entryID)
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkReversed(ctx, tenantID, entryID, negateDeltas(balanceDeltas(lines)), userID, now); err != nil {
		return nil, fmt.Errorf("failed to reverse entry %s: %w", entryID, err)
	}

	entry.Status = domain.Reversed
	entry.Lines = lines
	entry.ReversedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	s.notifyEvent(ctx, tenantID, "journal.entry.reversed", entryID)

	s.LogInfo(ctx, "Entry reversed", slog.String("tenant_id", tenantID), slog.String("entry_id", entryID))
	return entry, nil
}

// PostMany posts each entry independently, partitioning outcomes. A failed
// entry never aborts its siblings.
func (s *journalService) PostMany(ctx context.Context, tenantID string, req dto.BulkEntryRequest, userID string) *dto.BulkEntryResponse {
	resp := &dto.BulkEntryResponse{Succeeded: []string{}, Failed: []dto.BulkFailure{}}
	for _, entryID := range req.EntryIDs {
		if _, err := s.PostEntry(ctx, tenantID, entryID, userID); err != nil {
			resp.Failed = append(resp.Failed, dto.BulkFailure{EntryID: entryID, Reason: err.Error()})
			continue
		}
		resp.Succeeded = append(resp.Succeeded, entryID)
	}
	return resp
}

// ReverseMany reverses each entry independently, partitioning outcomes.
func (s *journalService) ReverseMany(ctx context.Context, tenantID string, req dto.BulkEntryRequest, userID string) *dto.BulkEntryResponse {
	resp := &dto.BulkEntryResponse{Succeeded: []string{}, Failed: []dto.BulkFailure{}}
	for _, entryID := range req.EntryIDs {
		if _, err := s.ReverseEntry(ctx, tenantID, entryID, userID); err != nil {
			resp.Failed = append(resp.Failed, dto.BulkFailure{EntryID: entryID, Reason: err.Error()})
			continue
		}
		resp.Succeeded = append(resp.Succeeded, entryID)
	}
	return resp
}

// ValidateEntry runs the full validation pipeline without persisting
// anything, plus an advisory check of whether the accounting equation would
// still hold with the candidate lines applied. The advisory result never
// blocks posting.
func (s *journalService) ValidateEntry(ctx context.Context, tenantID string, req dto.CreateEntryRequest) (*dto.ValidateEntryResponse, error) {
	resp := &dto.ValidateEntryResponse{Valid: true}

	lines, err := s.buildLines(uuid.NewString(), req.Lines)
	if err != nil {
		resp.Valid = false
		resp.Errors = append(resp.Errors, err.Error())
		// Structural failure: totals still reported from the raw request.
		for _, lr := range req.Lines {
			resp.TotalDebits = resp.TotalDebits.Add(lr.Debit)
			resp.TotalCredits = resp.TotalCredits.Add(lr.Credit)
		}
		return resp, nil
	}

	resp.TotalDebits = domain.TotalDebits(lines)
	resp.TotalCredits = domain.TotalCredits(lines)

	accounts, err := s.resolveAccounts(ctx, tenantID, lines)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			resp.Valid = false
			resp.Errors = append(resp.Errors, err.Error())
			return resp, nil
		}
		return nil, err
	}

	// Advisory accounting-equation check: recompute hypothetical per-type
	// totals including the candidate deltas. Every balanced posting nets raw
	// balances to zero, so the whole chart summing to ~zero means the
	// equation Assets + Expenses = Liabilities + Equity + Income holds.
	all, err := s.accountSvc.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for equation check: %w", err)
	}
	total := decimal.Zero
	for _, a := range all {
		total = total.Add(a.CurrentBalance)
	}
	for id, delta := range balanceDeltas(lines) {
		if _, ok := accounts[id]; ok {
			total = total.Add(delta)
		}
	}
	resp.EquationHolds = total.Abs().LessThan(domain.ReportTolerance)

	return resp, nil
}
