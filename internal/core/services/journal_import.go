package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	"github.com/dEvAshirvad/finager-backend/internal/dto"
)

const importDateLayout = "2006-01-02"

// importGroup is a run of consecutive rows sharing (date, reference),
// destined to become one journal entry. Row numbers are 1-based for error
// reporting.
type importGroup struct {
	date      time.Time
	reference string
	firstRow  int
	rows      []dto.ImportRow
}

// ImportRows converts tabular rows into posted journal entries. Consecutive
// rows sharing (date, reference) form one entry; a non-consecutive repeat of
// the same pair starts a new group and will be rejected as a duplicate
// reference. Failing groups never abort valid siblings.
func (s *journalService) ImportRows(ctx context.Context, tenantID string, rows []dto.ImportRow, userID string) (*dto.ImportResult, error) {
	result := &dto.ImportResult{CreatedEntryIDs: []string{}, Errors: []dto.ImportRowError{}}
	if len(rows) == 0 {
		return result, nil
	}

	chart, err := s.accountSvc.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart of accounts: %w", err)
	}
	byCode := make(map[string]domain.Account, len(chart))
	for _, a := range chart {
		byCode[a.Code] = a
	}

	groups, rowErrors := groupImportRows(rows)
	result.Errors = append(result.Errors, rowErrors...)

	for _, g := range groups {
		req, groupErrors := s.buildImportEntry(g, byCode)
		if len(groupErrors) > 0 {
			result.Errors = append(result.Errors, groupErrors...)
			continue
		}

		resp, err := s.CreateEntry(ctx, tenantID, req, userID)
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{
				Row:       g.firstRow,
				Reference: g.reference,
				Message:   err.Error(),
			})
			continue
		}
		result.CreatedCount++
		result.CreatedEntryIDs = append(result.CreatedEntryIDs, resp.Entry.EntryID)
	}

	s.LogInfo(ctx, "Import completed",
		slog.String("tenant_id", tenantID),
		slog.Int("rows", len(rows)),
		slog.Int("created", result.CreatedCount),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

// groupImportRows splits rows into consecutive (date, reference) runs. Rows
// whose date fails to parse are reported individually and skipped, without
// breaking the current run for their siblings.
func groupImportRows(rows []dto.ImportRow) ([]importGroup, []dto.ImportRowError) {
	var groups []importGroup
	var rowErrors []dto.ImportRowError

	var current *importGroup
	for i, row := range rows {
		rowNum := i + 1
		date, err := time.Parse(importDateLayout, row.Date)
		if err != nil {
			rowErrors = append(rowErrors, dto.ImportRowError{
				Row:       rowNum,
				Reference: row.Reference,
				Message:   fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", row.Date),
			})
			continue
		}

		if current == nil || !current.date.Equal(date) || current.reference != row.Reference {
			groups = append(groups, importGroup{date: date, reference: row.Reference, firstRow: rowNum})
			current = &groups[len(groups)-1]
		}
		current.rows = append(current.rows, row)
	}
	return groups, rowErrors
}

// buildImportEntry resolves account codes and assembles the create request
// for one group. Any bad row fails the whole group: a partially imported
// entry could not balance.
func (s *journalService) buildImportEntry(g importGroup, byCode map[string]domain.Account) (dto.CreateEntryRequest, []dto.ImportRowError) {
	var groupErrors []dto.ImportRowError
	lines := make([]dto.CreateLineRequest, 0, len(g.rows))
	description := ""

	for j, row := range g.rows {
		rowNum := g.firstRow + j
		account, ok := byCode[row.AccountCode]
		if !ok {
			groupErrors = append(groupErrors, dto.ImportRowError{
				Row:       rowNum,
				Reference: g.reference,
				Message:   fmt.Sprintf("unknown account code %q", row.AccountCode),
			})
			continue
		}
		if description == "" {
			description = row.Description
		}
		lines = append(lines, dto.CreateLineRequest{
			AccountID: account.AccountID,
			Debit:     row.Debit,
			Credit:    row.Credit,
			Narration: row.Narration,
		})
	}
	if len(groupErrors) > 0 {
		return dto.CreateEntryRequest{}, groupErrors
	}

	return dto.CreateEntryRequest{
		Reference:   g.reference,
		Date:        g.date,
		Description: description,
		Status:      domain.Posted,
		Lines:       lines,
	}, nil
}
