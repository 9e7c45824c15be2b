package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	"github.com/dEvAshirvad/finager-backend/internal/utils/pagination"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entry and
// line data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepository
var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, tenant_id, reference, entry_date, description, status, reversed_at, created_at, created_by, last_updated_at, last_updated_by`

const insertLineQuery = `
	INSERT INTO journal_lines (line_id, entry_id, account_id, debit, credit, narration)
	VALUES ($1, $2, $3, $4, $5, $6);
`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.TenantID,
		&e.Reference,
		&e.EntryDate,
		&e.Description,
		&e.Status,
		&e.ReversedAt,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

// applyBalanceDeltas locks the touched accounts in a deterministic order and
// applies each raw delta to the stored running balance. Ordered locking
// keeps concurrent postings over overlapping account sets deadlock-free.
func applyBalanceDeltas(ctx context.Context, tx pgx.Tx, tenantID string, deltas map[string]decimal.Decimal, userID string, at time.Time) error {
	accountIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	lockQuery := `SELECT account_id FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2) ORDER BY account_id FOR UPDATE;`
	rows, err := tx.Query(ctx, lockQuery, tenantID, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	locked := make(map[string]struct{}, len(accountIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked account: %w", err)
		}
		locked[id] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating locked accounts: %w", err)
	}
	for _, id := range accountIDs {
		if _, ok := locked[id]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}

	batch := &pgx.Batch{}
	updateQuery := `
		UPDATE accounts
		SET current_balance = current_balance + $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE tenant_id = $1 AND account_id = $2;
	`
	for _, id := range accountIDs {
		batch.Queue(updateQuery, tenantID, id, deltas[id], at, userID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

func queueLineInserts(batch *pgx.Batch, lines []domain.JournalLine) {
	for _, l := range lines {
		batch.Queue(insertLineQuery, l.LineID, l.EntryID, l.AccountID, l.Debit, l.Credit, l.Narration)
	}
}

// SaveEntry inserts an entry with its lines. When the entry is created
// directly POSTED, balanceDeltas is applied in the same transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceDeltas map[string]decimal.Decimal) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		entryQuery := `
			INSERT INTO journal_entries (` + entryColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`
		_, err := tx.Exec(ctx, entryQuery,
			entry.EntryID,
			entry.TenantID,
			entry.Reference,
			entry.EntryDate,
			entry.Description,
			entry.Status,
			entry.ReversedAt,
			entry.CreatedAt,
			entry.CreatedBy,
			entry.LastUpdatedAt,
			entry.LastUpdatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: reference %s already exists in tenant", apperrors.ErrDuplicate, entry.Reference)
			}
			return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
		}

		batch := &pgx.Batch{}
		queueLineInserts(batch, lines)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
		}

		if balanceDeltas != nil {
			return applyBalanceDeltas(ctx, tx, entry.TenantID, balanceDeltas, entry.CreatedBy, entry.CreatedAt)
		}
		return nil
	})
}

// FindEntryByID retrieves an entry by its ID within the tenant.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	return &entry, nil
}

// FindEntryByReference retrieves an entry by its tenant-unique reference.
func (r *PgxJournalRepository) FindEntryByReference(ctx context.Context, tenantID, reference string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND reference = $2;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, tenantID, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by reference %s: %w", reference, err)
	}
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of an entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, debit, credit, narration
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.Narration); err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return lines, nil
}

// ListEntries retrieves a paginated list of entries using token-based
// pagination, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversed bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries`
	filterClause := `WHERE tenant_id = $1`
	if !includeReversed {
		filterClause += ` AND status != 'REVERSED'`
	}
	// Ordering must be stable: entry_date DESC with created_at as tie-breaker.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	args := []any{tenantID}
	cursorClause := ""
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause = `AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}

	query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

// UpdateDraftEntry replaces a draft's header and lines. The status guard in
// the UPDATE catches a concurrent post.
func (r *PgxJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE journal_entries
			SET entry_date = $3,
			    description = $4,
			    last_updated_at = $5,
			    last_updated_by = $6
			WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';
		`
		cmdTag, err := tx.Exec(ctx, query,
			entry.TenantID,
			entry.EntryID,
			entry.EntryDate,
			entry.Description,
			entry.LastUpdatedAt,
			entry.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update draft %s: %w", entry.EntryID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is not an editable draft", apperrors.ErrConflict, entry.EntryID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
			return fmt.Errorf("failed to clear lines for draft %s: %w", entry.EntryID, err)
		}
		batch := &pgx.Batch{}
		queueLineInserts(batch, lines)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert lines for draft %s: %w", entry.EntryID, err)
		}
		return nil
	})
}

// DeleteDraftEntry removes a draft and its lines. The status guard means a
// concurrently posted entry is never deleted.
func (r *PgxJournalRepository) DeleteDraftEntry(ctx context.Context, tenantID, entryID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		// Lines go first: they reference the entry. The whole transaction
		// rolls back if the guarded entry delete then finds a non-draft.
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entryID); err != nil {
			return fmt.Errorf("failed to delete lines for draft %s: %w", entryID, err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';`, tenantID, entryID)
		if err != nil {
			return fmt.Errorf("failed to delete draft %s: %w", entryID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is not a deletable draft", apperrors.ErrConflict, entryID)
		}
		return nil
	})
}

// transitionEntry flips the status under a current-status guard and applies
// the balance deltas in the same transaction. Losing a race to another
// writer surfaces as ErrConflict, never as a double apply.
func (r *PgxJournalRepository) transitionEntry(ctx context.Context, tenantID, entryID string, from, to domain.EntryStatus, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time, setReversedAt bool) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE journal_entries
			SET status = $3,
			    last_updated_at = $4,
			    last_updated_by = $5
		`
		args := []any{tenantID, entryID, to, at, userID}
		if setReversedAt {
			query += `, reversed_at = $6`
			args = append(args, at)
		}
		query += ` WHERE tenant_id = $1 AND entry_id = $2 AND status = $` + strconv.Itoa(len(args)+1) + `;`
		args = append(args, from)

		cmdTag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to transition entry %s to %s: %w", entryID, to, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is not %s", apperrors.ErrConflict, entryID, from)
		}

		return applyBalanceDeltas(ctx, tx, tenantID, balanceDeltas, userID, at)
	})
}

// MarkPosted flips DRAFT→POSTED and applies balanceDeltas atomically.
func (r *PgxJournalRepository) MarkPosted(ctx context.Context, tenantID, entryID string, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time) error {
	return r.transitionEntry(ctx, tenantID, entryID, domain.Draft, domain.Posted, balanceDeltas, userID, at, false)
}

// MarkReversed flips POSTED→REVERSED and applies the negated deltas
// atomically.
func (r *PgxJournalRepository) MarkReversed(ctx context.Context, tenantID, entryID string, balanceDeltas map[string]decimal.Decimal, userID string, at time.Time) error {
	return r.transitionEntry(ctx, tenantID, entryID, domain.Posted, domain.Reversed, balanceDeltas, userID, at, true)
}

// SumPostedDeltas returns Σ(debit−credit) per account over POSTED entries
// with entry_date in [from, to]. A zero from means from the beginning.
func (r *PgxJournalRepository) SumPostedDeltas(ctx context.Context, tenantID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT l.account_id, COALESCE(SUM(l.debit - l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.tenant_id = $1 AND e.status = 'POSTED' AND e.entry_date <= $2
	`
	args := []any{tenantID, to}
	if !from.IsZero() {
		query += ` AND e.entry_date >= $3`
		args = append(args, from)
	}
	query += ` GROUP BY l.account_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted deltas for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	deltas := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var delta decimal.Decimal
		if err := rows.Scan(&accountID, &delta); err != nil {
			return nil, fmt.Errorf("failed to scan delta row: %w", err)
		}
		deltas[accountID] = delta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delta rows: %w", err)
	}
	return deltas, nil
}

// SumPostedDeltaForAccount is the single-account as-of variant.
func (r *PgxJournalRepository) SumPostedDeltaForAccount(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit - l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.tenant_id = $1 AND l.account_id = $2 AND e.status = 'POSTED' AND e.entry_date <= $3;
	`
	var delta decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID, asOf).Scan(&delta); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum posted delta for account %s: %w", accountID, err)
	}
	return delta, nil
}

const postedLineColumns = `l.line_id, l.entry_id, l.account_id, l.debit, l.credit, l.narration, e.entry_date, e.reference, e.description`

func scanPostedLines(rows pgx.Rows) ([]domain.PostedLine, error) {
	lines := []domain.PostedLine{}
	for rows.Next() {
		var l domain.PostedLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.Narration, &l.EntryDate, &l.Reference, &l.EntryDescription); err != nil {
			return nil, fmt.Errorf("failed to scan posted line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted line rows: %w", err)
	}
	return lines, nil
}

// FindPostedLinesInPeriod returns all lines of POSTED entries in the period
// joined with their entry headers.
func (r *PgxJournalRepository) FindPostedLinesInPeriod(ctx context.Context, tenantID string, from, to time.Time) ([]domain.PostedLine, error) {
	query := `
		SELECT ` + postedLineColumns + `
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.tenant_id = $1 AND e.status = 'POSTED' AND e.entry_date >= $2 AND e.entry_date <= $3
		ORDER BY e.entry_date, e.created_at, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()
	return scanPostedLines(rows)
}

// FindPostedLinesForAccounts restricts the period lines to the given
// accounts.
func (r *PgxJournalRepository) FindPostedLinesForAccounts(ctx context.Context, tenantID string, accountIDs []string, from, to time.Time) ([]domain.PostedLine, error) {
	if len(accountIDs) == 0 {
		return []domain.PostedLine{}, nil
	}
	query := `
		SELECT ` + postedLineColumns + `
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE e.tenant_id = $1 AND l.account_id = ANY($2) AND e.status = 'POSTED' AND e.entry_date >= $3 AND e.entry_date <= $4
		ORDER BY e.entry_date, e.created_at, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines for accounts: %w", err)
	}
	defer rows.Close()
	return scanPostedLines(rows)
}
