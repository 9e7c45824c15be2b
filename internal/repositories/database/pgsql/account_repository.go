package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, tenant_id, code, name, account_type, normal_balance, parent_code, description, tax_role, is_system, is_active, opening_balance, current_balance, created_at, created_by, last_updated_at, last_updated_by`

const insertAccountQuery = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
`

func accountInsertArgs(a domain.Account) []any {
	var parentCode sql.NullString
	if a.ParentCode != "" {
		parentCode = sql.NullString{String: a.ParentCode, Valid: true}
	}
	return []any{
		a.AccountID,
		a.TenantID,
		a.Code,
		a.Name,
		a.AccountType,
		a.NormalBalance,
		parentCode,
		a.Description,
		a.TaxRole,
		a.IsSystem,
		a.IsActive,
		a.OpeningBalance,
		a.CurrentBalance,
		a.CreatedAt,
		a.CreatedBy,
		a.LastUpdatedAt,
		a.LastUpdatedBy,
	}
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	var parentCode sql.NullString
	err := row.Scan(
		&a.AccountID,
		&a.TenantID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.NormalBalance,
		&parentCode,
		&a.Description,
		&a.TaxRole,
		&a.IsSystem,
		&a.IsActive,
		&a.OpeningBalance,
		&a.CurrentBalance,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if parentCode.Valid {
		a.ParentCode = parentCode.String
	}
	return a, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	_, err := r.Pool.Exec(ctx, insertAccountQuery, accountInsertArgs(account)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account code %s already exists in tenant", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// SaveAccounts inserts a batch of accounts atomically, used for template
// seeding.
func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, account := range accounts {
			batch.Queue(insertAccountQuery, accountInsertArgs(account)...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: duplicate account code in batch", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to save account batch: %w", err)
		}
		return nil
	})
}

// FindAccountByID retrieves an account by its ID within the tenant.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &account, nil
}

// FindAccountByCode retrieves an account by its code within the tenant.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves the found accounts keyed by ID; absent IDs are
// simply missing from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// ListAccounts returns every account of the tenant ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's mutable fields. Balances are not
// written here; only the journal engine mutates them.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $3,
		    parent_code = $4,
		    description = $5,
		    tax_role = $6,
		    is_active = $7,
		    last_updated_at = $8,
		    last_updated_by = $9
		WHERE tenant_id = $1 AND account_id = $2;
	`
	var parentCode sql.NullString
	if account.ParentCode != "" {
		parentCode = sql.NullString{String: account.ParentCode, Valid: true}
	}
	cmdTag, err := r.Pool.Exec(ctx, query,
		account.TenantID,
		account.AccountID,
		account.Name,
		parentCode,
		account.Description,
		account.TaxRole,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + account.AccountID + " not found for update")
	}
	return nil
}

// DeleteAccount removes an account. The service layer guards against
// deleting system accounts or accounts with journal lines.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE tenant_id = $1 AND account_id = $2;`, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found for delete")
	}
	return nil
}

// HasJournalLines reports whether any journal line references the account.
func (r *PgxAccountRepository) HasJournalLines(ctx context.Context, tenantID, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM journal_lines l
			JOIN journal_entries e ON l.entry_id = e.entry_id
			WHERE e.tenant_id = $1 AND l.account_id = $2
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check journal lines for account %s: %w", accountID, err)
	}
	return exists, nil
}
