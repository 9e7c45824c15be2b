package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dEvAshirvad/finager-backend/internal/apperrors"
	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
)

type PgxReportConfigRepository struct {
	BaseRepository
}

// newPgxReportConfigRepository creates a new repository for per-tenant
// report configurations.
func newPgxReportConfigRepository(pool *pgxpool.Pool) portsrepo.ReportConfigRepository {
	return &PgxReportConfigRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportConfigRepository implements portsrepo.ReportConfigRepository
var _ portsrepo.ReportConfigRepository = (*PgxReportConfigRepository)(nil)

// GetConfig returns the tenant's stored configuration for the report type.
func (r *PgxReportConfigRepository) GetConfig(ctx context.Context, tenantID string, reportType domain.ReportType) (*domain.ReportConfig, error) {
	query := `SELECT sections FROM report_configs WHERE tenant_id = $1 AND report_type = $2;`
	var raw []byte
	err := r.Pool.QueryRow(ctx, query, tenantID, reportType).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find report config %s for tenant %s: %w", reportType, tenantID, err)
	}

	config := &domain.ReportConfig{TenantID: tenantID, ReportType: reportType}
	if err := config.UnmarshalSections(raw); err != nil {
		return nil, fmt.Errorf("failed to decode report config %s for tenant %s: %w", reportType, tenantID, err)
	}
	return config, nil
}

// SaveConfig upserts the tenant's configuration.
func (r *PgxReportConfigRepository) SaveConfig(ctx context.Context, config domain.ReportConfig) error {
	raw, err := config.MarshalSections()
	if err != nil {
		return fmt.Errorf("failed to encode report config %s: %w", config.ReportType, err)
	}

	query := `
		INSERT INTO report_configs (tenant_id, report_type, sections, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, report_type)
		DO UPDATE SET sections = EXCLUDED.sections, updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.Pool.Exec(ctx, query, config.TenantID, config.ReportType, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save report config %s for tenant %s: %w", config.ReportType, config.TenantID, err)
	}
	return nil
}
