package services

import (
	"context"

	"github.com/dEvAshirvad/finager-backend/internal/core/domain"
)

// InventoryAdjuster is the outbound port to the inventory collaborator.
// Posting a sales/purchase entry triggers a stock adjustment; failures are
// reported to the caller but never roll back the journal posting, so
// ledger/inventory consistency is eventual.
type InventoryAdjuster interface {
	AdjustStock(ctx context.Context, tenantID string, adjustment domain.StockAdjustment) error
}

// EventDispatcher is the outbound port to the business-event template
// dispatcher. A named event code resolves to a per-tenant line-rule
// template that ultimately calls back into the journal engine's create
// operation; this core guarantees correctness only of what it receives.
type EventDispatcher interface {
	Dispatch(ctx context.Context, tenantID, eventCode string, payload map[string]any) error
}
