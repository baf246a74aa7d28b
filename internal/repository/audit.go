package repository

import (
	"context"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// Audit defines the interface for the append-only audit stores. Writes are
// fire-and-forget from the engine's perspective: callers log failures but
// never surface them to users.
type Audit interface {
	InsertPurchaseAudit(ctx context.Context, record *domain.PurchaseAuditRecord) error
	InsertRollAudit(ctx context.Context, record *domain.RollAuditRecord) error
}
