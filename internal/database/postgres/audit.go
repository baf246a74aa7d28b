package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// AuditRepository implements repository.Audit for PostgreSQL. Audit tables
// are append-only; nothing in the engine ever updates or deletes a row.
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertPurchaseAudit(ctx context.Context, record *domain.PurchaseAuditRecord) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO purchase_audit (user_id, catalog_item_id, quantity, outcome, failure_reason, credits_before, credits_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING audit_id`,
		record.UserID, record.CatalogItemID, record.Quantity, record.Outcome,
		record.FailureReason, record.CreditsBefore, record.CreditsAfter, record.CreatedAt).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to insert purchase audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) InsertRollAudit(ctx context.Context, record *domain.RollAuditRecord) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO roll_audit (user_id, case_item_id, roll_value, prize_item_id, drop_rate, already_owned, credits_before, credits_after, statistical_hash, rolled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING roll_id`,
		record.UserID, record.CaseItemID, record.RollValue, record.PrizeItemID, record.DropRate,
		record.AlreadyOwned, record.CreditsBefore, record.CreditsAfter, record.StatisticalHash, record.RolledAt).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to insert roll audit: %w", err)
	}
	return nil
}
