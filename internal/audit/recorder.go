// Package audit persists the transaction trail for purchases and case
// rolls. Audit writes are best-effort: a failed audit insert is logged and
// counted but never fails or rolls back the business transaction it
// describes.
package audit

import (
	"context"
	"time"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Recorder records audit entries for economy operations
type Recorder interface {
	RecordPurchase(ctx context.Context, record domain.PurchaseAuditRecord)
	RecordRoll(ctx context.Context, record domain.RollAuditRecord)
}

type recorder struct {
	repo repository.Audit
	now  func() time.Time
}

// NewRecorder creates an audit recorder backed by the given repository
func NewRecorder(repo repository.Audit) Recorder {
	return &recorder{repo: repo, now: time.Now}
}

func (r *recorder) RecordPurchase(ctx context.Context, record domain.PurchaseAuditRecord) {
	log := logger.FromContext(ctx)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	if err := r.repo.InsertPurchaseAudit(ctx, &record); err != nil {
		log.Error(LogMsgPurchaseAuditFailed,
			"error", err,
			"userID", record.UserID,
			"itemID", record.CatalogItemID,
			"outcome", record.Outcome)
	}
}

func (r *recorder) RecordRoll(ctx context.Context, record domain.RollAuditRecord) {
	log := logger.FromContext(ctx)
	if record.RolledAt.IsZero() {
		record.RolledAt = r.now()
	}
	if record.StatisticalHash == "" {
		record.StatisticalHash = StatisticalHash(&record)
	}
	if err := r.repo.InsertRollAudit(ctx, &record); err != nil {
		log.Error(LogMsgRollAuditFailed,
			"error", err,
			"userID", record.UserID,
			"caseItemID", record.CaseItemID)
	}
}
