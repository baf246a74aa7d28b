package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// OutboxRepository implements repository.Outbox for PostgreSQL
type OutboxRepository struct {
	db *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository
func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.RoleChange, error) {
	rows, err := r.db.Query(ctx, `
		SELECT change_id, user_id, external_role_id, kind, status, attempts, last_error, created_at, delivered_at
		FROM role_outbox WHERE status = $1 ORDER BY change_id LIMIT $2`,
		domain.RoleChangePending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending role changes: %w", err)
	}
	defer rows.Close()

	var changes []domain.RoleChange
	for rows.Next() {
		var rc domain.RoleChange
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.ExternalRoleID, &rc.Kind, &rc.Status,
			&rc.Attempts, &rc.LastError, &rc.CreatedAt, &rc.DeliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan role change: %w", err)
		}
		changes = append(changes, rc)
	}
	return changes, rows.Err()
}

func (r *OutboxRepository) MarkDelivered(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE role_outbox SET status = $2, delivered_at = now() WHERE change_id = $1`,
		id, domain.RoleChangeDelivered)
	if err != nil {
		return fmt.Errorf("failed to mark role change delivered: %w", err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE role_outbox SET attempts = attempts + 1, last_error = $2 WHERE change_id = $1`,
		id, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark role change failed: %w", err)
	}
	return nil
}

func (r *OutboxRepository) MarkAbandoned(ctx context.Context, id int64, lastError string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE role_outbox SET status = $2, last_error = $3 WHERE change_id = $1`,
		id, domain.RoleChangeAbandoned, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark role change abandoned: %w", err)
	}
	return nil
}
