package repository

import "context"

import "github.com/emberhold/GuildShop_Go/internal/domain"

// Outbox defines the interface for role side-effect delivery tracking.
// Enqueueing happens inside an EconomyTx; the dispatcher drains pending
// entries outside any business transaction.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]domain.RoleChange, error)
	MarkDelivered(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
	MarkAbandoned(ctx context.Context, id int64, lastError string) error
}
