package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhold/GuildShop_Go/internal/database/postgres"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Economy repository.Economy
	Audit   repository.Audit
	Outbox  repository.Outbox
}

// InitializeRepositories creates all repository implementations over the
// shared connection pool.
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Economy: postgres.NewEconomyRepository(dbPool),
		Audit:   postgres.NewAuditRepository(dbPool),
		Outbox:  postgres.NewOutboxRepository(dbPool),
	}
}
