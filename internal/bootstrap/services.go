package bootstrap

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/emberhold/GuildShop_Go/internal/admin"
	"github.com/emberhold/GuildShop_Go/internal/audit"
	"github.com/emberhold/GuildShop_Go/internal/cases"
	"github.com/emberhold/GuildShop_Go/internal/catalog"
	"github.com/emberhold/GuildShop_Go/internal/concurrency"
	"github.com/emberhold/GuildShop_Go/internal/config"
	"github.com/emberhold/GuildShop_Go/internal/equipment"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/outbox"
	"github.com/emberhold/GuildShop_Go/internal/roles"
	"github.com/emberhold/GuildShop_Go/internal/shop"
)

// Services holds the domain services wired for the application.
type Services struct {
	Catalog   catalog.Service
	Shop      shop.Service
	Cases     cases.Service
	Equipment equipment.Service
	Admin     admin.Service
}

// InitializeServices wires the domain services over the repositories.
// All services share one event bus and one per-user lock manager so
// concurrent operations on the same user serialize in-process.
func InitializeServices(cfg *config.Config, repos *Repositories, eventBus event.Bus) *Services {
	ledger := inventory.NewLedger(repos.Economy)
	auditor := audit.NewRecorder(repos.Audit)
	locks := concurrency.NewLockManager()

	catalogService := catalog.NewService(repos.Economy, cfg.FeaturedSlots, cfg.DailySlots)

	return &Services{
		Catalog:   catalogService,
		Shop:      shop.NewService(repos.Economy, ledger, catalogService, auditor, eventBus),
		Cases:     cases.NewService(repos.Economy, ledger, auditor, eventBus, locks),
		Equipment: equipment.NewService(repos.Economy, ledger, eventBus, locks),
		Admin:     admin.NewService(repos.Economy, eventBus),
	}
}

// InitializeRoleDispatcher opens the Discord session and starts the role
// side-effect dispatcher over the outbox. A missing token is an error:
// equipment and deletion flows enqueue role changes that would otherwise
// accumulate forever.
func InitializeRoleDispatcher(cfg *config.Config, repos *Repositories) (*discordgo.Session, *outbox.Dispatcher, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedDiscordSession, err)
	}

	manager := roles.NewDiscordManager(session, cfg.DiscordGuildID)

	dispatcher := outbox.NewDispatcher(repos.Outbox, repos.Economy, manager, outbox.Options{
		Interval:   cfg.OutboxInterval,
		BatchSize:  cfg.OutboxBatchSize,
		MaxRetries: cfg.OutboxMaxRetries,
	})

	return session, dispatcher, nil
}
