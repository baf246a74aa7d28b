package bootstrap

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhold/GuildShop_Go/internal/outbox"
	"github.com/emberhold/GuildShop_Go/internal/server"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server         *server.Server
	Dispatcher     *outbox.Dispatcher
	DiscordSession *discordgo.Session
	DBPool         *pgxpool.Pool
}

// GracefulShutdown stops the application in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Outbox dispatcher (drain queued role deliveries, then one final sweep)
// 3. Discord session
// 4. Database pool
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	if components.Dispatcher != nil {
		components.Dispatcher.Stop(ctx)
		// Final synchronous sweep so role changes enqueued by the last
		// requests are not stranded until next startup.
		if err := components.Dispatcher.DispatchOnce(ctx); err != nil {
			slog.Error("Final outbox sweep failed", "error", err)
		}
		slog.Info(LogMsgOutboxDispatcherStopped)
	}

	if components.DiscordSession != nil {
		if err := components.DiscordSession.Close(); err != nil {
			slog.Error("Discord session close failed", "error", err)
		} else {
			slog.Info(LogMsgDiscordSessionClosed)
		}
	}

	if components.DBPool != nil {
		components.DBPool.Close()
	}

	slog.Info(LogMsgServerStopped)
}
