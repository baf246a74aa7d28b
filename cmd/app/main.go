package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberhold/GuildShop_Go/internal/bootstrap"
	"github.com/emberhold/GuildShop_Go/internal/config"
	"github.com/emberhold/GuildShop_Go/internal/database"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/handler"
	"github.com/emberhold/GuildShop_Go/internal/server"
)

const (
	shutdownTimeout = 10 * time.Second

	dbMaxConns   = 10
	dbMaxIdle    = 5 * time.Minute
	dbMaxLife    = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Logger setup failed", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if err := run(cfg); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	connString := cfg.GetDBConnString()

	if err := database.Migrate(connString); err != nil {
		return err
	}

	dbPool, err := database.NewPool(context.Background(), connString, database.PoolOptions{
		MaxConns:    dbMaxConns,
		MaxIdleTime: dbMaxIdle,
		MaxLifetime: dbMaxLife,
	})
	if err != nil {
		return err
	}

	eventBus := event.NewMemoryBus()
	repos := bootstrap.InitializeRepositories(dbPool)
	services := bootstrap.InitializeServices(cfg, repos, eventBus)

	session, dispatcher, err := bootstrap.InitializeRoleDispatcher(cfg, repos)
	if err != nil {
		return err
	}
	if err := session.Open(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)

	handler.InitValidator()

	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, dbPool,
		services.Shop, services.Cases, services.Equipment, services.Admin, services.Catalog)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:         srv,
		Dispatcher:     dispatcher,
		DiscordSession: session,
		DBPool:         dbPool,
	})

	return nil
}
