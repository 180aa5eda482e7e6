package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Abrar090909/webhook-repo/internal/config"
	"github.com/Abrar090909/webhook-repo/internal/core/storage/postgres"
	"github.com/Abrar090909/webhook-repo/internal/ingestion"
	"github.com/Abrar090909/webhook-repo/internal/query"
	"github.com/Abrar090909/webhook-repo/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Database.DSN == "" {
		slog.Warn("database.dsn not configured; storage endpoints will fail until it is set")
	}

	// The adapter connects lazily: boot never blocks on a cold backend.
	store := postgres.NewAdapter(postgres.Options{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		OpTimeout:    cfg.Database.OpTimeoutDuration(),
		AutoMigrate:  cfg.Database.AutoMigrate,
	})
	defer store.Close()

	ingestionSvc := ingestion.NewService(store, cfg.Server.MaxBodySizeMB)
	querySvc := query.NewService(store)

	srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Warm the storage connection in the background so the first webhook
	// usually finds it ready; failure here is fine, operations retry.
	g.Go(func() error {
		warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := store.Ping(warmCtx); err != nil {
			slog.Warn("storage warm-up failed; will retry on first request", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		return srv.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
}
