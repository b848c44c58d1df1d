package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foodies-api/cmd/config"
	migration "foodies-api/cmd/database/migrate"
	"foodies-api/internal/supervisor"
	"foodies-api/internal/utils"
	"foodies-api/pkg/relation"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "foodies-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := utils.Get()

	logger, err := utils.NewLogger(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.ConnectDB()
	if err != nil {
		return err
	}
	if err := migration.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	app, reconciler, err := config.NewApp(db, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPService(app, ":"+cfg.AppPort, 0))
	tree.AddBackgroundService(relation.NewReconcilerService(reconciler, cfg.ReconcileInterval, logger))

	logger.Info("starting foodies-api", zap.String("port", cfg.AppPort), zap.Bool("ledger_transactional", *cfg.LedgerTransactional))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("foodies-api stopped")
	return nil
}
