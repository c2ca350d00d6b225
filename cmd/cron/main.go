package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/overpass-harvester/internal/app"
	"github.com/samvad-hq/overpass-harvester/internal/config"
	"github.com/samvad-hq/overpass-harvester/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cron failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("cron starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cron, err := app.NewCron(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize cron", "error", err)
		return err
	}

	if err := cron.Run(ctx); err != nil {
		return fmt.Errorf("cron run: %w", err)
	}

	return nil
}
