package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	PrintVersion()

	cfg := loadConfig()
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	reg := initRegistry(cfg, logger)
	mux := registerRoutes(reg, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := startServer(ctx, cfg, mux, logger); err != nil {
		logger.Error("Server down", zap.Error(err))
		os.Exit(1)
	}
}
