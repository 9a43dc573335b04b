package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/device-pass-manager/internal/app/securityfeed"
	"github.com/magabrotheeeer/device-pass-manager/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting security feed", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := securityfeed.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize security feed app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("security feed app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("security feed app stopped gracefully")
}
