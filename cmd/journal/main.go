// Package main точка входа ядра синхронизации состояния журнала.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/wellbeing-journal/internal/app/journal"
	"github.com/magabrotheeeer/wellbeing-journal/internal/config"
	"github.com/magabrotheeeer/wellbeing-journal/internal/market"
)

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	logger.Info("starting wellbeing-journal", slog.String("env", cfg.Env), slog.String("platform", cfg.Platform))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Мост к магазину покупок привязывается встраивающей платформой
	// через Bind; до привязки операции покупки возвращают ошибку.
	marketplace := market.NewBridge()

	app, err := journal.New(ctx, cfg, logger, marketplace)
	if err != nil {
		logger.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("wellbeing-journal stopped gracefully")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
