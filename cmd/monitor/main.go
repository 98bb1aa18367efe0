package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"healthmon/internal/app"
	"healthmon/internal/config"
)

func main() {
	cfg := config.Load()
	level := new(slog.LevelVar)
	runID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("run_id", runID)

	p, err := app.SelectProfile(cfg)
	if err != nil {
		logger.Error("load profile failed", "err", err)
		os.Exit(1)
	}
	if p.VerboseLogging {
		level.Set(slog.LevelDebug)
	}
	logger.Info("starting monitor", "env", cfg.Env, "profile", p.Name, "journal", cfg.DBPath)

	a, err := app.New(cfg, p, logger, os.Stdout, clockwork.NewRealClock(), runID)
	if err != nil {
		logger.Error("init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		logger.Error("shutdown with error", "err", err)
		os.Exit(1)
	}
}
