package main

import (
	"context"
	"log/slog"
	"os"

	"wayfare/cmd/internal/app"
)

func main() {
	cfg := app.LoadConfig()
	log := app.NewLogger(cfg)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "app.startup_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "app.run_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
