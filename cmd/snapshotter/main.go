// Package main запускает сохранение снимков дашборда по расписанию.
// С флагом -once делает один снимок и завершается.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/church-dashboard/internal/app/snapshotter"
	"github.com/magabrotheeeer/church-dashboard/internal/config"
	"github.com/magabrotheeeer/church-dashboard/internal/lib/sl"
)

func main() {
	once := flag.Bool("once", false, "take a single snapshot and exit")
	flag.Parse()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting snapshotter", slog.String("env", cfg.Env), slog.String("schedule", cfg.SnapshotSchedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := snapshotter.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize snapshotter", sl.Err(err))
		os.Exit(1)
	}

	if *once {
		err = app.RunOnce(ctx)
	} else {
		err = app.Run(ctx)
	}
	if err != nil {
		logger.Error("snapshotter stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("snapshotter stopped gracefully")
}
