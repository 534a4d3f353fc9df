package main

import (
	"context"
	"os/signal"
	"syscall"

	"coinprices-service/internal/bootstrap"
	"coinprices-service/internal/config"
	"coinprices-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config.load", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, cleanup, err := bootstrap.InitWorkerApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("init worker", zap.Error(err))
	}
	defer cleanup()

	log.Info("worker.started", zap.String("cron", cfg.RunCron), zap.Bool("run_on_start", cfg.RunOnStart))
	if err := run(ctx); err != nil {
		log.Error("worker.exited", zap.Error(err))
		return
	}
	log.Info("worker.stopped")
}
