package bootstrap

import (
	"context"
	"fmt"

	"coinprices-service/internal/config"
	"coinprices-service/internal/infrastructure/worker"

	"go.uber.org/zap"
)

type WorkerApp func(ctx context.Context) error

// InitWorkerApp builds the scheduled runner used by cmd/worker.
func InitWorkerApp(ctx context.Context, cfg config.Config, log *zap.Logger) (WorkerApp, func(), error) {
	svc, cleanup, err := BuildSnapshotService(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, fmt.Errorf("init snapshot service: %w", err)
	}
	w, err := worker.NewCronWorker(svc, cfg.RunCron, cfg.RunOnStart, log)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("init cron worker: %w", err)
	}
	runner := func(ctx context.Context) error {
		w.Start(ctx)
		return nil
	}
	return runner, cleanup, nil
}
