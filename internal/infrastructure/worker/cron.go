package worker

import (
	"context"
	"fmt"
	"time"

	"coinprices-service/internal/application"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var _ application.Worker = (*CronWorker)(nil)

// Runner performs one snapshot run. *application.SnapshotService satisfies it.
type Runner interface {
	Run(ctx context.Context) (application.RunResult, error)
}

// CronWorker triggers runs on a six-field (seconds first) UTC schedule.
// A tick that fires while a run is still going is skipped.
type CronWorker struct {
	runner     Runner
	spec       string
	runOnStart bool
	log        *zap.Logger
	cron       *cron.Cron
}

func NewCronWorker(runner Runner, spec string, runOnStart bool, log *zap.Logger) (*CronWorker, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &CronWorker{runner: runner, spec: spec, runOnStart: runOnStart, log: log, cron: c}, nil
}

// Start blocks until ctx is done, then waits for an in-flight run to finish.
func (w *CronWorker) Start(ctx context.Context) {
	log := w.log.With(zap.String("worker", "cron"), zap.String("schedule", w.spec))
	if _, err := w.cron.AddFunc(w.spec, func() { w.runOnce(ctx) }); err != nil {
		log.Error("cron_worker.bad_schedule", zap.Error(err))
		return
	}
	if w.runOnStart {
		w.runOnce(ctx)
	}
	w.cron.Start()
	log.Info("cron_worker.start")

	<-ctx.Done()
	<-w.cron.Stop().Done()
	log.Info("cron_worker.stop")
}

// Validate checks a schedule string without starting anything.
func Validate(spec string) error {
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

func (w *CronWorker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("cron_worker.panic", zap.Any("r", r))
		}
	}()
	start := time.Now()
	res, err := w.runner.Run(ctx)
	if err != nil {
		w.log.Error("cron_worker.run_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	w.log.Info("cron_worker.run_done",
		zap.String("run_id", res.RunID),
		zap.String("path", res.Path),
		zap.Int("errors", len(res.Snapshot.Errors)),
		zap.Duration("duration", time.Since(start)),
	)
}
