package application

import (
	"context"
	"fmt"

	"coinprices-service/internal/domain"

	"go.uber.org/zap"
)

// SnapshotService performs one complete run: fetch, persist, publish.
type SnapshotService struct {
	adapters   []SourceAdapter
	aggregator *Aggregator
	store      SnapshotStore
	history    HistoryRepo
	cache      LatestCache
	lock       RunLock
	clock      Clock
	idgen      IDGen
	log        *zap.Logger
}

type Option func(*SnapshotService)

func WithClock(c Clock) Option             { return func(s *SnapshotService) { s.clock = c } }
func WithIDGen(g IDGen) Option             { return func(s *SnapshotService) { s.idgen = g } }
func WithHistory(h HistoryRepo) Option     { return func(s *SnapshotService) { s.history = h } }
func WithLatestCache(c LatestCache) Option { return func(s *SnapshotService) { s.cache = c } }
func WithRunLock(l RunLock) Option         { return func(s *SnapshotService) { s.lock = l } }
func WithLogger(l *zap.Logger) Option      { return func(s *SnapshotService) { s.log = l } }

func NewSnapshotService(adapters []SourceAdapter, agg *Aggregator, store SnapshotStore, opts ...Option) *SnapshotService {
	s := &SnapshotService{
		adapters:   adapters,
		aggregator: agg,
		store:      store,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.aggregator == nil {
		s.aggregator = NewAggregator()
	}
	if s.history == nil {
		s.history = NoopHistory{}
	}
	if s.cache == nil {
		s.cache = NoopCache{}
	}
	if s.lock == nil {
		s.lock = NoopLock{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.idgen == nil {
		s.idgen = defaultIDGen{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// RunResult describes a completed run.
type RunResult struct {
	RunID    string
	Path     string
	Snapshot domain.Snapshot
}

// ExitCode is the process status for the run: 1 if any source failed.
func (r RunResult) ExitCode() int { return r.Snapshot.ExitCode() }

// SourceNames lists the configured adapters in run order.
func (s *SnapshotService) SourceNames() []string {
	out := make([]string, len(s.adapters))
	for i, a := range s.adapters {
		out[i] = a.Name()
	}
	return out
}

// Run fetches every source and writes the snapshot. An error means nothing
// was written; a snapshot with source failures is still a successful run.
func (s *SnapshotService) Run(ctx context.Context) (RunResult, error) {
	runID := s.idgen.NewID()
	log := s.log.With(zap.String("run_id", runID))

	if err := s.store.Prepare(ctx); err != nil {
		log.Error("snapshot.prepare_failed", zap.Error(err))
		return RunResult{}, fmt.Errorf("%w: prepare: %v", ErrStorage, err)
	}

	now := s.clock.Now().UTC()
	lockKey := "run:" + now.Format(domain.DateLayout)
	ok, err := s.lock.TryAcquire(ctx, lockKey)
	switch {
	case err != nil:
		// lock store down: run unlocked
		log.Warn("snapshot.lock_unavailable", zap.String("key", lockKey), zap.Error(err))
	case !ok:
		log.Warn("snapshot.run_in_progress", zap.String("key", lockKey))
		return RunResult{}, fmt.Errorf("%w: run %s already in progress", ErrConflict, lockKey)
	default:
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				log.Warn("snapshot.unlock_failed", zap.Error(err))
			}
		}()
	}

	log.Info("snapshot.run_started", zap.Strings("sources", s.SourceNames()))
	snap := s.aggregator.RunAt(ctx, now, s.adapters)

	path, err := s.store.Save(ctx, snap)
	if err != nil {
		log.Error("snapshot.save_failed", zap.Error(err))
		return RunResult{}, fmt.Errorf("%w: save: %v", ErrStorage, err)
	}
	log.Info("snapshot.saved",
		zap.String("path", path),
		zap.String("date", snap.Date),
		zap.Int("quotes", len(snap.Quotes)),
		zap.Int("errors", len(snap.Errors)),
	)

	s.publish(ctx, log, runID, snap)

	return RunResult{RunID: runID, Path: path, Snapshot: snap}, nil
}

// publish feeds the optional sinks. The file is already authoritative, so
// failures here are only logged.
func (s *SnapshotService) publish(ctx context.Context, log *zap.Logger, runID string, snap domain.Snapshot) {
	if err := s.history.AppendSnapshot(ctx, runID, snap); err != nil {
		log.Warn("snapshot.history_failed", zap.Error(err))
	}
	if err := s.cache.Put(ctx, snap); err != nil {
		log.Warn("snapshot.cache_failed", zap.Error(err))
	}
}

