package application

import (
	"context"
	"fmt"
	"time"

	"coinprices-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs source adapters and assembles their results into a Snapshot.
//
// Adapters run one at a time in the given order unless parallelism is raised.
// Either way the snapshot lists sources in adapter order, and each adapter
// contributes all of its quotes or exactly one FetchError.
type Aggregator struct {
	clock       Clock
	parallelism int
	log         *zap.Logger
}

type AggregatorOption func(*Aggregator)

func WithAggregatorClock(c Clock) AggregatorOption { return func(a *Aggregator) { a.clock = c } }

// WithParallelism caps how many adapters fetch at once. Values below 2 keep
// the sequential behaviour.
func WithParallelism(n int) AggregatorOption { return func(a *Aggregator) { a.parallelism = n } }

func WithAggregatorLogger(l *zap.Logger) AggregatorOption {
	return func(a *Aggregator) { a.log = l }
}

func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{parallelism: 1}
	for _, opt := range opts {
		opt(a)
	}
	if a.clock == nil {
		a.clock = realClock{}
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

type sourceResult struct {
	name   string
	quotes []domain.Quote
	err    *domain.FetchError
}

// Run fetches from every adapter and returns the consolidated snapshot.
// It never fails: source failures are recorded in Snapshot.Errors.
func (a *Aggregator) Run(ctx context.Context, adapters []SourceAdapter) domain.Snapshot {
	return a.RunAt(ctx, a.clock.Now(), adapters)
}

// RunAt is Run with the snapshot dated at now.
func (a *Aggregator) RunAt(ctx context.Context, now time.Time, adapters []SourceAdapter) domain.Snapshot {
	snap := domain.NewSnapshot(now)

	results := make([]sourceResult, len(adapters))
	if a.parallelism < 2 || len(adapters) < 2 {
		for i, ad := range adapters {
			results[i] = a.fetchOne(ctx, ad)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.parallelism)
		for i, ad := range adapters {
			i, ad := i, ad
			g.Go(func() error {
				results[i] = a.fetchOne(ctx, ad)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, r := range results {
		snap.Sources = append(snap.Sources, r.name)
		if r.err != nil {
			snap.Errors = append(snap.Errors, *r.err)
			continue
		}
		snap.Quotes = append(snap.Quotes, r.quotes...)
	}

	a.log.Info("aggregator.done",
		zap.String("date", snap.Date),
		zap.Int("sources", len(snap.Sources)),
		zap.Int("quotes", len(snap.Quotes)),
		zap.Int("errors", len(snap.Errors)),
	)
	return snap
}

func (a *Aggregator) fetchOne(ctx context.Context, ad SourceAdapter) (res sourceResult) {
	name := ad.Name()
	log := a.log.With(zap.String("source", name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Warn("aggregator.source_panic", zap.Any("r", r))
			res = sourceResult{name: name, err: &domain.FetchError{Source: name, Message: fmt.Sprintf("panic: %v", r)}}
		}
	}()

	quotes, err := ad.Fetch(ctx)
	if err != nil {
		log.Warn("aggregator.source_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return sourceResult{name: name, err: &domain.FetchError{Source: name, Message: err.Error()}}
	}

	stamped := make([]domain.Quote, len(quotes))
	for i, q := range quotes {
		stamped[i] = q.WithSource(name)
	}
	log.Info("aggregator.source_done", zap.Int("quotes", len(stamped)), zap.Duration("duration", time.Since(start)))
	return sourceResult{name: name, quotes: stamped}
}
