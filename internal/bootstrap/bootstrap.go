package bootstrap

import (
	"context"
	"errors"

	"coinprices-service/internal/application"
	"coinprices-service/internal/config"
	"coinprices-service/internal/domain"
	"coinprices-service/internal/infrastructure/filestore"

	"go.uber.org/zap"
)

// chain runs cleanups in reverse order.
func chain(fns ...func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}

// BuildSnapshotService wires sources, the file store and the optional sinks.
func BuildSnapshotService(ctx context.Context, cfg config.Config, log *zap.Logger) (*application.SnapshotService, func(), error) {
	adapters, err := ProvideAdapters(cfg, ProvideHTTPClient(cfg), log)
	if err != nil {
		return nil, func() {}, err
	}
	history, closeHistory, err := ProvideHistory(ctx, log, cfg)
	if err != nil {
		if errors.Is(err, ErrUnknownBackend) || errors.Is(err, ErrMissingDBURL) {
			return nil, func() {}, err
		}
		// run without history
		log.Warn("snapshot.history_unavailable", zap.String("backend", cfg.HistoryBackend), zap.Error(err))
		history, closeHistory = application.NoopHistory{}, func() {}
	}
	sinks, closeSinks, err := ProvideSinks(cfg)
	if err != nil {
		closeHistory()
		return nil, func() {}, err
	}

	agg := application.NewAggregator(
		application.WithParallelism(cfg.Parallelism),
		application.WithAggregatorLogger(log),
	)
	svc := application.NewSnapshotService(adapters, agg, filestore.New(cfg.OutputDir),
		application.WithHistory(history),
		application.WithLatestCache(sinks.Cache),
		application.WithRunLock(sinks.Lock),
		application.WithLogger(log),
	)
	return svc, chain(closeHistory, closeSinks), nil
}

// BuildQueryService wires the read side and a readiness probe over the
// configured backends.
func BuildQueryService(ctx context.Context, cfg config.Config, log *zap.Logger) (*application.QueryService, func(context.Context) error, func(), error) {
	history, closeHistory, err := ProvideHistory(ctx, log, cfg)
	if err != nil {
		return nil, nil, func() {}, err
	}
	sinks, closeSinks, err := ProvideSinks(cfg)
	if err != nil {
		closeHistory()
		return nil, nil, func() {}, err
	}
	store := filestore.New(cfg.OutputDir)
	q := application.NewQueryService(store, sinks.Cache, history, domain.Coins)

	ready := func(ctx context.Context) error {
		var errs []error
		errs = append(errs, q.Ready(ctx))
		if sinks.Ping != nil {
			errs = append(errs, sinks.Ping(ctx))
		}
		return errors.Join(errs...)
	}
	return q, ready, chain(closeHistory, closeSinks), nil
}
