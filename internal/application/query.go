package application

import (
	"context"
	"errors"
	"fmt"

	"coinprices-service/internal/domain"
)

// QueryService is the read side over persisted snapshots.
type QueryService struct {
	store    SnapshotStore
	cache    LatestCache
	history  HistoryRepo
	registry *domain.Registry
}

func NewQueryService(store SnapshotStore, cache LatestCache, history HistoryRepo, registry *domain.Registry) *QueryService {
	if cache == nil {
		cache = NoopCache{}
	}
	if history == nil {
		history = NoopHistory{}
	}
	if registry == nil {
		registry = domain.Coins
	}
	return &QueryService{store: store, cache: cache, history: history, registry: registry}
}

func (q *QueryService) Assets() []domain.Asset { return q.registry.All() }

func (q *QueryService) Dates(ctx context.Context) ([]string, error) {
	return q.store.Dates(ctx)
}

// Latest prefers the cache and falls back to the store on any cache miss or error.
func (q *QueryService) Latest(ctx context.Context) (domain.Snapshot, error) {
	if s, err := q.cache.Get(ctx); err == nil {
		return s, nil
	}
	return q.store.Latest(ctx)
}

func (q *QueryService) ByDate(ctx context.Context, date string) (domain.Snapshot, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return q.store.Load(ctx, date)
}

func (q *QueryService) Quotes(ctx context.Context, date string, f domain.QuoteFilter) ([]domain.Quote, error) {
	var (
		s   domain.Snapshot
		err error
	)
	if date == "latest" {
		s, err = q.Latest(ctx)
	} else {
		s, err = q.ByDate(ctx, date)
	}
	if err != nil {
		return nil, err
	}
	return s.FilterQuotes(f), nil
}

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// History returns the newest stored quotes for slug. limit <= 0 means the
// default page; larger values are capped.
func (q *QueryService) History(ctx context.Context, slug string, limit int) ([]domain.QuoteHistory, error) {
	if _, ok := q.registry.BySlug(slug); !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrNotFound, domain.ErrUnknownAsset, slug)
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	rows, err := q.history.ListQuotes(ctx, slug, limit)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

// Ready reports whether the configured history backend is reachable.
func (q *QueryService) Ready(ctx context.Context) error {
	return q.history.Ping(ctx)
}
