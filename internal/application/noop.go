package application

import (
	"context"

	"coinprices-service/internal/domain"
)

// NoopHistory discards history; used when HISTORY_BACKEND=none.
type NoopHistory struct{}

func (NoopHistory) AppendSnapshot(context.Context, string, domain.Snapshot) error { return nil }
func (NoopHistory) ListQuotes(context.Context, string, int) ([]domain.QuoteHistory, error) {
	return nil, ErrNotFound
}
func (NoopHistory) Ping(context.Context) error { return nil }

// NoopCache never holds anything.
type NoopCache struct{}

func (NoopCache) Put(context.Context, domain.Snapshot) error { return nil }
func (NoopCache) Get(context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{}, ErrNotFound
}

// NoopLock always succeeds; useful for tests/dev when Redis is disabled.
type NoopLock struct{}

func (NoopLock) TryAcquire(context.Context, string) (bool, error) { return true, nil }
func (NoopLock) Release(context.Context, string) error            { return nil }
