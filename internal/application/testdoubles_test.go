package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"coinprices-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeIDGen struct{ id string }

func (f fakeIDGen) NewID() string { return f.id }

type fakeAdapter struct {
	name   string
	quotes []domain.Quote
	err    error
	panic  any
	delay  time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]domain.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.panic != nil {
		panic(f.panic)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

type fakeStore struct {
	prepareErr error
	saveErr    error
	saved      []domain.Snapshot
	byDate     map[string]domain.Snapshot
}

func (f *fakeStore) Prepare(context.Context) error { return f.prepareErr }

func (f *fakeStore) Save(_ context.Context, s domain.Snapshot) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, s)
	if f.byDate == nil {
		f.byDate = map[string]domain.Snapshot{}
	}
	f.byDate[s.Date] = s
	return "data/" + s.Date + ".json", nil
}

func (f *fakeStore) Load(_ context.Context, date string) (domain.Snapshot, error) {
	s, ok := f.byDate[date]
	if !ok {
		return domain.Snapshot{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) Latest(ctx context.Context) (domain.Snapshot, error) {
	dates, _ := f.Dates(ctx)
	if len(dates) == 0 {
		return domain.Snapshot{}, ErrNotFound
	}
	return f.byDate[dates[0]], nil
}

func (f *fakeStore) Dates(context.Context) ([]string, error) {
	var out []string
	for d := range f.byDate {
		out = append(out, d)
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j] > out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

type fakeHistory struct {
	err       error
	runs      map[string]domain.Snapshot
	rows      map[string][]domain.QuoteHistory
	lastLimit int
}

func (f *fakeHistory) AppendSnapshot(_ context.Context, runID string, s domain.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	if f.runs == nil {
		f.runs = map[string]domain.Snapshot{}
	}
	f.runs[runID] = s
	return nil
}

func (f *fakeHistory) ListQuotes(_ context.Context, slug string, limit int) ([]domain.QuoteHistory, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	rows := f.rows[slug]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeHistory) Ping(context.Context) error { return f.err }

type fakeCache struct {
	snap *domain.Snapshot
	err  error
}

func (f *fakeCache) Put(_ context.Context, s domain.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.snap = &s
	return nil
}

func (f *fakeCache) Get(context.Context) (domain.Snapshot, error) {
	if f.err != nil {
		return domain.Snapshot{}, f.err
	}
	if f.snap == nil {
		return domain.Snapshot{}, ErrNotFound
	}
	return *f.snap, nil
}

type fakeLock struct {
	held     map[string]bool
	err      error
	released []string
}

func (f *fakeLock) TryAcquire(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLock) Release(_ context.Context, key string) error {
	delete(f.held, key)
	f.released = append(f.released, key)
	return nil
}

var errBoom = errors.New("boom")

func btcQuote(raw string, price float64, source string) domain.Quote {
	return domain.Quote{
		Slug: "bitcoin", Symbol: "BTC", Name: "Bitcoin",
		Source: source, Raw: raw, Price: price, Currency: "USD",
		URL: "https://example.com",
	}
}
