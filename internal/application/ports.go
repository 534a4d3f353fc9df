package application

import (
	"context"

	"coinprices-service/internal/domain"
)

// SourceAdapter fetches every quote one source has for the registry.
// Fetch returns either the complete list or an error, never both.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Quote, error)
}

// SnapshotStore is the durable, authoritative snapshot storage.
type SnapshotStore interface {
	// Prepare makes sure snapshots can be written, before any source is fetched.
	Prepare(ctx context.Context) error
	// Save writes the snapshot for its date, replacing any earlier one, and
	// returns where it was written.
	Save(ctx context.Context, s domain.Snapshot) (string, error)
	Load(ctx context.Context, date string) (domain.Snapshot, error)
	Latest(ctx context.Context) (domain.Snapshot, error)
	// Dates lists stored dates, newest first.
	Dates(ctx context.Context) ([]string, error)
}

// HistoryRepo keeps every run's quotes for later queries.
type HistoryRepo interface {
	AppendSnapshot(ctx context.Context, runID string, s domain.Snapshot) error
	ListQuotes(ctx context.Context, slug string, limit int) ([]domain.QuoteHistory, error)
	Ping(ctx context.Context) error
}

// LatestCache holds the most recent snapshot for the read API.
type LatestCache interface {
	Put(ctx context.Context, s domain.Snapshot) error
	Get(ctx context.Context) (domain.Snapshot, error)
}

// RunLock keeps two runs for the same day from overlapping.
type RunLock interface {
	// TryAcquire returns true if key was free and is now held.
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
