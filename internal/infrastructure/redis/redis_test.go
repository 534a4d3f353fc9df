package redisstore_test

import (
	"context"
	"testing"
	"time"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"
	redisstore "coinprices-service/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRunLock(t *testing.T) {
	mr, client := newClient(t)
	a := redisstore.NewRunLock(client, time.Hour)
	b := redisstore.NewRunLock(client, time.Hour)
	ctx := context.Background()

	ok, err := a.TryAcquire(ctx, "run:2024-01-02")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, mr.Exists("coinprices:run:2024-01-02"))

	ok, err = b.TryAcquire(ctx, "run:2024-01-02")
	require.NoError(t, err)
	require.False(t, ok)

	// b never held it, so its release must not free a's lock
	require.NoError(t, b.Release(ctx, "run:2024-01-02"))
	require.True(t, mr.Exists("coinprices:run:2024-01-02"))

	require.NoError(t, a.Release(ctx, "run:2024-01-02"))
	require.False(t, mr.Exists("coinprices:run:2024-01-02"))

	ok, err = b.TryAcquire(ctx, "run:2024-01-02")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunLock_Expires(t *testing.T) {
	mr, client := newClient(t)
	l := redisstore.NewRunLock(client, time.Minute)
	ctx := context.Background()

	ok, err := l.TryAcquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = redisstore.NewRunLock(client, time.Minute).TryAcquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLatestCache(t *testing.T) {
	_, client := newClient(t)
	c := redisstore.NewLatestCache(client, time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.ErrorIs(t, err, application.ErrNotFound)

	day := time.Date(2024, 1, 2, 0, 5, 0, 0, time.UTC)
	s := domain.NewSnapshot(day)
	s.Sources = []string{"alpha"}
	s.Quotes = []domain.Quote{{Slug: "bitcoin", Source: "alpha", Price: 1.5, Raw: "$1.50", Currency: "USD"}}
	require.NoError(t, c.Put(ctx, s))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "2024-01-02", got.Date)
	require.Equal(t, s.Quotes, got.Quotes)
	require.True(t, got.FetchedAt.Equal(day))

	// an older snapshot does not replace a newer one
	require.NoError(t, c.Put(ctx, domain.NewSnapshot(day.AddDate(0, 0, -1))))
	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "2024-01-02", got.Date)

	require.NoError(t, redisstore.Ping(ctx, client))
}
