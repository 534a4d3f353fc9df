package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"

	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)

func sampleSnapshot() domain.Snapshot {
	s := domain.NewSnapshot(day)
	s.Sources = []string{"alpha", "beta"}
	s.Quotes = []domain.Quote{{
		Currency: "EUR", Name: "Bitcoin", Price: 42000.5, Raw: "€42.000,50",
		Slug: "bitcoin", Source: "alpha", Symbol: "BTC", URL: "https://example.com/?a=1&b=2",
	}}
	s.Errors = []domain.FetchError{{Source: "beta", Message: "timeout"}}
	return s
}

func TestPathFor(t *testing.T) {
	t.Parallel()
	require.Equal(t, filepath.Join("data", "2024-01-02.json"), PathFor("data", day))
	// non-UTC input is converted
	loc := time.FixedZone("UTC+3", 3*3600)
	require.Equal(t, filepath.Join("data", "2024-01-02.json"), PathFor("data", time.Date(2024, 1, 3, 1, 0, 0, 0, loc)))
}

func TestEncode_SortedIndentedNewline(t *testing.T) {
	t.Parallel()

	b, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	out := string(b)

	require.True(t, strings.HasSuffix(out, "}\n"))
	require.True(t, strings.HasPrefix(out, "{\n  \"date\": \"2024-01-02\",\n  \"errors\": ["))
	require.Contains(t, out, "€42.000,50")
	require.Contains(t, out, "a=1&b=2")

	order := []string{`"date"`, `"errors"`, `"fetched_at"`, `"quotes"`, `"sources"`}
	last := -1
	for _, k := range order {
		i := strings.Index(out, k)
		require.Greater(t, i, last, k)
		last = i
	}
	quotes := out[strings.Index(out, `"quotes"`):]
	qorder := []string{`"currency"`, `"name"`, `"price"`, `"raw"`, `"slug"`, `"source"`, `"symbol"`, `"url"`}
	last = -1
	for _, k := range qorder {
		i := strings.Index(quotes, k)
		require.Greater(t, i, last, k)
		last = i
	}
	require.Less(t, strings.Index(out, `"error": "timeout"`), strings.Index(out, `"source": "beta"`))
}

func TestEncode_EmptyListsNotNull(t *testing.T) {
	t.Parallel()
	b, err := Encode(domain.Snapshot{Date: "2024-01-02"})
	require.NoError(t, err)
	require.Contains(t, string(b), `"quotes": []`)
	require.Contains(t, string(b), `"errors": []`)
	require.NotContains(t, string(b), "null")
}

func TestEncodeDecode_Idempotent(t *testing.T) {
	t.Parallel()

	first, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	decoded, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(decoded)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestStore_SaveLoadOverwrite(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	st := New(dir)
	ctx := context.Background()
	require.NoError(t, st.Prepare(ctx))

	path, err := st.Save(ctx, sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "2024-01-02.json"), path)

	again := sampleSnapshot()
	again.Errors = []domain.FetchError{}
	_, err = st.Save(ctx, again)
	require.NoError(t, err)

	got, err := st.Load(ctx, "2024-01-02")
	require.NoError(t, err)
	require.Empty(t, got.Errors)
	require.Len(t, got.Quotes, 1)
	require.True(t, got.FetchedAt.Equal(day))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_LoadErrors(t *testing.T) {
	t.Parallel()

	st := New(t.TempDir())
	_, err := st.Load(context.Background(), "2024-01-05")
	require.ErrorIs(t, err, application.ErrNotFound)

	_, err = st.Load(context.Background(), "../etc/passwd")
	require.ErrorIs(t, err, application.ErrBadRequest)
}

func TestStore_DatesAndLatest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st := New(dir)
	ctx := context.Background()

	_, err := st.Latest(ctx)
	require.ErrorIs(t, err, application.ErrNotFound)

	for _, d := range []time.Time{day, day.AddDate(0, 0, -3), day.AddDate(0, 0, 1)} {
		_, err := st.Save(ctx, domain.NewSnapshot(d))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-13-40.json"), []byte("{}"), 0o644))

	dates, err := st.Dates(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-03", "2024-01-02", "2023-12-30"}, dates)

	latest, err := st.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "2024-01-03", latest.Date)
}

func TestStore_PrepareFailsWhenDirIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err := New(filepath.Join(file, "data")).Prepare(context.Background())
	require.Error(t, err)
}

func TestStore_DatesMissingDir(t *testing.T) {
	t.Parallel()
	dates, err := New(filepath.Join(t.TempDir(), "none")).Dates(context.Background())
	require.NoError(t, err)
	require.Empty(t, dates)
}
