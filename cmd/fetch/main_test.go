package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coinprices-service/internal/infrastructure/filestore"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "none.yaml"))
	t.Setenv("HISTORY_BACKEND", "none")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("SOURCES", "")
	t.Setenv("OUTPUT_DIR", "")
	return dir
}

func TestExecute_WritesSnapshot(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "data")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--output-dir", out, "--sources", "fake"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	path := filestore.PathFor(out, time.Now())
	require.Contains(t, stdout.String(), "Saved prices to "+path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(b), "}\n"))

	snap, err := filestore.Decode(b)
	require.NoError(t, err)
	require.Equal(t, []string{"fake"}, snap.Sources)
	require.Empty(t, snap.Errors)
}

func TestExecute_FatalWhenOutputDirUnwritable(t *testing.T) {
	dir := isolate(t)
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--output-dir", filepath.Join(blocker, "data"), "--sources", "fake"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Empty(t, stdout.String())
}

func TestExecute_UnknownSourceIsFatal(t *testing.T) {
	dir := isolate(t)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--output-dir", dir, "--sources", "nope"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "unknown source")
}

func TestExecute_HistoryBackendDownStillWrites(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HISTORY_BACKEND", "pg")
	t.Setenv("DATABASE_URL", "postgres://u:p@127.0.0.1:1/db?sslmode=disable")
	t.Setenv("DB_WAIT_MS", "200")
	out := filepath.Join(dir, "data")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--output-dir", out, "--sources", "fake"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	_, err := os.Stat(filestore.PathFor(out, time.Now()))
	require.NoError(t, err)
}

func TestExecute_RedisDownStillWrites(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	out := filepath.Join(dir, "data")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--output-dir", out, "--sources", "fake"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	path := filestore.PathFor(out, time.Now())
	require.Contains(t, stdout.String(), "Saved prices to "+path)
	_, err := os.Stat(path)
	require.NoError(t, err)
}
