package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"
)

var snapshotFileRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.json$`)

// Store keeps one snapshot file per UTC day under Dir.
type Store struct {
	Dir string
}

func New(dir string) *Store { return &Store{Dir: dir} }

// PathFor returns <dir>/<YYYY-MM-DD>.json for the UTC day of t.
func PathFor(dir string, t time.Time) string {
	return filepath.Join(dir, domain.SnapshotFileName(t))
}

func (s *Store) pathForDate(date string) string {
	return filepath.Join(s.Dir, date+".json")
}

// Prepare creates the directory and checks it is writable.
func (s *Store) Prepare(context.Context) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("filestore: mkdir %s: %w", s.Dir, err)
	}
	f, err := os.CreateTemp(s.Dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("filestore: %s not writable: %w", s.Dir, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// Save writes the snapshot for its date, replacing any earlier file for that
// day. The write goes through a temp file and rename.
func (s *Store) Save(_ context.Context, snap domain.Snapshot) (string, error) {
	if _, err := domain.ParseDate(snap.Date); err != nil {
		return "", fmt.Errorf("filestore: save: %w", err)
	}
	data, err := Encode(snap)
	if err != nil {
		return "", err
	}
	path := s.pathForDate(snap.Date)

	tmp, err := os.CreateTemp(s.Dir, "."+snap.Date+"-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("filestore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("filestore: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("filestore: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return "", fmt.Errorf("filestore: rename: %w", err)
	}
	return path, nil
}

func (s *Store) Load(_ context.Context, date string) (domain.Snapshot, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", application.ErrBadRequest, err)
	}
	b, err := os.ReadFile(s.pathForDate(date))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Snapshot{}, fmt.Errorf("%w: snapshot %s", application.ErrNotFound, date)
		}
		return domain.Snapshot{}, fmt.Errorf("filestore: read: %w", err)
	}
	return Decode(b)
}

// Dates lists snapshot dates present in Dir, newest first.
func (s *Store) Dates(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("filestore: list: %w", err)
	}
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !snapshotFileRe.MatchString(e.Name()) {
			continue
		}
		date := strings.TrimSuffix(e.Name(), ".json")
		if _, err := domain.ParseDate(date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (s *Store) Latest(ctx context.Context) (domain.Snapshot, error) {
	dates, err := s.Dates(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if len(dates) == 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: no snapshots in %s", application.ErrNotFound, s.Dir)
	}
	return s.Load(ctx, dates[0])
}
