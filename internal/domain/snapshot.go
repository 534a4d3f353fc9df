package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for snapshot dates and file names.
const DateLayout = "2006-01-02"

// FetchError records a source whose whole fetch failed.
type FetchError struct {
	Message string `json:"error"`
	Source  string `json:"source"`
}

// Snapshot is the consolidated result of one run.
// Fields are declared in JSON key order so encoding/json emits sorted keys.
type Snapshot struct {
	Date      string       `json:"date"`
	Errors    []FetchError `json:"errors"`
	FetchedAt time.Time    `json:"fetched_at"`
	Quotes    []Quote      `json:"quotes"`
	Sources   []string     `json:"sources"`
}

// NewSnapshot returns an empty snapshot dated at now (UTC).
func NewSnapshot(now time.Time) Snapshot {
	now = now.UTC()
	return Snapshot{
		Date:      now.Format(DateLayout),
		Errors:    []FetchError{},
		FetchedAt: now,
		Quotes:    []Quote{},
		Sources:   []string{},
	}
}

func (s Snapshot) Failed() bool { return len(s.Errors) > 0 }

// ExitCode is 1 when any source failed, 0 otherwise.
func (s Snapshot) ExitCode() int {
	if s.Failed() {
		return 1
	}
	return 0
}

// QuoteFilter selects quotes; empty fields match anything.
type QuoteFilter struct {
	Slug   string
	Symbol string
	Source string
}

func (f QuoteFilter) Match(q Quote) bool {
	if f.Slug != "" && q.Slug != f.Slug {
		return false
	}
	if f.Symbol != "" && q.Symbol != f.Symbol {
		return false
	}
	if f.Source != "" && q.Source != f.Source {
		return false
	}
	return true
}

// FilterQuotes returns matching quotes in snapshot order.
func (s Snapshot) FilterQuotes(f QuoteFilter) []Quote {
	out := make([]Quote, 0, len(s.Quotes))
	for _, q := range s.Quotes {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	return out
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// SnapshotFileName is "<YYYY-MM-DD>.json" for the UTC calendar day of t.
func SnapshotFileName(t time.Time) string {
	return t.UTC().Format(DateLayout) + ".json"
}
