package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"coinprices-service/internal/domain"
)

// Encode renders a snapshot as the on-disk document: keys sorted,
// 2-space indent, trailing newline. Non-ASCII text is written as UTF-8.
func Encode(s domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(s)); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (domain.Snapshot, error) {
	var s domain.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return normalize(s), nil
}

// normalize keeps empty lists as [] rather than null.
func normalize(s domain.Snapshot) domain.Snapshot {
	if s.Errors == nil {
		s.Errors = []domain.FetchError{}
	}
	if s.Quotes == nil {
		s.Quotes = []domain.Quote{}
	}
	if s.Sources == nil {
		s.Sources = []string{}
	}
	return s
}
