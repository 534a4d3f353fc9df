// Package fake provides a deterministic SourceAdapter for local runs and tests.
package fake

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"
)

var _ application.SourceAdapter = (*Fake)(nil)

const URL = "https://example.invalid/fake"

// Fake quotes every registry asset at Base * (position+1), rendered as a
// "$1,234.50" style string so the normal parsing path is exercised.
type Fake struct {
	name     string
	base     float64
	err      error
	registry *domain.Registry
}

func New(name string, base float64) *Fake {
	return &Fake{name: name, base: base, registry: domain.Coins}
}

// Failing returns a Fake whose Fetch always fails with err.
func Failing(name string, err error) *Fake {
	return &Fake{name: name, err: err, registry: domain.Coins}
}

func (f *Fake) Name() string { return f.name }

func (f *Fake) Fetch(ctx context.Context) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	assets := f.registry.All()
	out := make([]domain.Quote, 0, len(assets))
	for i, a := range assets {
		raw := "$" + groupThousands(f.base*float64(i+1))
		q, err := domain.NewQuote(a, raw, "USD", URL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + "." + frac
}
