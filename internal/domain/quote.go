package domain

import (
	"fmt"
	"time"
)

// Quote is one price reading for one asset from one source.
// Fields are declared in JSON key order so encoding/json emits sorted keys.
type Quote struct {
	Currency string  `json:"currency"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Raw      string  `json:"raw"`
	Slug     string  `json:"slug"`
	Source   string  `json:"source"`
	Symbol   string  `json:"symbol"`
	URL      string  `json:"url"`
}

// NewQuote parses raw into a Quote for a. The currency is taken from a symbol
// in raw when present, otherwise defaultCurrency. Source is left empty; the
// aggregator stamps it.
func NewQuote(a Asset, raw, defaultCurrency, url string) (Quote, error) {
	price, err := NormalizePrice(raw)
	if err != nil {
		return Quote{}, err
	}
	if price <= 0 {
		return Quote{}, fmt.Errorf("%w: %q parsed to %v", ErrInvalidPrice, raw, price)
	}
	return Quote{
		Currency: ResolveCurrency(raw, defaultCurrency),
		Name:     a.DisplayName,
		Price:    price,
		Raw:      raw,
		Slug:     a.Slug,
		Symbol:   a.Ticker,
		URL:      url,
	}, nil
}

// WithSource returns a copy of q attributed to source.
func (q Quote) WithSource(source string) Quote {
	q.Source = source
	return q
}

// QuoteHistory is a persisted quote row from a past snapshot.
type QuoteHistory struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Date      string    `json:"date"`
	FetchedAt time.Time `json:"fetched_at"`
	Slug      string    `json:"slug"`
	Symbol    string    `json:"symbol"`
	Source    string    `json:"source"`
	Raw       string    `json:"raw"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
}
