package webtable

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"coinprices-service/internal/domain"
)

// Site describes where a market page keeps its name and price cells.
type Site struct {
	Name string
	URL  string
	// MaxPages > 1 walks URL?page=2..N until every asset is found.
	MaxPages int
	// NameCell must contain the asset name when the row is that wide. -1 skips the check.
	NameCell int
	// ExactName matches the first line of NameCell against the asset name exactly.
	ExactName bool
	PriceCell int
	// Primary accepts the text of PriceCell; Fallback scans all cells in order.
	Primary  func(string) bool
	Fallback func(string) bool
	// Currency is used when the text carries no currency symbol.
	Currency string
	// DetectCurrency reads $ € £ from the price text instead of always using Currency.
	DetectCurrency bool
	// Strict fails the whole source when any registry asset is missing.
	Strict bool
}

var pricePattern = regexp.MustCompile(`[$€£][0-9]`)

func nonEmpty(s string) bool      { return s != "" }
func dollarPrefix(s string) bool  { return strings.HasPrefix(s, "$") }
func symbolPattern(s string) bool { return pricePattern.MatchString(s) }
func dollarOrEuro(s string) bool  { return strings.ContainsAny(s, "$€") }

func anyDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func CoinGecko() Site {
	return Site{
		Name: "coingecko", URL: "https://www.coingecko.com/",
		NameCell: 2, PriceCell: 4,
		Primary: symbolPattern, Fallback: symbolPattern,
		Currency: "USD", DetectCurrency: true, Strict: true,
	}
}

func CoinMarketCap() Site {
	return Site{
		Name: "coinmarketcap", URL: "https://coinmarketcap.com/",
		NameCell: 2, PriceCell: 3,
		Primary: nonEmpty, Fallback: dollarPrefix,
		Currency: "USD", Strict: true,
	}
}

func Yahoo() Site {
	return Site{
		Name: "yahoo", URL: "https://finance.yahoo.com/markets/crypto/all/?start=0&count=100",
		NameCell: 1, PriceCell: 3,
		Primary: nonEmpty, Fallback: anyDigit,
		Currency: "USD", Strict: true,
	}
}

// Kraken serves one table per currency; the static page carries a single
// one, so the currency comes from the price text.
func Kraken() Site {
	return Site{
		Name: "kraken", URL: "https://www.kraken.com/prices",
		NameCell: 1, PriceCell: 2,
		Primary: dollarOrEuro, Fallback: dollarOrEuro,
		Currency: "USD", DetectCurrency: true, Strict: true,
	}
}

// CoinDesk lists assets across several pages and is allowed to miss some.
func CoinDesk() Site {
	return Site{
		Name: "coindesk", URL: "https://www.coindesk.com/price",
		MaxPages: 6,
		NameCell: 1, ExactName: true, PriceCell: 3,
		Primary: nonEmpty, Fallback: dollarPrefix,
		Currency: "USD",
	}
}

var sites = map[string]func() Site{
	"coingecko":     CoinGecko,
	"coinmarketcap": CoinMarketCap,
	"yahoo":         Yahoo,
	"kraken":        Kraken,
	"coindesk":      CoinDesk,
}

// Lookup returns the site definition registered under name.
func Lookup(name string) (Site, bool) {
	f, ok := sites[name]
	if !ok {
		return Site{}, false
	}
	return f(), true
}

// Names lists the known sites, sorted.
func Names() []string {
	out := make([]string, 0, len(sites))
	for n := range sites {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s Site) pageURL(page int) string {
	if page <= 1 {
		return s.URL
	}
	sep := "?"
	if strings.Contains(s.URL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", s.URL, sep, page)
}

// matches reports whether row describes asset a.
func (s Site) matches(r Row, a domain.Asset) bool {
	if s.ExactName {
		if len(r.Cells) <= s.NameCell || len(r.Cells[s.NameCell].Lines) == 0 {
			return false
		}
		return r.Cells[s.NameCell].Lines[0] == a.DisplayName
	}
	if !r.Contains(a.DisplayName) {
		return false
	}
	if s.NameCell >= 0 && len(r.Cells) > s.NameCell {
		return strings.Contains(r.Cells[s.NameCell].Text, a.DisplayName)
	}
	return true
}

// priceText picks the price cell of a row, or "" when none qualifies.
func (s Site) priceText(r Row) string {
	if len(r.Cells) > s.PriceCell {
		if c := r.Cells[s.PriceCell].Text; c != "" && s.Primary(c) {
			return c
		}
	}
	for _, c := range r.Cells {
		if c.Text != "" && s.Fallback(c.Text) {
			return c.Text
		}
	}
	return ""
}

func (s Site) quote(a domain.Asset, raw string) (domain.Quote, error) {
	q, err := domain.NewQuote(a, raw, s.Currency, s.URL)
	if err != nil {
		return domain.Quote{}, err
	}
	if !s.DetectCurrency {
		q.Currency = s.Currency
	}
	return q, nil
}
