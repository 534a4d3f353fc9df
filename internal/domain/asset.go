package domain

import "strings"

// Asset is a tracked coin. Slug is the canonical lowercase id.
type Asset struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"name"`
	Ticker      string `json:"symbol"`
}

// DefaultAssets is the reference deployment's coin list.
var DefaultAssets = []Asset{
	{Slug: "bitcoin", DisplayName: "Bitcoin", Ticker: "BTC"},
	{Slug: "ethereum", DisplayName: "Ethereum", Ticker: "ETH"},
	{Slug: "solana", DisplayName: "Solana", Ticker: "SOL"},
	{Slug: "cardano", DisplayName: "Cardano", Ticker: "ADA"},
	{Slug: "arbitrum", DisplayName: "Arbitrum", Ticker: "ARB"},
	{Slug: "monero", DisplayName: "Monero", Ticker: "XMR"},
	{Slug: "binancecoin", DisplayName: "BNB", Ticker: "BNB"},
}

// Registry is a read-only set of assets indexed by slug, display name and ticker.
// It is built once and shared by every source adapter.
type Registry struct {
	assets   []Asset
	bySlug   map[string]Asset
	byName   map[string]Asset
	byTicker map[string]Asset
}

func NewRegistry(assets []Asset) *Registry {
	r := &Registry{
		assets:   make([]Asset, 0, len(assets)),
		bySlug:   make(map[string]Asset, len(assets)),
		byName:   make(map[string]Asset, len(assets)),
		byTicker: make(map[string]Asset, len(assets)),
	}
	for _, a := range assets {
		if _, dup := r.bySlug[a.Slug]; dup {
			continue
		}
		r.assets = append(r.assets, a)
		r.bySlug[a.Slug] = a
		r.byName[a.DisplayName] = a
		r.byTicker[strings.ToUpper(a.Ticker)] = a
	}
	return r
}

// Coins is the process-wide registry.
var Coins = NewRegistry(DefaultAssets)

// All returns the assets in registration order. The slice is a copy.
func (r *Registry) All() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

func (r *Registry) Len() int { return len(r.assets) }

func (r *Registry) BySlug(slug string) (Asset, bool) {
	a, ok := r.bySlug[slug]
	return a, ok
}

func (r *Registry) ByName(name string) (Asset, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// ByTicker is case-insensitive.
func (r *Registry) ByTicker(ticker string) (Asset, bool) {
	a, ok := r.byTicker[strings.ToUpper(ticker)]
	return a, ok
}
