// Package binance reads spot prices from Binance's public product endpoints.
package binance

import (
	"context"
	"fmt"

	"coinprices-service/internal/domain"

	"go.uber.org/zap"
)

const (
	Name       = "binance"
	StaticURL  = "https://www.binance.com/bapi/asset/v2/friendly/asset-service/product/get-product-static?includeEtf=true"
	DynamicURL = "https://www.binance.com/bapi/asset/v2/friendly/asset-service/product/get-product-dynamic?includeEtf=true"
	HomeURL    = "https://www.binance.com/en/markets/overview"

	QuoteAsset = "USDT"
)

// JSONGetter fetches and decodes a JSON document. *httpx.Client satisfies it.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, out any) error
}

type staticProduct struct {
	Symbol string `json:"s"`
	Base   string `json:"b"`
	Quote  string `json:"q"`
}

type dynamicProduct struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

type envelope[T any] struct {
	Data []T `json:"data"`
}

type Adapter struct {
	client   JSONGetter
	registry *domain.Registry
	log      *zap.Logger
}

func New(client JSONGetter, registry *domain.Registry, log *zap.Logger) *Adapter {
	if registry == nil {
		registry = domain.Coins
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{client: client, registry: registry, log: log}
}

func (a *Adapter) Name() string { return Name }

// Fetch joins the static product list (pairs) with the dynamic one (last
// prices) and keeps USDT pairs whose base asset is in the registry.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.Quote, error) {
	var static envelope[staticProduct]
	if err := a.client.GetJSON(ctx, StaticURL, &static); err != nil {
		return nil, fmt.Errorf("binance: static products: %w", err)
	}
	var dynamic envelope[dynamicProduct]
	if err := a.client.GetJSON(ctx, DynamicURL, &dynamic); err != nil {
		return nil, fmt.Errorf("binance: dynamic products: %w", err)
	}

	last := make(map[string]string, len(dynamic.Data))
	for _, d := range dynamic.Data {
		last[d.Symbol] = d.Close
	}

	seen := make(map[string]bool)
	var out []domain.Quote
	for _, p := range static.Data {
		if p.Quote != QuoteAsset {
			continue
		}
		asset, ok := a.registry.ByTicker(p.Base)
		if !ok || seen[asset.Slug] {
			continue
		}
		raw := last[p.Symbol]
		if raw == "" {
			continue
		}
		q, err := domain.NewQuote(asset, raw, QuoteAsset, HomeURL)
		if err != nil {
			return nil, fmt.Errorf("binance: %s: %w", p.Symbol, err)
		}
		q.Currency = QuoteAsset
		seen[asset.Slug] = true
		out = append(out, q)
	}

	a.log.Debug("binance.fetched", zap.Int("products", len(static.Data)), zap.Int("quotes", len(out)))
	if len(out) == 0 {
		return nil, fmt.Errorf("binance: no %s pairs for known assets", QuoteAsset)
	}
	return out, nil
}
