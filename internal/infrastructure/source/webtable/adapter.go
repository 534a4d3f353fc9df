// Package webtable scrapes crypto prices from server-rendered market tables.
package webtable

import (
	"bytes"
	"context"
	"fmt"

	"coinprices-service/internal/domain"

	"go.uber.org/zap"
)

// Getter fetches a page body. *httpx.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Adapter struct {
	site      Site
	client    Getter
	extractor RowExtractor
	registry  *domain.Registry
	log       *zap.Logger
}

type Option func(*Adapter)

func WithExtractor(e RowExtractor) Option    { return func(a *Adapter) { a.extractor = e } }
func WithRegistry(r *domain.Registry) Option { return func(a *Adapter) { a.registry = r } }
func WithLogger(l *zap.Logger) Option        { return func(a *Adapter) { a.log = l } }

func New(site Site, client Getter, opts ...Option) *Adapter {
	a := &Adapter{site: site, client: client}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = HTMLExtractor{}
	}
	if a.registry == nil {
		a.registry = domain.Coins
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

func (a *Adapter) Name() string { return a.site.Name }

// Fetch returns one quote per registry asset found on the site, in registry
// order. Any unparseable price fails the whole fetch. On paged sites a page
// that cannot be fetched is skipped.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.Quote, error) {
	assets := a.registry.All()
	found := make(map[string]domain.Quote, len(assets))

	pages := a.site.MaxPages
	if pages < 1 {
		pages = 1
	}
	var pageErr error
	for page := 1; page <= pages && len(found) < len(assets); page++ {
		url := a.site.pageURL(page)
		body, err := a.client.Get(ctx, url)
		if err != nil {
			if pages == 1 || ctx.Err() != nil {
				return nil, fmt.Errorf("%s: %w", a.site.Name, err)
			}
			// paged listings skip a page that fails and read the rest
			a.log.Warn("webtable.page_failed", zap.String("source", a.site.Name), zap.Int("page", page), zap.Error(err))
			pageErr = err
			continue
		}
		rows, err := a.extractor.Rows(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.site.Name, err)
		}
		a.log.Debug("webtable.page_fetched", zap.String("source", a.site.Name), zap.Int("page", page), zap.Int("rows", len(rows)))
		if len(rows) == 0 {
			if page == 1 {
				return nil, fmt.Errorf("%s: could not find price table", a.site.Name)
			}
			continue
		}

		for _, asset := range assets {
			if _, ok := found[asset.Slug]; ok {
				continue
			}
			raw := a.findPrice(rows, asset)
			if raw == "" {
				continue
			}
			q, err := a.site.quote(asset, raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", a.site.Name, asset.Slug, err)
			}
			found[asset.Slug] = q
		}
	}

	out := make([]domain.Quote, 0, len(found))
	for _, asset := range assets {
		q, ok := found[asset.Slug]
		if !ok {
			if a.site.Strict {
				return nil, fmt.Errorf("%s: could not find price for %s", a.site.Name, asset.Slug)
			}
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		if pageErr != nil {
			return nil, fmt.Errorf("%s: no known assets in price table: %w", a.site.Name, pageErr)
		}
		return nil, fmt.Errorf("%s: no known assets in price table", a.site.Name)
	}
	return out, nil
}

func (a *Adapter) findPrice(rows []Row, asset domain.Asset) string {
	for _, r := range rows {
		if !a.site.matches(r, asset) {
			continue
		}
		if raw := a.site.priceText(r); raw != "" {
			return raw
		}
	}
	return ""
}
