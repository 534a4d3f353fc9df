package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookups(t *testing.T) {
	t.Parallel()
	require.Equal(t, 7, Coins.Len())

	a, ok := Coins.ByName("BNB")
	require.True(t, ok)
	require.Equal(t, "binancecoin", a.Slug)

	a, ok = Coins.ByTicker("xmr")
	require.True(t, ok)
	require.Equal(t, "monero", a.Slug)

	_, ok = Coins.BySlug("dogecoin")
	require.False(t, ok)
}

func TestRegistry_AllIsACopy(t *testing.T) {
	t.Parallel()
	r := NewRegistry([]Asset{{Slug: "bitcoin", DisplayName: "Bitcoin", Ticker: "BTC"}})
	all := r.All()
	all[0].Slug = "mutated"

	a, ok := r.BySlug("bitcoin")
	require.True(t, ok)
	require.Equal(t, "bitcoin", a.Slug)
	require.Equal(t, "bitcoin", r.All()[0].Slug)
}

func TestRegistry_DuplicateSlugKeepsFirst(t *testing.T) {
	t.Parallel()
	r := NewRegistry([]Asset{
		{Slug: "bitcoin", DisplayName: "Bitcoin", Ticker: "BTC"},
		{Slug: "bitcoin", DisplayName: "Bitcoin Cash", Ticker: "BCH"},
	})
	require.Equal(t, 1, r.Len())
	_, ok := r.ByTicker("BCH")
	require.False(t, ok)
}
