package domain

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want float64
	}{
		{"$42,123.45", 42123.45},
		{"12,345", 12345},
		{"1.234,56", 1234.56},
		{"€1.234,5", 1234.5},
		{"1,234", 1234},
		{"12,5", 12.5},
		{"£0,99", 0.99},
		{"12,34,567", 1234567},
		{"1,234,567.891", 1234567.891},
		{"1.234.567,8", 1234567.8},
		{"US$ 67 012.10", 67012.10},
		{"  $0.000012  ", 0.000012},
		{"42", 42},
		{"$50,000.00", 50000},
	}
	for _, c := range cases {
		got, err := NormalizePrice(c.raw)
		require.NoError(t, err, c.raw)
		require.InDelta(t, c.want, got, 1e-9, c.raw)
	}
}

func TestNormalizePrice_ParseErrors(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "abc", "$", ",", "—", "1.234.567", "1,2,34"} {
		_, err := NormalizePrice(raw)
		require.Error(t, err, raw)
		require.ErrorIs(t, err, ErrParse, raw)

		var pe *ParseError
		require.True(t, errors.As(err, &pe), raw)
		require.Equal(t, raw, pe.Raw)
	}
}

func TestNormalizePrice_IdentityOnPlainDecimals(t *testing.T) {
	t.Parallel()
	values := []float64{0.5, 1, 3.14159, 12.5, 99.99, 1234.5678, 42123.45, 0.000123, 987654.321}
	for _, v := range values {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		want, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)

		got, err := NormalizePrice(s)
		require.NoError(t, err, s)
		require.Equal(t, want, got, s)
	}
}

func TestResolveCurrency(t *testing.T) {
	t.Parallel()
	require.Equal(t, "EUR", ResolveCurrency("€99.00", "USD"))
	require.Equal(t, "USD", ResolveCurrency("99.00", "USD"))
	require.Equal(t, "GBP", ResolveCurrency("£12", "USD"))
	require.Equal(t, "USD", ResolveCurrency("$1 (€0.92)", "EUR"))
	require.Equal(t, "USDT", ResolveCurrency("67000.01", "USDT"))
}
