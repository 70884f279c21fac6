package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rates map[string]decimal.Decimal
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Rate(_ context.Context, from, _ string) (decimal.Decimal, error) {
	f.calls.Add(1)
	if f.err != nil {
		return decimal.Zero, f.err
	}
	rate, ok := f.rates[from]
	if !ok {
		return decimal.Zero, errors.New("missing rate")
	}
	return rate, nil
}

func TestAPIClientRate(t *testing.T) {
	var gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"base":"USD","rates":{"RUB":75.0}}`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, "secret")
	rate, err := client.Rate(context.Background(), "usd", "rub")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(75).Equal(rate))
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "base=USD&symbols=RUB", gotQuery)
}

func TestAPIClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api failure", http.StatusOK, `{"success":false,"error":{"message":"Invalid API Key"}}`},
		{"http error", http.StatusInternalServerError, `oops`},
		{"missing rate", http.StatusOK, `{"success":true,"rates":{"EUR":1.1}}`},
		{"bad json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAPIClient(srv.URL, "secret").Rate(context.Background(), "USD", "RUB")
			assert.Error(t, err)
		})
	}
}

func TestAPIClientRequiresKey(t *testing.T) {
	_, err := NewAPIClient("", "").Rate(context.Background(), "USD", "RUB")
	assert.Error(t, err)
}

func TestConvertSameCurrency(t *testing.T) {
	c := NewConverter(Options{})

	got, err := c.Convert(context.Background(), decimal.RequireFromString("100.00"), "rub")
	require.NoError(t, err)
	assert.Equal(t, "100", got.String())
	assert.Equal(t, "RUB", c.Target())
}

func TestConvertThroughSourceIsCached(t *testing.T) {
	src := &fakeSource{rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(75)}}
	c := NewConverter(Options{Supported: []string{"USD", "EUR"}, Source: src})

	for i := 0; i < 3; i++ {
		got, err := c.Convert(context.Background(), decimal.RequireFromString("10.00"), "USD")
		require.NoError(t, err)
		assert.Equal(t, "750", got.String())
	}

	assert.EqualValues(t, 1, src.calls.Load())
}

func TestConvertStaticConversionWins(t *testing.T) {
	src := &fakeSource{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(100)}}
	c := NewConverter(Options{
		Supported:   []string{"EUR"},
		Conversions: map[string]float64{"eur": 80},
		Source:      src,
	})

	got, err := c.Convert(context.Background(), decimal.RequireFromString("5.00"), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "400", got.String())
	assert.EqualValues(t, 0, src.calls.Load())
}

func TestConvertUnresolved(t *testing.T) {
	failing := &fakeSource{err: errors.New("connection refused")}

	tests := []struct {
		name string
		opts Options
		code string
	}{
		{"unsupported", Options{Supported: []string{"USD"}, Source: failing}, "GBP"},
		{"source error", Options{Supported: []string{"USD"}, Source: failing}, "USD"},
		{"no source", Options{Supported: []string{"USD"}}, "USD"},
		{"empty code", Options{}, " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConverter(tt.opts).Convert(context.Background(), decimal.NewFromInt(20), tt.code)
			assert.ErrorIs(t, err, ErrUnresolvedRate)
		})
	}
}

func TestFailedRateIsNotRetried(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	c := NewConverter(Options{Supported: []string{"USD"}, Source: src})

	c.Prefetch(context.Background(), []string{"USD"})

	for i := 0; i < 3; i++ {
		_, err := c.Convert(context.Background(), decimal.NewFromInt(10), "USD")
		assert.ErrorIs(t, err, ErrUnresolvedRate)
	}

	assert.EqualValues(t, 1, src.calls.Load())
}

func TestPrefetch(t *testing.T) {
	src := &fakeSource{rates: map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(75),
		"EUR": decimal.NewFromInt(80),
	}}
	c := NewConverter(Options{Supported: []string{"USD", "EUR", "GBP"}, Source: src})

	c.Prefetch(context.Background(), []string{"USD", "usd", "EUR", "GBP", "RUB"})
	assert.EqualValues(t, 3, src.calls.Load())

	got, err := c.Convert(context.Background(), decimal.NewFromInt(2), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "160", got.String())
	assert.EqualValues(t, 3, src.calls.Load())
}
