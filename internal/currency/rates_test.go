package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"catalog-service/internal/cache"
)

func newRatesServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		base := r.URL.Query().Get("base")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"` + base + `","rates":{"EUR":0.9,"GBP":0.8}}`))
	}))
}

func TestGetRates_FetchesAndCaches(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	provider := NewRateProvider(server.URL, cache.NewMemoryCache(0), time.Minute, logrus.New())
	ctx := context.Background()

	first, err := provider.GetRates(ctx, "usd")
	assert.NoError(t, err)
	assert.Equal(t, "USD", first.Base)
	assert.Equal(t, 0.9, first.Rates["EUR"])

	second, err := provider.GetRates(ctx, "USD")
	assert.NoError(t, err)
	assert.Equal(t, first.Rates, second.Rates)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetRates_TTLExpiryRefetches(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	provider := NewRateProvider(server.URL, cache.NewMemoryCache(0), 10*time.Millisecond, logrus.New())
	ctx := context.Background()

	_, err := provider.GetRates(ctx, "USD")
	assert.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = provider.GetRates(ctx, "USD")
	assert.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetRates_NilCacheAlwaysFetches(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	provider := NewRateProvider(server.URL, nil, time.Minute, logrus.New())
	ctx := context.Background()

	_, _ = provider.GetRates(ctx, "USD")
	_, _ = provider.GetRates(ctx, "USD")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestConvert(t *testing.T) {
	var calls int32
	server := newRatesServer(t, &calls)
	defer server.Close()

	provider := NewRateProvider(server.URL, cache.NewMemoryCache(0), time.Minute, logrus.New())
	ctx := context.Background()

	converted, err := provider.Convert(ctx, "USD", "EUR", 100)
	assert.NoError(t, err)
	assert.InDelta(t, 90.0, converted, 0.001)

	same, err := provider.Convert(ctx, "USD", "usd", 42)
	assert.NoError(t, err)
	assert.Equal(t, 42.0, same)

	_, err = provider.Convert(ctx, "USD", "JPY", 1)
	assert.Error(t, err)
}

func TestGetRates_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewRateProvider(server.URL, nil, time.Minute, logrus.New())

	_, err := provider.GetRates(context.Background(), "USD")
	assert.Error(t, err)
}
