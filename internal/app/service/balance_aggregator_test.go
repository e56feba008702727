package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/pricecache"
	"wallet_sync/internal/pkg/inflight"
	"wallet_sync/internal/pkg/logger"
	"wallet_sync/internal/pkg/metrics"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newAggregator(prices *fakePriceSource, cache *pricecache.Cache, fallback string, clock *testClock, m *metrics.Metrics) *BalanceAggregator {
	cfg := BalanceAggregatorConfig{
		Symbol:        "TON",
		PriceTimeout:  5 * time.Second,
		CacheTTL:      10 * time.Second,
		FallbackPrice: decimal.RequireFromString(fallback),
	}
	return NewBalanceAggregator(prices, cache, cfg, logger.NewNop(), m).WithClock(clock.Now)
}

func quote(price, change string) entity.PriceQuote {
	return entity.PriceQuote{Price: decimal.RequireFromString(price), Change24h: decimal.RequireFromString(change)}
}

func request(balance string, bypass bool) entity.BalanceRequest {
	return entity.BalanceRequest{Address: "EQme", Network: entity.NetworkTestnet, NativeBalance: balance, BypassCache: bypass}
}

func TestBalanceAggregator_FreshFetchWritesCache(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	prices := &fakePriceSource{quote: quote("2", "10")}
	cache := pricecache.New()
	agg := newAggregator(prices, cache, "2.5", clock, nil)

	snap, err := agg.GetSnapshot(context.Background(), request("3", false))
	require.NoError(t, err)

	assert.Equal(t, entity.PriceSourceFresh, snap.PriceSource)
	assert.True(t, snap.TotalFiatValue.Equal(decimal.NewFromInt(6)))
	assert.True(t, snap.AbsoluteChange24h.Equal(decimal.RequireFromString("0.6")))

	cached, ok := cache.Read()
	require.True(t, ok)
	assert.Equal(t, clock.now, cached.FetchedAt)
}

func TestBalanceAggregator_ValidCacheSkipsNetwork(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	prices := &fakePriceSource{quote: quote("2", "1")}
	m := metrics.New(prometheus.NewRegistry())
	agg := newAggregator(prices, pricecache.New(), "2.5", clock, m)

	first, err := agg.GetSnapshot(context.Background(), request("1", false))
	require.NoError(t, err)

	clock.now = clock.now.Add(9 * time.Second)
	second, err := agg.GetSnapshot(context.Background(), request("1", false))
	require.NoError(t, err)

	assert.EqualValues(t, 1, prices.calls.Load())
	assert.Equal(t, entity.PriceSourceCache, second.PriceSource)
	assert.True(t, first.TotalFiatValue.Equal(second.TotalFiatValue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PriceCacheHits))

	third, err := agg.GetSnapshot(context.Background(), request("1", false))
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestBalanceAggregator_ExpiredOrBypassedCacheRefetches(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	prices := &fakePriceSource{quote: quote("2", "1")}
	agg := newAggregator(prices, pricecache.New(), "2.5", clock, nil)

	_, err := agg.GetSnapshot(context.Background(), request("1", false))
	require.NoError(t, err)

	_, err = agg.GetSnapshot(context.Background(), request("1", true))
	require.NoError(t, err)
	assert.EqualValues(t, 2, prices.calls.Load())

	clock.now = clock.now.Add(10 * time.Second)
	_, err = agg.GetSnapshot(context.Background(), request("1", false))
	require.NoError(t, err)
	assert.EqualValues(t, 3, prices.calls.Load())
}

func TestBalanceAggregator_Fallbacks(t *testing.T) {
	remoteErr := &entity.FetchError{Op: "price", URL: "fake", StatusCode: 503, Err: errors.New("unavailable")}

	t.Run("stale cache on error", func(t *testing.T) {
		clock := &testClock{now: time.Unix(1000, 0)}
		prices := &fakePriceSource{quote: quote("2", "5")}
		cache := pricecache.New()
		agg := newAggregator(prices, cache, "2.5", clock, nil)

		_, err := agg.GetSnapshot(context.Background(), request("1", false))
		require.NoError(t, err)
		before, _ := cache.Read()

		clock.now = clock.now.Add(time.Hour)
		prices.set(entity.PriceQuote{}, remoteErr, false)
		snap, err := agg.GetSnapshot(context.Background(), request("1", false))
		require.NoError(t, err)

		assert.Equal(t, entity.PriceSourceStale, snap.PriceSource)
		assert.True(t, snap.FiatPrice.Equal(decimal.NewFromInt(2)))
		after, _ := cache.Read()
		assert.Equal(t, before, after)
	})

	t.Run("constant when cache empty", func(t *testing.T) {
		clock := &testClock{now: time.Unix(1000, 0)}
		prices := &fakePriceSource{err: remoteErr}
		cache := pricecache.New()
		agg := newAggregator(prices, cache, "2.5", clock, nil)

		snap, err := agg.GetSnapshot(context.Background(), request("4", false))
		require.NoError(t, err)

		assert.Equal(t, entity.PriceSourceDefault, snap.PriceSource)
		assert.True(t, snap.FiatPrice.Equal(decimal.RequireFromString("2.5")))
		assert.True(t, snap.Change24hPercent.IsZero())
		assert.True(t, snap.TotalFiatValue.Equal(decimal.NewFromInt(10)))
		_, cached := cache.Read()
		assert.False(t, cached)
	})

	t.Run("fails when no tier is available", func(t *testing.T) {
		clock := &testClock{now: time.Unix(1000, 0)}
		agg := newAggregator(&fakePriceSource{err: remoteErr}, pricecache.New(), "0", clock, nil)

		_, err := agg.GetSnapshot(context.Background(), request("4", false))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoPriceData)
		var fe *entity.FetchError
		assert.True(t, errors.As(err, &fe))
	})
}

func TestBalanceAggregator_TimeoutUsesFallbackPrice(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	prices := &fakePriceSource{block: true}
	agg := newAggregator(prices, pricecache.New(), "2.5", clock, nil)
	agg.cfg.PriceTimeout = 30 * time.Millisecond

	snap, err := agg.GetSnapshot(context.Background(), request("2", false))
	require.NoError(t, err)

	assert.Equal(t, entity.PriceSourceDefault, snap.PriceSource)
	assert.True(t, snap.FiatPrice.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, snap.Change24hPercent.IsZero())
	assert.EqualValues(t, 1, prices.cancelled.Load())
}

func TestBalanceAggregator_MalformedBalanceIsZero(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	agg := newAggregator(&fakePriceSource{quote: quote("2", "0")}, pricecache.New(), "2.5", clock, nil)

	snap, err := agg.GetSnapshot(context.Background(), request("not-a-number", false))
	require.NoError(t, err)
	assert.True(t, snap.NativeBalance.IsZero())
	assert.True(t, snap.TotalFiatValue.IsZero())
}

func TestBalanceAggregator_SupersededCallIsAborted(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	prices := &fakePriceSource{block: true, started: make(chan struct{}, 2)}
	cache := pricecache.New()
	agg := newAggregator(prices, cache, "2.5", clock, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := agg.GetSnapshot(context.Background(), request("1", true))
		firstErr <- err
	}()
	<-prices.started

	prices.set(quote("3", "0"), nil, false)
	snap, err := agg.GetSnapshot(context.Background(), request("1", true))
	require.NoError(t, err)
	assert.True(t, snap.FiatPrice.Equal(decimal.NewFromInt(3)))

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, inflight.ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded call did not return")
	}
	assert.EqualValues(t, 1, prices.cancelled.Load())

	cached, ok := cache.Read()
	require.True(t, ok)
	assert.True(t, cached.Price.Equal(decimal.NewFromInt(3)))
}

func TestBalanceAggregator_DetachedCallSkipsFallbacks(t *testing.T) {
	clock := &testClock{now: time.Unix(1000, 0)}
	prices := &fakePriceSource{block: true, started: make(chan struct{}, 1)}
	cache := pricecache.New()
	cache.Write(entity.PriceCacheEntry{Price: decimal.NewFromInt(7), FetchedAt: time.Unix(0, 0)})
	m := metrics.New(prometheus.NewRegistry())
	agg := newAggregator(prices, cache, "2.5", clock, m)

	owner := inflight.NewToken(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := agg.GetSnapshot(owner.Context(), request("1", true))
		result <- err
	}()
	<-prices.started
	owner.Cancel(inflight.ErrDetached)

	select {
	case err := <-result:
		assert.ErrorIs(t, err, inflight.ErrDetached)
	case <-time.After(time.Second):
		t.Fatal("detached call did not return")
	}
	assert.Zero(t, testutil.ToFloat64(m.PriceSources.WithLabelValues(string(entity.PriceSourceStale))))

	cached, ok := cache.Read()
	require.True(t, ok)
	assert.True(t, cached.Price.Equal(decimal.NewFromInt(7)))
}
