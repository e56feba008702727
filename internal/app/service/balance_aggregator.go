package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/inflight"
	"wallet_sync/internal/pkg/metrics"
	"wallet_sync/internal/pkg/utils"
)

// ErrNoPriceData is wrapped into the error of GetSnapshot when no fallback tier is available.
var ErrNoPriceData = errors.New("no usable price data")

// BalanceAggregatorConfig holds the tunables of a BalanceAggregator.
type BalanceAggregatorConfig struct {
	Symbol        string
	PriceTimeout  time.Duration
	CacheTTL      time.Duration
	FallbackPrice decimal.Decimal // zero disables the constant tier
}

// BalanceAggregator combines a wallet balance with the shared price cache.
// One instance belongs to one consumer: a new GetSnapshot aborts the previous one.
type BalanceAggregator struct {
	prices  port.PriceSource
	cache   port.PriceCache
	cfg     BalanceAggregatorConfig
	logger  port.Logger
	metrics *metrics.Metrics
	slot    inflight.Slot
	now     func() time.Time
}

// NewBalanceAggregator creates an aggregator reading and writing cache.
func NewBalanceAggregator(prices port.PriceSource, cache port.PriceCache, cfg BalanceAggregatorConfig, l port.Logger, m *metrics.Metrics) *BalanceAggregator {
	return &BalanceAggregator{
		prices:  prices,
		cache:   cache,
		cfg:     cfg,
		logger:  l,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (a *BalanceAggregator) WithClock(now func() time.Time) *BalanceAggregator {
	a.now = now
	return a
}

// GetSnapshot produces the snapshot of req. It degrades through fresh, stale cache and
// constant price tiers and only fails when none of them is available. A call superseded
// by a newer one returns inflight.ErrSuperseded, one abandoned by a detached consumer
// returns inflight.ErrDetached.
func (a *BalanceAggregator) GetSnapshot(ctx context.Context, req entity.BalanceRequest) (entity.BalanceSnapshot, error) {
	token := a.slot.Begin(ctx)
	defer a.slot.Release(token)

	balance, ok := utils.ParseAmount(req.NativeBalance)
	if !ok {
		a.logger.Debug("Native balance is not a valid amount, using zero", "address", req.Address, "input", req.NativeBalance)
	}

	if !req.BypassCache {
		if cached, found := a.cache.Read(); found && cached.IsValid(a.now(), a.cfg.CacheTTL) {
			a.metrics.ObserveCacheHit()
			return a.snapshot(req, balance, cached, entity.PriceSourceCache), nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(token.Context(), a.cfg.PriceTimeout)
	quote, err := a.prices.FetchPrice(fetchCtx, a.cfg.Symbol)
	cancel()

	if token.Superseded() {
		return entity.BalanceSnapshot{}, inflight.ErrSuperseded
	}
	if errors.Is(token.Cause(), inflight.ErrDetached) {
		return entity.BalanceSnapshot{}, inflight.ErrDetached
	}

	if err == nil {
		entry := entity.PriceCacheEntry{
			Price:     quote.Price,
			Change24h: quote.Change24h,
			FetchedAt: a.now(),
		}
		a.cache.Write(entry)
		return a.snapshot(req, balance, entry, entity.PriceSourceFresh), nil
	}

	if stale, found := a.cache.Read(); found {
		a.logger.Warn("Price fetch failed, using cached price", "address", req.Address, "fetchedAt", stale.FetchedAt, "error", err)
		return a.snapshot(req, balance, stale, entity.PriceSourceStale), nil
	}

	if a.cfg.FallbackPrice.IsPositive() {
		a.logger.Warn("Price fetch failed and cache is empty, using fallback price", "address", req.Address, "price", a.cfg.FallbackPrice.String(), "error", err)
		entry := entity.PriceCacheEntry{Price: a.cfg.FallbackPrice, Change24h: decimal.Zero}
		return a.snapshot(req, balance, entry, entity.PriceSourceDefault), nil
	}

	a.logger.Error("No price data available", "address", req.Address, "error", err)
	return entity.BalanceSnapshot{}, errors.Wrap(fmt.Errorf("%w: %w", ErrNoPriceData, err), "get balance snapshot")
}

func (a *BalanceAggregator) snapshot(req entity.BalanceRequest, balance decimal.Decimal, price entity.PriceCacheEntry, source entity.PriceSource) entity.BalanceSnapshot {
	a.metrics.ObservePriceSource(string(source))
	return entity.NewBalanceSnapshot(req.Address, req.Network, balance, price, source)
}
