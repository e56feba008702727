package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource tells which tier produced the fiat price of a snapshot.
type PriceSource string

const (
	PriceSourceFresh   PriceSource = "fresh"   // fetched during this call
	PriceSourceCache   PriceSource = "cache"   // valid cache entry, no network call
	PriceSourceStale   PriceSource = "stale"   // fetch failed, expired cache entry used
	PriceSourceDefault PriceSource = "default" // fetch failed and cache empty
)

var hundred = decimal.NewFromInt(100)

// BalanceRequest asks the aggregator for a snapshot of one wallet.
type BalanceRequest struct {
	Address       string
	Network       Network
	NativeBalance string // major units, as shown to the user
	BypassCache   bool
}

// BalanceSnapshot is the displayable value of a wallet. It is never mutated after creation.
type BalanceSnapshot struct {
	Address           string          `json:"address"`
	Network           Network         `json:"network"`
	NativeBalance     decimal.Decimal `json:"nativeBalance"`
	FiatPrice         decimal.Decimal `json:"fiatPrice"`
	Change24hPercent  decimal.Decimal `json:"change24hPercent"`
	TotalFiatValue    decimal.Decimal `json:"totalFiatValue"`
	AbsoluteChange24h decimal.Decimal `json:"absoluteChange24h"`
	PriceSource       PriceSource     `json:"priceSource"`
	PriceFetchedAt    time.Time       `json:"priceFetchedAt"`
}

// NewBalanceSnapshot derives the fiat totals from a balance and a price entry.
func NewBalanceSnapshot(address string, network Network, nativeBalance decimal.Decimal, price PriceCacheEntry, source PriceSource) BalanceSnapshot {
	total := nativeBalance.Mul(price.Price)
	return BalanceSnapshot{
		Address:           address,
		Network:           network,
		NativeBalance:     nativeBalance,
		FiatPrice:         price.Price,
		Change24hPercent:  price.Change24h,
		TotalFiatValue:    total,
		AbsoluteChange24h: total.Mul(price.Change24h).Div(hundred),
		PriceSource:       source,
		PriceFetchedAt:    price.FetchedAt,
	}
}

// SnapshotRecord is a journaled snapshot together with its journal index.
type SnapshotRecord struct {
	Index    uint64          `json:"index"`
	Snapshot BalanceSnapshot `json:"snapshot"`
}
