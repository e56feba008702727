package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a single answer of the remote price API.
type PriceQuote struct {
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change24hPercent"`
}

// PriceCacheEntry is the cached fiat price of the native asset.
// Entries are replaced as a whole and never expire on their own.
type PriceCacheEntry struct {
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change24hPercent"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// IsValid reports whether the entry is still fresh at now.
func (e PriceCacheEntry) IsValid(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}
