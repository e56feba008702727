package port

import (
	"context"

	"wallet_sync/internal/domain/entity"
)

// PriceSource fetches the current fiat quote of an asset.
type PriceSource interface {
	FetchPrice(ctx context.Context, symbol string) (entity.PriceQuote, error)
}

// PriceCache stores the last successful quote. Read and Write never block on I/O or fail.
type PriceCache interface {
	Read() (entity.PriceCacheEntry, bool)
	Write(entry entity.PriceCacheEntry)
}
