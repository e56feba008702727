package service

import (
	"context"
	"sync"
	"sync/atomic"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
)

// fakePriceSource answers with quote/err, or blocks until ctx is done when block is set.
type fakePriceSource struct {
	mu        sync.Mutex
	quote     entity.PriceQuote
	err       error
	block     bool
	started   chan struct{}
	calls     atomic.Int32
	cancelled atomic.Int32
}

func (f *fakePriceSource) FetchPrice(ctx context.Context, symbol string) (entity.PriceQuote, error) {
	f.calls.Add(1)
	f.mu.Lock()
	quote, err, block, started := f.quote, f.err, f.block, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block {
		<-ctx.Done()
		f.cancelled.Add(1)
		return entity.PriceQuote{}, &entity.FetchError{Op: "price", URL: "fake", Err: ctx.Err()}
	}
	return quote, err
}

func (f *fakePriceSource) set(quote entity.PriceQuote, err error, block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quote, f.err, f.block = quote, err, block
}

type fakeIndexer struct {
	def       entity.NetworkDefinition
	raws      []entity.RawTransaction
	err       error
	block     bool
	started   chan struct{}
	calls     atomic.Int32
	cancelled atomic.Int32
	lastLimit atomic.Int32
}

func (f *fakeIndexer) Account(ctx context.Context, address string) (entity.RawAccountResponse, error) {
	return entity.RawAccountResponse{Address: address}, nil
}

func (f *fakeIndexer) Transactions(ctx context.Context, address string, limit int) ([]entity.RawTransaction, error) {
	f.calls.Add(1)
	f.lastLimit.Store(int32(limit))
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block {
		<-ctx.Done()
		f.cancelled.Add(1)
		return nil, &entity.FetchError{Op: "transactions", URL: "fake", Err: ctx.Err()}
	}
	return f.raws, f.err
}

func (f *fakeIndexer) Definition() entity.NetworkDefinition {
	return f.def
}

type fakeIndexerProvider struct {
	client port.IndexerClient
}

func (p fakeIndexerProvider) GetClient(entity.NetworkDefinition) (port.IndexerClient, error) {
	return p.client, nil
}

type fakeNetworks struct {
	defs map[entity.Network]entity.NetworkDefinition
}

func (f fakeNetworks) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(f.defs))
	for _, d := range f.defs {
		out = append(out, d)
	}
	return out
}

func (f fakeNetworks) GetNetworkDefinition(n entity.Network) (entity.NetworkDefinition, bool) {
	d, ok := f.defs[n]
	return d, ok
}

var testnetDef = entity.NetworkDefinition{
	Network:        entity.NetworkTestnet,
	NativeSymbol:   "TON",
	Decimals:       9,
	IndexerBaseURL: "http://fake",
}
