package refresh

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"wallet_sync/internal/domain/entity"
)

var errRemote = errors.New("remote unavailable")

type fakeWallets struct {
	mu       sync.Mutex
	balances map[string]string
	err      error
}

func (f *fakeWallets) NativeBalance(_ context.Context, address string, _ entity.Network) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if b, ok := f.balances[address]; ok {
		return b, nil
	}
	return "1", nil
}

func (f *fakeWallets) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeAggregator answers immediately unless a gate is installed for the address.
type fakeAggregator struct {
	mu        sync.Mutex
	requests  []entity.BalanceRequest
	err       error
	gates     map[string]chan struct{}
	deaf      map[string]bool
	started   chan string
	cancelled int
}

func newFakeAggregator() *fakeAggregator {
	return &fakeAggregator{gates: make(map[string]chan struct{}), deaf: make(map[string]bool), started: make(chan string, 16)}
}

// block makes calls for address wait for the returned release func. A deaf call
// ignores cancellation, like a remote that answers late.
func (f *fakeAggregator) block(address string, deaf bool) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[address] = gate
	f.deaf[address] = deaf
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (f *fakeAggregator) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeAggregator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAggregator) last() entity.BalanceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAggregator) cancelledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func (f *fakeAggregator) GetSnapshot(ctx context.Context, req entity.BalanceRequest) (entity.BalanceSnapshot, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.gates[req.Address]
	deaf := f.deaf[req.Address]
	err := f.err
	f.mu.Unlock()

	select {
	case f.started <- req.Address:
	default:
	}

	if gate != nil && deaf {
		<-gate
	} else if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled++
			f.mu.Unlock()
			return entity.BalanceSnapshot{}, ctx.Err()
		}
	}
	if err != nil {
		return entity.BalanceSnapshot{}, err
	}

	balance, _ := decimal.NewFromString(req.NativeBalance)
	price := entity.PriceCacheEntry{Price: decimal.NewFromInt(2), Change24h: decimal.Zero}
	return entity.NewBalanceSnapshot(req.Address, req.Network, balance, price, entity.PriceSourceFresh), nil
}

// fakeNormalizer answers immediately unless a gate is installed for the address.
type fakeNormalizer struct {
	mu        sync.Mutex
	txs       []entity.CanonicalTransaction
	err       error
	gates     map[string]chan struct{}
	deaf      map[string]bool
	started   chan string
	cancelled int
}

func newFakeNormalizer() *fakeNormalizer {
	return &fakeNormalizer{gates: make(map[string]chan struct{}), deaf: make(map[string]bool), started: make(chan string, 16)}
}

func (f *fakeNormalizer) set(txs []entity.CanonicalTransaction, err error) {
	f.mu.Lock()
	f.txs, f.err = txs, err
	f.mu.Unlock()
}

// block holds history calls for address until the returned func runs.
func (f *fakeNormalizer) block(address string, deaf bool) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[address] = gate
	f.deaf[address] = deaf
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (f *fakeNormalizer) cancelledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func (f *fakeNormalizer) FetchTransactions(ctx context.Context, address string, _ entity.Network, _ int) ([]entity.CanonicalTransaction, error) {
	f.mu.Lock()
	gate := f.gates[address]
	deaf := f.deaf[address]
	f.mu.Unlock()

	select {
	case f.started <- address:
	default:
	}

	if gate != nil && deaf {
		<-gate
	} else if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled++
			f.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.CanonicalTransaction, 0, len(f.txs))
	for _, tx := range f.txs {
		tx.CounterpartyAddress = address
		out = append(out, tx)
	}
	return out, nil
}

type fakeJournal struct {
	mu    sync.Mutex
	saved []entity.BalanceSnapshot
}

func (f *fakeJournal) Save(s entity.BalanceSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeJournal) SnapshotsAfter(uint64) ([]entity.SnapshotRecord, error) {
	return nil, nil
}

func (f *fakeJournal) WalletSnapshotsAfter(entity.Wallet, uint64) ([]entity.SnapshotRecord, error) {
	return nil, nil
}

func (f *fakeJournal) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}
