package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/inflight"
	"wallet_sync/internal/pkg/metrics"
)

const (
	defaultInterval  = 15 * time.Second
	subscriberBuffer = 8
)

// errDiscarded marks a branch whose result was dropped instead of applied to the view.
var errDiscarded = errors.New("refresh result discarded")

// Config holds the tunables of an Orchestrator.
type Config struct {
	Interval         time.Duration
	TransactionLimit int
}

// Dependencies are the collaborators of one consumer's orchestrator. Journal is optional.
type Dependencies struct {
	Wallets    port.WalletSource
	Aggregator port.BalanceAggregator
	Normalizer port.TransactionNormalizer
	Journal    port.SnapshotJournal
}

// Orchestrator keeps the view of one consumer fresh. At most one refresh is in
// flight; a newer refresh or key change cancels it and drops its results.
type Orchestrator struct {
	deps    Dependencies
	cfg     Config
	logger  port.Logger
	metrics *metrics.Metrics

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu          sync.Mutex
	slot        inflight.Slot
	attached    bool
	closed      bool
	generation  uint64
	stopTicker  chan struct{}
	view        View
	lastNative  string
	subscribers map[int]chan View
	nextSubID   int
}

func NewOrchestrator(deps Dependencies, cfg Config, l port.Logger, m *metrics.Metrics) *Orchestrator {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		deps:        deps,
		cfg:         cfg,
		logger:      l,
		metrics:     m,
		baseCtx:     ctx,
		baseCancel:  cancel,
		view:        View{State: StateIdle, Transactions: []entity.CanonicalTransaction{}},
		subscribers: make(map[int]chan View),
	}
}

// Attach switches the orchestrator to key. Outstanding work is cancelled, the view
// is reset and a refresh starts immediately. The returned channel closes when it is done.
func (o *Orchestrator) Attach(key entity.Wallet) <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return closedChan()
	}

	o.stopLocked(inflight.ErrSuperseded)
	o.attached = true
	o.lastNative = ""
	o.view = View{
		Key:          key,
		State:        StateScheduled,
		Transactions: []entity.CanonicalTransaction{},
	}

	stop := make(chan struct{})
	o.stopTicker = stop
	go o.runTicker(o.generation, stop)

	o.logger.Info("Consumer attached", "address", key.Address, "network", key.Network)
	return o.startLocked(false)
}

// Refresh starts a manual refresh that supersedes the current one. A forced refresh
// bypasses the price cache.
func (o *Orchestrator) Refresh(forced bool) <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.attached || o.closed {
		return closedChan()
	}
	return o.startLocked(forced)
}

// Detach stops the timer, cancels in-flight work and returns to Idle.
func (o *Orchestrator) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.attached {
		return
	}
	o.stopLocked(inflight.ErrDetached)
	o.attached = false
	o.view = View{State: StateIdle, Transactions: []entity.CanonicalTransaction{}, UpdatedAt: time.Now()}
	o.publishLocked()
}

// Close detaches and closes every subscription. The orchestrator is unusable afterwards.
func (o *Orchestrator) Close() {
	o.Detach()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	for id, ch := range o.subscribers {
		delete(o.subscribers, id)
		close(ch)
	}
	o.baseCancel()
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Subscribe streams view changes, starting with the current view. Slow readers lose
// intermediate views, never the latest one.
func (o *Orchestrator) Subscribe() (<-chan View, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan View, subscriberBuffer)
	if o.closed {
		close(ch)
		return ch, func() {}
	}

	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = ch
	ch <- o.view

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if sub, ok := o.subscribers[id]; ok {
				delete(o.subscribers, id)
				close(sub)
			}
		})
	}
}

func (o *Orchestrator) runTicker(generation uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			o.tick(generation)
		}
	}
}

func (o *Orchestrator) tick(generation uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if generation != o.generation || !o.attached {
		return
	}
	if o.view.State == StateFetching {
		o.logger.Debug("Refresh still in flight, skipping tick", "address", o.view.Key.Address)
		return
	}
	o.startLocked(false)
}

// stopLocked invalidates the current generation: the ticker stops and the in-flight refresh is cancelled.
func (o *Orchestrator) stopLocked(cause error) {
	o.generation++
	if o.stopTicker != nil {
		close(o.stopTicker)
		o.stopTicker = nil
	}
	o.slot.Cancel(cause)
}

func (o *Orchestrator) startLocked(forced bool) <-chan struct{} {
	token := o.slot.Begin(o.baseCtx)
	id := uuid.NewString()
	key := o.view.Key

	o.view.State = StateFetching
	o.view.BalanceLoading = true
	o.view.TransactionsLoading = true
	o.view.LastRefreshID = id
	o.view.UpdatedAt = time.Now()
	o.publishLocked()

	done := make(chan struct{})
	go o.run(token, id, key, forced, done)
	return done
}

func (o *Orchestrator) run(token *inflight.Token, id string, key entity.Wallet, forced bool, done chan<- struct{}) {
	defer close(done)
	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		return o.refreshBalance(token, key, forced)
	})
	g.Go(func() error {
		return o.refreshTransactions(token, key)
	})
	// branch failures are already in the view; Wait reports the first one
	err := g.Wait()

	o.metrics.ObserveRefresh(time.Since(start))

	o.mu.Lock()
	if o.slot.Current() == token {
		if o.attached {
			o.view.State = StateScheduled
		} else {
			o.view.State = StateIdle
		}
		o.view.UpdatedAt = time.Now()
		o.publishLocked()
	}
	o.mu.Unlock()

	o.slot.Release(token)
	l := o.logger.With("refreshId", id, "address", key.Address)
	switch {
	case err == nil:
		l.Debug("Refresh finished", "forced", forced, "duration", time.Since(start))
	case errors.Is(err, errDiscarded):
		l.Debug("Refresh finished, results discarded", "forced", forced, "duration", time.Since(start), "reason", err)
	default:
		l.Debug("Refresh finished with errors", "forced", forced, "duration", time.Since(start), "error", err)
	}
}

func (o *Orchestrator) refreshBalance(token *inflight.Token, key entity.Wallet, forced bool) error {
	ctx := token.Context()

	native, walletErr := o.deps.Wallets.NativeBalance(ctx, key.Address, key.Network)
	if walletErr != nil {
		if !token.Active() {
			o.metrics.ObserveDiscard()
			return discarded("balance", token, walletErr)
		}
		native = o.lastNativeBalance()
		o.logger.Warn("Wallet balance unavailable, using last known value", "address", key.Address, "balance", native, "error", walletErr)
	}

	snapshot, err := o.deps.Aggregator.GetSnapshot(ctx, entity.BalanceRequest{
		Address:       key.Address,
		Network:       key.Network,
		NativeBalance: native,
		BypassCache:   forced,
	})

	o.mu.Lock()
	if !o.applicableLocked(token, key) || abandoned(err) {
		o.settleAbandonedLocked(token, key, func(v *View) { v.BalanceLoading = false })
		o.mu.Unlock()
		o.metrics.ObserveDiscard()
		return discarded("balance", token, err)
	}
	if walletErr == nil {
		o.lastNative = native
	}
	o.view.BalanceLoading = false
	if err != nil {
		o.view.BalanceError = err.Error()
		o.logger.Error("Balance refresh failed", "address", key.Address, "error", err)
	} else {
		o.view.Snapshot = &snapshot
		o.view.BalanceError = ""
	}
	o.view.UpdatedAt = time.Now()
	o.publishLocked()
	o.mu.Unlock()

	if err != nil {
		return errors.Wrap(err, "balance")
	}
	if o.deps.Journal != nil {
		if jerr := o.deps.Journal.Save(snapshot); jerr != nil {
			o.logger.Warn("Failed to journal balance snapshot", "address", key.Address, "error", jerr)
		}
	}
	return nil
}

func (o *Orchestrator) refreshTransactions(token *inflight.Token, key entity.Wallet) error {
	txs, err := o.deps.Normalizer.FetchTransactions(token.Context(), key.Address, key.Network, o.cfg.TransactionLimit)

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.applicableLocked(token, key) || abandoned(err) {
		o.settleAbandonedLocked(token, key, func(v *View) { v.TransactionsLoading = false })
		o.metrics.ObserveDiscard()
		return discarded("transactions", token, err)
	}
	o.view.TransactionsLoading = false
	if err != nil {
		o.view.Transactions = []entity.CanonicalTransaction{}
		o.view.TransactionsError = err.Error()
	} else {
		if txs == nil {
			txs = []entity.CanonicalTransaction{}
		}
		o.view.Transactions = txs
		o.view.TransactionsError = ""
	}
	o.view.UpdatedAt = time.Now()
	o.publishLocked()

	if err != nil {
		return errors.Wrap(err, "transactions")
	}
	return nil
}

// abandoned reports whether a downstream call gave up because its own request was
// superseded or detached. Such a result is not an answer for this refresh.
func abandoned(err error) bool {
	return errors.Is(err, inflight.ErrSuperseded) || errors.Is(err, inflight.ErrDetached)
}

// discarded names why a branch result was dropped: the refresh's own cause when it
// was cancelled, otherwise the downstream error.
func discarded(branch string, token *inflight.Token, err error) error {
	cause := token.Cause()
	if cause == nil {
		cause = err
	}
	return errors.Wrapf(errDiscarded, "%s: %v", branch, cause)
}

// settleAbandonedLocked clears the loading flag of a branch whose refresh is still
// current but whose downstream call was abandoned. The previous data and error stay.
func (o *Orchestrator) settleAbandonedLocked(token *inflight.Token, key entity.Wallet, settle func(*View)) {
	if !o.applicableLocked(token, key) {
		return
	}
	settle(&o.view)
	o.view.UpdatedAt = time.Now()
	o.publishLocked()
}

func (o *Orchestrator) applicableLocked(token *inflight.Token, key entity.Wallet) bool {
	return token.Active() && o.attached && o.view.Key == key
}

func (o *Orchestrator) lastNativeBalance() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastNative == "" {
		return "0"
	}
	return o.lastNative
}

func (o *Orchestrator) publishLocked() {
	view := o.view
	for _, ch := range o.subscribers {
		select {
		case ch <- view:
		default:
			// drop the oldest queued view
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
