package refresh

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
)

var ErrUnknownConsumer = errors.New("unknown consumer")

// Factory builds the orchestrator of a new consumer.
type Factory func() *Orchestrator

// Registry maps consumer IDs to their orchestrators.
type Registry struct {
	mu            sync.RWMutex
	orchestrators map[string]*Orchestrator
	factory       Factory
	logger        port.Logger
}

func NewRegistry(factory Factory, l port.Logger) *Registry {
	return &Registry{
		orchestrators: make(map[string]*Orchestrator),
		factory:       factory,
		logger:        l,
	}
}

// Attach points consumer id at key, creating its orchestrator on first use.
func (r *Registry) Attach(id string, key entity.Wallet) (*Orchestrator, <-chan struct{}) {
	r.mu.Lock()
	o, ok := r.orchestrators[id]
	if !ok {
		o = r.factory()
		r.orchestrators[id] = o
		r.logger.With("consumer", id).Debug("Consumer registered", "address", key.Address, "network", key.Network)
	}
	r.mu.Unlock()

	return o, o.Attach(key)
}

func (r *Registry) Get(id string) (*Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orchestrators[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownConsumer, "consumer %q", id)
	}
	return o, nil
}

// Detach closes and forgets consumer id.
func (r *Registry) Detach(id string) error {
	r.mu.Lock()
	o, ok := r.orchestrators[id]
	delete(r.orchestrators, id)
	r.mu.Unlock()

	if !ok {
		return errors.Wrapf(ErrUnknownConsumer, "consumer %q", id)
	}
	o.Close()
	return nil
}

func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.orchestrators))
	for id := range r.orchestrators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every orchestrator.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.orchestrators
	r.orchestrators = make(map[string]*Orchestrator)
	r.mu.Unlock()

	for _, o := range all {
		o.Close()
	}
}
