package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/pkg/inflight"
)

// ErrInvalidLimit is returned for a negative page size.
var ErrInvalidLimit = errors.New("limit must be positive")

// TransactionNormalizerConfig holds the tunables of a TransactionNormalizer.
type TransactionNormalizerConfig struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

// TransactionNormalizer fetches raw history from the indexer and maps it to canonical transactions.
// One instance belongs to one consumer: a new FetchTransactions aborts the previous one.
type TransactionNormalizer struct {
	networks port.NetworkDefinitionProvider
	indexers port.IndexerClientProvider
	cfg      TransactionNormalizerConfig
	logger   port.Logger
	slot     inflight.Slot
}

func NewTransactionNormalizer(networks port.NetworkDefinitionProvider, indexers port.IndexerClientProvider, cfg TransactionNormalizerConfig, l port.Logger) *TransactionNormalizer {
	return &TransactionNormalizer{
		networks: networks,
		indexers: indexers,
		cfg:      cfg,
		logger:   l,
	}
}

// FetchTransactions returns the latest history of address. A limit of zero means the
// configured default; larger values are capped. An address without history yields an
// empty slice and no error.
func (n *TransactionNormalizer) FetchTransactions(ctx context.Context, address string, network entity.Network, limit int) ([]entity.CanonicalTransaction, error) {
	token := n.slot.Begin(ctx)
	defer n.slot.Release(token)

	limit, err := n.effectiveLimit(limit)
	if err != nil {
		return nil, err
	}

	netDef, ok := n.networks.GetNetworkDefinition(network)
	if !ok {
		return nil, errors.Wrapf(entity.ErrUnknownNetwork, "network %q", network)
	}
	indexer, err := n.indexers.GetClient(netDef)
	if err != nil {
		return nil, errors.Wrapf(err, "indexer for %s", network)
	}

	fetchCtx, cancel := context.WithTimeout(token.Context(), n.cfg.Timeout)
	raws, err := indexer.Transactions(fetchCtx, address, limit)
	cancel()

	if token.Superseded() {
		return nil, inflight.ErrSuperseded
	}
	if errors.Is(token.Cause(), inflight.ErrDetached) {
		return nil, inflight.ErrDetached
	}
	if err != nil {
		n.logger.Warn("Transaction fetch failed", "address", address, "network", network, "error", err)
		return nil, errors.Wrapf(err, "fetch transactions for %s", address)
	}

	txs := make([]entity.CanonicalTransaction, 0, len(raws))
	for _, raw := range raws {
		txs = append(txs, MapRawTransaction(raw, netDef))
	}
	n.logger.Debug("Transactions normalized", "address", address, "network", network, "count", len(txs))
	return txs, nil
}

func (n *TransactionNormalizer) effectiveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, ErrInvalidLimit
	case limit == 0:
		limit = n.cfg.DefaultLimit
	}
	if n.cfg.MaxLimit > 0 && limit > n.cfg.MaxLimit {
		limit = n.cfg.MaxLimit
	}
	return limit, nil
}
