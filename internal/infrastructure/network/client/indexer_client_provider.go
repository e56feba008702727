package client

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/configloader"
	"wallet_sync/internal/pkg/metrics"
)

// indexerClientProvider implements the port.IndexerClientProvider interface.
type indexerClientProvider struct {
	clients    map[entity.Network]port.IndexerClient
	mu         sync.Mutex
	httpClient *http.Client
	apiKey     string
	rps        rate.Limit
	burst      int
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewIndexerClientProvider creates a provider; every network gets its own rate limiter.
func NewIndexerClientProvider(cfg *configloader.Config, httpClient *http.Client, logger *zap.Logger, m *metrics.Metrics) port.IndexerClientProvider {
	rps := rate.Limit(cfg.Indexer.RequestsPerSecond)
	if cfg.Indexer.RequestsPerSecond <= 0 {
		rps = rate.Inf
	}
	burst := cfg.Indexer.Burst
	if burst < 1 {
		burst = 1
	}
	return &indexerClientProvider{
		clients:    make(map[entity.Network]port.IndexerClient),
		httpClient: httpClient,
		apiKey:     cfg.Indexer.APIKey,
		rps:        rps,
		burst:      burst,
		logger:     logger,
		metrics:    m,
	}
}

// GetClient retrieves the indexer client for the given network definition.
// Clients are cached so that the rate limit is shared by all consumers of a network.
func (p *indexerClientProvider) GetClient(netDef entity.NetworkDefinition) (port.IndexerClient, error) {
	if netDef.IndexerBaseURL == "" {
		return nil, fmt.Errorf("network %s has no indexer URL", netDef.Network)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.Network]; exists {
		return client, nil
	}

	p.logger.Info("Creating new indexer client", zap.String("network", netDef.Network.String()), zap.String("baseURL", netDef.IndexerBaseURL))
	client := NewIndexerClient(netDef, p.httpClient, p.apiKey, rate.NewLimiter(p.rps, p.burst), p.logger, p.metrics)
	p.clients[netDef.Network] = client
	return client, nil
}
