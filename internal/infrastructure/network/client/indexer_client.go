package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/httpclient"
	"wallet_sync/internal/pkg/metrics"
)

const (
	accountAPI      = "account"
	transactionsAPI = "transactions"
)

// IndexerClient implements port.IndexerClient over the REST indexer of one network.
type IndexerClient struct {
	httpClient *http.Client
	netDef     entity.NetworkDefinition
	apiKey     string
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewIndexerClient creates a client for netDef.IndexerBaseURL. A nil limiter disables rate limiting.
func NewIndexerClient(netDef entity.NetworkDefinition, httpClient *http.Client, apiKey string, limiter *rate.Limiter, logger *zap.Logger, m *metrics.Metrics) *IndexerClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &IndexerClient{
		httpClient: httpClient,
		netDef:     netDef,
		apiKey:     apiKey,
		limiter:    limiter,
		logger:     logger.Named("IndexerClient").With(zap.String("network", netDef.Network.String())),
		metrics:    m,
	}
}

// Account fetches GET /accounts/{address}.
func (c *IndexerClient) Account(ctx context.Context, address string) (entity.RawAccountResponse, error) {
	requestURL := fmt.Sprintf("%s/accounts/%s", c.netDef.IndexerBaseURL, url.PathEscape(address))

	var account entity.RawAccountResponse
	if err := c.get(ctx, accountAPI, requestURL, &account); err != nil {
		return entity.RawAccountResponse{}, err
	}
	return account, nil
}

// Transactions fetches GET /accounts/{address}/transactions?limit=N.
// An address without history yields an empty, non-nil slice.
func (c *IndexerClient) Transactions(ctx context.Context, address string, limit int) ([]entity.RawTransaction, error) {
	requestURL := fmt.Sprintf("%s/accounts/%s/transactions?limit=%d", c.netDef.IndexerBaseURL, url.PathEscape(address), limit)

	var resp entity.RawTransactionsResponse
	if err := c.get(ctx, transactionsAPI, requestURL, &resp); err != nil {
		return nil, err
	}
	if resp.Transactions == nil {
		return []entity.RawTransaction{}, nil
	}
	c.logger.Debug("Transactions received", zap.String("address", address), zap.Int("count", len(resp.Transactions)))
	return resp.Transactions, nil
}

// Definition returns the network definition associated with this client.
func (c *IndexerClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

func (c *IndexerClient) get(ctx context.Context, api, requestURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.ObserveRequest(api, metrics.OutcomeCancelled)
		return &entity.FetchError{Op: api, URL: requestURL, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var header http.Header
	if c.apiKey != "" {
		header = http.Header{"Authorization": {"Bearer " + c.apiKey}}
	}

	c.logger.Debug("Requesting indexer", zap.String("api", api), zap.String("url", requestURL))
	err := httpclient.GetJSON(ctx, c.httpClient, api, requestURL, header, out)
	switch {
	case err == nil:
		c.metrics.ObserveRequest(api, metrics.OutcomeSuccess)
	case httpclient.IsCancellation(err) || ctx.Err() != nil:
		c.metrics.ObserveRequest(api, metrics.OutcomeCancelled)
		c.logger.Debug("Indexer request cancelled", zap.String("url", requestURL), zap.Error(err))
	default:
		c.metrics.ObserveRequest(api, metrics.OutcomeError)
		c.logger.Warn("Indexer request failed", zap.String("url", requestURL), zap.Error(err))
	}
	return err
}
