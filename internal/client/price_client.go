package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/httpclient"
	"wallet_sync/internal/pkg/metrics"
)

const priceAPI = "price"

// PriceClient fetches native asset quotes from the price API.
type PriceClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewPriceClient creates a client for GET {baseURL}/price?symbol=...
func NewPriceClient(baseURL string, httpClient *http.Client, logger *zap.Logger, m *metrics.Metrics) *PriceClient {
	return &PriceClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("PriceClient"),
		metrics:    m,
	}
}

// FetchPrice returns the fiat price and 24h change of symbol. The call is aborted when ctx is done.
func (c *PriceClient) FetchPrice(ctx context.Context, symbol string) (entity.PriceQuote, error) {
	requestURL := fmt.Sprintf("%s/price?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	c.logger.Debug("Requesting native price", zap.String("url", requestURL))

	var quote entity.PriceQuote
	err := httpclient.GetJSON(ctx, c.httpClient, priceAPI, requestURL, nil, &quote)
	if err != nil {
		if httpclient.IsCancellation(err) {
			c.metrics.ObserveRequest(priceAPI, metrics.OutcomeCancelled)
			c.logger.Debug("Price request cancelled", zap.String("url", requestURL), zap.Error(err))
		} else {
			c.metrics.ObserveRequest(priceAPI, metrics.OutcomeError)
			c.logger.Warn("Price request failed", zap.String("url", requestURL), zap.Error(err))
		}
		return entity.PriceQuote{}, err
	}

	if !quote.Price.IsPositive() {
		c.metrics.ObserveRequest(priceAPI, metrics.OutcomeError)
		return entity.PriceQuote{}, &entity.FetchError{
			Op:         priceAPI,
			URL:        requestURL,
			StatusCode: http.StatusOK,
			Err:        errors.New("price must be positive"),
		}
	}

	c.metrics.ObserveRequest(priceAPI, metrics.OutcomeSuccess)
	c.logger.Debug("Native price received",
		zap.String("symbol", symbol),
		zap.String("price", quote.Price.String()),
		zap.String("change24h", quote.Change24h.String()))
	return quote, nil
}
