package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/configloader"
	"wallet_sync/internal/pkg/metrics"
)

const sampleHistory = `{
  "transactions": [
    {
      "hash": "abc",
      "lt": 48000000000001,
      "utime": 1700000000,
      "success": true,
      "total_fees": "5000000",
      "in_msg": {"value": 0, "source": null, "destination": {"address": "EQme"}},
      "out_msgs": [{"value": "1500000000", "destination": {"address": "EQpeer"}, "decoded_body": {"text": "rent"}}]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, m *metrics.Metrics) *IndexerClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	def := entity.NetworkDefinition{Network: entity.NetworkTestnet, NativeSymbol: "TON", Decimals: 9, IndexerBaseURL: srv.URL}
	return NewIndexerClient(def, srv.Client(), "secret", nil, zap.NewNop(), m)
}

func TestIndexerClient_Transactions(t *testing.T) {
	t.Run("decodes history with bearer auth", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/accounts/EQme/transactions", r.URL.Path)
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(sampleHistory))
		}, nil)

		txs, err := c.Transactions(context.Background(), "EQme", 20)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "abc", txs[0].Hash)
		require.Len(t, txs[0].OutMsgs, 1)
		assert.Equal(t, "EQpeer", txs[0].OutMsgs[0].Destination.Address)
		assert.Equal(t, "rent", txs[0].OutMsgs[0].Text())
		require.NotNil(t, txs[0].TotalFees)
		assert.Equal(t, "5000000", txs[0].TotalFees.String())
	})

	t.Run("empty history is not an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}, nil)

		txs, err := c.Transactions(context.Background(), "EQme", 5)
		require.NoError(t, err)
		assert.NotNil(t, txs)
		assert.Empty(t, txs)
	})

	t.Run("server error", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, m)

		_, err := c.Transactions(context.Background(), "EQme", 5)
		var fe *entity.FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteRequests.WithLabelValues(transactionsAPI, metrics.OutcomeError)))
	})
}

func TestIndexerClient_Account(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/EQme", r.URL.Path)
		_, _ = w.Write([]byte(`{"address":"EQme","balance":2500000000,"status":"active"}`))
	}, nil)

	account, err := c.Account(context.Background(), "EQme")
	require.NoError(t, err)
	assert.Equal(t, "2500000000", account.Balance.String())
	assert.Equal(t, entity.NetworkTestnet, c.Definition().Network)
}

func TestIndexerClientProvider_CachesPerNetwork(t *testing.T) {
	cfg := &configloader.Config{}
	cfg.Indexer.RequestsPerSecond = 10
	p := NewIndexerClientProvider(cfg, http.DefaultClient, zap.NewNop(), nil)

	main := entity.NetworkDefinition{Network: entity.NetworkMainnet, IndexerBaseURL: "http://main"}
	first, err := p.GetClient(main)
	require.NoError(t, err)
	second, err := p.GetClient(main)
	require.NoError(t, err)
	assert.Same(t, first, second)

	test, err := p.GetClient(entity.NetworkDefinition{Network: entity.NetworkTestnet, IndexerBaseURL: "http://test"})
	require.NoError(t, err)
	assert.NotSame(t, first, test)

	_, err = p.GetClient(entity.NetworkDefinition{Network: entity.NetworkTestnet})
	assert.Error(t, err)
}
