package main

import (
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/app/provider"
	"wallet_sync/internal/app/refresh"
	"wallet_sync/internal/app/service"
	"wallet_sync/internal/client"
	"wallet_sync/internal/infrastructure/configloader"
	"wallet_sync/internal/infrastructure/httpclient"
	clientprovider "wallet_sync/internal/infrastructure/network/client"
	networkdefinition "wallet_sync/internal/infrastructure/network/definition"
	"wallet_sync/internal/infrastructure/pricecache"
	"wallet_sync/internal/pkg/logger"
	"wallet_sync/internal/pkg/metrics"
	"wallet_sync/internal/pkg/utils"
)

// components holds everything shared by the commands. One price cache serves every consumer.
type components struct {
	cfg        *configloader.Config
	zapLogger  *zap.Logger
	metrics    *metrics.Metrics
	networks   *networkdefinition.NetworkDefinitionProvider
	indexers   port.IndexerClientProvider
	wallets    *provider.IndexerWalletSource
	prices     *client.PriceClient
	priceCache *pricecache.Cache
	aggCfg     service.BalanceAggregatorConfig
	txCfg      service.TransactionNormalizerConfig
	refreshCfg refresh.Config
}

func loadConfig(configPath string) (*configloader.Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = utils.GetEnv(configloader.EnvConfigPath, configloader.DefaultConfigPath)
	}

	cfg, err := configloader.Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Config file %s not found, using defaults", configPath)
		return configloader.Default(), nil
	}
	return nil, err
}

// buildComponents wires the sync layer. reg may be nil when metrics are not exported.
func buildComponents(configPath string, reg prometheus.Registerer) (*components, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.Init(zapLogger)
	zapLogger.Info("Configuration loaded", zap.String("level", cfg.Logging.Level), zap.String("priceAPI", cfg.PriceAPI.BaseURL))

	fallbackPrice, err := cfg.FallbackPrice()
	if err != nil {
		return nil, err
	}

	m := metrics.New(reg)
	networks := networkdefinition.NewNetworkDefinitionProvider(
		logger.NewSlogAdapter("component", "NetworkDefinitionProvider"),
		cfg.Indexer.Networks,
	)
	indexers := clientprovider.NewIndexerClientProvider(cfg, httpclient.New(cfg.IndexerTimeout()), zapLogger, m)

	return &components{
		cfg:        cfg,
		zapLogger:  zapLogger,
		metrics:    m,
		networks:   networks,
		indexers:   indexers,
		wallets:    provider.NewIndexerWalletSource(networks, indexers, logger.NewSlogAdapter("component", "IndexerWalletSource")),
		prices:     client.NewPriceClient(cfg.PriceAPI.BaseURL, httpclient.New(cfg.PriceTimeout()), zapLogger, m),
		priceCache: pricecache.New(),
		aggCfg: service.BalanceAggregatorConfig{
			Symbol:        cfg.PriceAPI.Symbol,
			PriceTimeout:  cfg.PriceTimeout(),
			CacheTTL:      cfg.PriceCacheTTL(),
			FallbackPrice: fallbackPrice,
		},
		txCfg: service.TransactionNormalizerConfig{
			Timeout:      cfg.IndexerTimeout(),
			DefaultLimit: cfg.Indexer.DefaultLimit,
			MaxLimit:     cfg.Indexer.MaxLimit,
		},
		refreshCfg: refresh.Config{
			Interval:         cfg.RefreshInterval(),
			TransactionLimit: cfg.Indexer.DefaultLimit,
		},
	}, nil
}

// newAggregator creates a per-consumer aggregator over the shared cache.
func (c *components) newAggregator() *service.BalanceAggregator {
	return service.NewBalanceAggregator(c.prices, c.priceCache, c.aggCfg,
		logger.NewSlogAdapter("component", "BalanceAggregator"), c.metrics)
}

// newNormalizer creates a per-consumer normalizer. Each one owns its in-flight slot,
// so sharing one between consumers would let them supersede each other.
func (c *components) newNormalizer() *service.TransactionNormalizer {
	return service.NewTransactionNormalizer(c.networks, c.indexers, c.txCfg,
		logger.NewSlogAdapter("component", "TransactionNormalizer"))
}

// newOrchestratorFactory builds consumers with their own aggregator and normalizer.
// The wallet source, price cache and journal are shared.
func (c *components) newOrchestratorFactory(journal port.SnapshotJournal) refresh.Factory {
	return func() *refresh.Orchestrator {
		return refresh.NewOrchestrator(refresh.Dependencies{
			Wallets:    c.wallets,
			Aggregator: c.newAggregator(),
			Normalizer: c.newNormalizer(),
			Journal:    journal,
		}, c.refreshCfg, logger.NewSlogAdapter("component", "RefreshOrchestrator"), c.metrics)
	}
}
