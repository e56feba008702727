package configloader

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wallet_sync/internal/pkg/utils"
)

// Environment variables that override the YAML file.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvIndexerKey   = "INDEXER_API_KEY"
	EnvPriceBaseURL = "PRICE_API_BASE_URL"
	EnvLogLevel     = "LOG_LEVEL"

	DefaultConfigPath = "config/config.yml"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// PriceAPIConfig holds the price API specific configurations.
type PriceAPIConfig struct {
	BaseURL              string `yaml:"baseURL"`
	Symbol               string `yaml:"symbol"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// IndexerConfig holds the ledger indexer configuration shared by all networks.
type IndexerConfig struct {
	APIKey               string            `yaml:"apiKey"`
	RequestsPerSecond    float64           `yaml:"requestsPerSecond"`
	Burst                int               `yaml:"burst"`
	RequestTimeoutMillis int64             `yaml:"requestTimeoutMillis"`
	DefaultLimit         int               `yaml:"defaultLimit"`
	MaxLimit             int               `yaml:"maxLimit"`
	Networks             map[string]string `yaml:"networks"` // network -> indexer base URL
}

// PriceCacheConfig holds the price cache freshness window.
type PriceCacheConfig struct {
	TTLSeconds int `yaml:"ttlSeconds"`
}

// BalanceConfig holds the balance aggregator fallback settings.
type BalanceConfig struct {
	FallbackPrice string `yaml:"fallbackPrice"` // "0" disables the constant tier
}

// RefreshConfig holds the refresh orchestrator settings.
type RefreshConfig struct {
	IntervalSeconds int `yaml:"intervalSeconds"`
}

// JournalConfig holds the balance snapshot journal settings.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// WalletsConfig points at the watched wallet list loaded by serve.
type WalletsConfig struct {
	File string `yaml:"file"`
}

// ReadinessConfig holds the startup probe settings.
type ReadinessConfig struct {
	Enabled        bool  `yaml:"enabled"`
	MaxRetries     int   `yaml:"maxRetries"`
	TimeoutMillis  int64 `yaml:"timeoutMillis"`
	IntervalMillis int64 `yaml:"intervalMillis"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	PriceAPI   PriceAPIConfig   `yaml:"priceAPI"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	PriceCache PriceCacheConfig `yaml:"priceCache"`
	Balance    BalanceConfig    `yaml:"balance"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	Journal    JournalConfig    `yaml:"journal"`
	Wallets    WalletsConfig    `yaml:"wallets"`
	Readiness  ReadinessConfig  `yaml:"readiness"`
}

// LoadEnvironment loads a .env file from the working directory when present.
func LoadEnvironment() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
		return
	}
	logrus.Info("Successfully loaded .env file from current directory")
}

// Load reads the YAML configuration file from the given path, applies defaults and env overrides.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns a configuration built from defaults and env overrides only.
func Default() *Config {
	var cfg Config
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func applyEnv(cfg *Config) {
	cfg.Indexer.APIKey = utils.GetEnv(EnvIndexerKey, cfg.Indexer.APIKey)
	cfg.PriceAPI.BaseURL = utils.GetEnv(EnvPriceBaseURL, cfg.PriceAPI.BaseURL)
	cfg.Logging.Level = utils.GetEnv(EnvLogLevel, cfg.Logging.Level)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.PriceAPI.BaseURL == "" {
		cfg.PriceAPI.BaseURL = "https://api.wallet-prices.io/v1"
		logrus.Infof("PriceAPI.BaseURL not set, defaulting to %s", cfg.PriceAPI.BaseURL)
	}
	if cfg.PriceAPI.Symbol == "" {
		cfg.PriceAPI.Symbol = "TON"
	}
	if cfg.PriceAPI.RequestTimeoutMillis <= 0 {
		cfg.PriceAPI.RequestTimeoutMillis = 5000 // 5 seconds, then the fallback tiers engage
	}

	if cfg.Indexer.RequestsPerSecond == 0 {
		cfg.Indexer.RequestsPerSecond = 1 // public indexer quota without a key
		logrus.Infof("Indexer.RequestsPerSecond not set, defaulting to %.0f", cfg.Indexer.RequestsPerSecond)
	}
	if cfg.Indexer.Burst <= 0 {
		cfg.Indexer.Burst = 3
	}
	if cfg.Indexer.RequestTimeoutMillis <= 0 {
		cfg.Indexer.RequestTimeoutMillis = 15000
	}
	if cfg.Indexer.DefaultLimit <= 0 {
		cfg.Indexer.DefaultLimit = 20
	}
	if cfg.Indexer.MaxLimit <= 0 {
		cfg.Indexer.MaxLimit = 100
	}
	if cfg.Indexer.DefaultLimit > cfg.Indexer.MaxLimit {
		logrus.Warnf("Indexer.DefaultLimit %d exceeds Indexer.MaxLimit %d, capping", cfg.Indexer.DefaultLimit, cfg.Indexer.MaxLimit)
		cfg.Indexer.DefaultLimit = cfg.Indexer.MaxLimit
	}

	if cfg.PriceCache.TTLSeconds <= 0 {
		cfg.PriceCache.TTLSeconds = 10
	}
	if cfg.Balance.FallbackPrice == "" {
		cfg.Balance.FallbackPrice = "2.5"
		logrus.Infof("Balance.FallbackPrice not set, defaulting to %s", cfg.Balance.FallbackPrice)
	}
	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 15
	}
	if cfg.Journal.Dir == "" {
		cfg.Journal.Dir = "./wal/balance"
	}
	if cfg.Wallets.File == "" {
		cfg.Wallets.File = "data/wallets.txt"
	}
	if cfg.Readiness.MaxRetries <= 0 {
		cfg.Readiness.MaxRetries = 3
	}
	if cfg.Readiness.TimeoutMillis <= 0 {
		cfg.Readiness.TimeoutMillis = 2000
	}
	if cfg.Readiness.IntervalMillis <= 0 {
		cfg.Readiness.IntervalMillis = 500
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if _, err := c.FallbackPrice(); err != nil {
		return err
	}
	return nil
}

// FallbackPrice returns the constant last-resort price; zero means disabled.
func (c *Config) FallbackPrice() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(c.Balance.FallbackPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance.fallbackPrice %q: %w", c.Balance.FallbackPrice, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("balance.fallbackPrice must not be negative, got %s", price)
	}
	return price, nil
}

func (c *Config) PriceTimeout() time.Duration {
	return time.Duration(c.PriceAPI.RequestTimeoutMillis) * time.Millisecond
}

func (c *Config) IndexerTimeout() time.Duration {
	return time.Duration(c.Indexer.RequestTimeoutMillis) * time.Millisecond
}

func (c *Config) PriceCacheTTL() time.Duration {
	return time.Duration(c.PriceCache.TTLSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}
