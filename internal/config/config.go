package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Wallet       WalletConfig       `yaml:"wallet"`
	Helius       HeliusConfig       `yaml:"helius"`
	Storage      StorageConfig      `yaml:"storage"`
	PriceCache   PriceCacheConfig   `yaml:"priceCache"`
	Presentation PresentationConfig `yaml:"presentation"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// WalletConfig identifies the tracked wallet and the refresh cadence.
type WalletConfig struct {
	OwnerAddress           string `yaml:"ownerAddress"`
	RefreshIntervalSeconds int    `yaml:"refreshIntervalSeconds"`
}

// HeliusConfig holds the configuration for the Helius DAS client.
type HeliusConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxIDsPerBatchCall   int    `yaml:"maxIdsPerBatchCall"`
	RateLimit            int    `yaml:"rateLimit"`
	BurstLimit           int    `yaml:"burstLimit"`
}

// StorageConfig selects the key-value persistence backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // "memory" or "redis"
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PriceCacheConfig holds the token price TTL cache settings.
type PriceCacheConfig struct {
	TTLMinutes             int `yaml:"ttlMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// PresentationConfig holds display-layer settings.
type PresentationConfig struct {
	Collapse []CollapseRuleConfig `yaml:"collapse"`
}

// CollapseRuleConfig folds the long tail of one investment type into a single
// "Other" entry, keeping only the featured identifiers as standalone rows.
type CollapseRuleConfig struct {
	InvestmentTypeID string   `yaml:"investmentTypeId"`
	FeaturedIDs      []string `yaml:"featuredIds"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "debug", "info", "warn", "error"
}

// LoadConfig loads configuration from a YAML file and applies defaults.
// The Helius API key may be supplied via the HELIUS_API_KEY environment
// variable, which takes precedence over the file.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if key := os.Getenv("HELIUS_API_KEY"); key != "" {
		cfg.Helius.APIKey = key
	}
	if cfg.Helius.APIKey == "" {
		logrus.Warn("Helius API key not set. Holdings fetching will fail; the cached portfolio will be served instead.")
	}
	if cfg.Wallet.OwnerAddress == "" {
		logrus.Warn("Wallet owner address not set. Only demo and custom-asset portfolios will be available.")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Wallet.RefreshIntervalSeconds <= 0 {
		cfg.Wallet.RefreshIntervalSeconds = 30
		logrus.Infof("Wallet.RefreshIntervalSeconds not set, defaulting to %d", cfg.Wallet.RefreshIntervalSeconds)
	}

	if cfg.Helius.BaseURL == "" {
		cfg.Helius.BaseURL = "https://mainnet.helius-rpc.com"
		logrus.Infof("Helius.BaseURL not set, defaulting to %s", cfg.Helius.BaseURL)
	}
	if cfg.Helius.RequestTimeoutMillis <= 0 {
		cfg.Helius.RequestTimeoutMillis = 10000
	}
	if cfg.Helius.MaxIDsPerBatchCall <= 0 {
		cfg.Helius.MaxIDsPerBatchCall = 100 // getAssetBatch ceiling
	}
	if cfg.Helius.RateLimit <= 0 {
		cfg.Helius.RateLimit = 10
	}
	if cfg.Helius.BurstLimit <= 0 {
		cfg.Helius.BurstLimit = cfg.Helius.RateLimit
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
		logrus.Info("Storage.Backend not set, defaulting to in-memory store")
	}

	if cfg.PriceCache.TTLMinutes <= 0 {
		cfg.PriceCache.TTLMinutes = 5
	}
	if cfg.PriceCache.CleanupIntervalMinutes <= 0 {
		cfg.PriceCache.CleanupIntervalMinutes = 10
	}

	if len(cfg.Presentation.Collapse) == 0 {
		cfg.Presentation.Collapse = []CollapseRuleConfig{
			{
				InvestmentTypeID: "crypto",
				FeaturedIDs: []string{
					"So11111111111111111111111111111111111111112", // SOL
					"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // USDC
					"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", // USDT
					"Xsv9hRk1z5ystj9MhnA7Lq4vjSsLwzL2nxrwmwtD3re",  // Gold
				},
			},
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
