package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeTestConfig(t, "wallet:\n  ownerAddress: \"someAddress\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Wallet.RefreshIntervalSeconds)
	assert.Equal(t, "https://mainnet.helius-rpc.com", cfg.Helius.BaseURL)
	assert.Equal(t, 100, cfg.Helius.MaxIDsPerBatchCall)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 5, cfg.PriceCache.TTLMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)

	// The default collapse rule covers the crypto category.
	require.Len(t, cfg.Presentation.Collapse, 1)
	assert.Equal(t, "crypto", cfg.Presentation.Collapse[0].InvestmentTypeID)
	assert.NotEmpty(t, cfg.Presentation.Collapse[0].FeaturedIDs)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeTestConfig(t, `
server:
  port: ":9090"
wallet:
  ownerAddress: "owner123"
  refreshIntervalSeconds: 60
helius:
  apiKey: "file-key"
  rateLimit: 5
storage:
  backend: "redis"
  redis:
    addr: "redis:6379"
presentation:
  collapse:
    - investmentTypeId: "stock"
      featuredIds: ["AAPL"]
logging:
  level: "debug"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "owner123", cfg.Wallet.OwnerAddress)
	assert.Equal(t, 60, cfg.Wallet.RefreshIntervalSeconds)
	assert.Equal(t, "file-key", cfg.Helius.APIKey)
	assert.Equal(t, 5, cfg.Helius.RateLimit)
	assert.Equal(t, 5, cfg.Helius.BurstLimit) // burst defaults to rate limit
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	require.Len(t, cfg.Presentation.Collapse, 1)
	assert.Equal(t, "stock", cfg.Presentation.Collapse[0].InvestmentTypeID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigAPIKeyFromEnv(t *testing.T) {
	path := writeTestConfig(t, "helius:\n  apiKey: \"file-key\"\n")
	t.Setenv("HELIUS_API_KEY", "env-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Helius.APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "server: [not a mapping")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
