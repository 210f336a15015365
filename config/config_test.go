package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWithEnv(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("USDC_BRIDGE_API_KEY", "sk_test_abc")
	t.Setenv("USDC_BRIDGE_WALLET_EMAIL", "treasury@example.com")
	for key, value := range env {
		t.Setenv(key, value)
	}
	return Load()
}

func TestLoadStagingDefaults(t *testing.T) {
	cfg, err := loadWithEnv(t, nil)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Env)
	assert.True(t, cfg.IsStaging())
	assert.Equal(t, "https://staging.crossmint.com", cfg.WalletBaseURL)
	assert.Equal(t, "base-sepolia", cfg.SourceChain)
	assert.Equal(t, "usdxm", cfg.TokenSymbol)
	assert.Equal(t, "stellar", cfg.DestChain)
	assert.Equal(t, "usdc", cfg.StellarToken)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 60, cfg.PollAttempts)
	assert.Equal(t, "1", cfg.TransferAmount)
}

func TestLoadProduction(t *testing.T) {
	cfg, err := loadWithEnv(t, map[string]string{"USDC_BRIDGE_ENV": "production"})
	require.NoError(t, err)

	assert.False(t, cfg.IsStaging())
	assert.Equal(t, "https://www.crossmint.com", cfg.WalletBaseURL)
	assert.Equal(t, "base", cfg.SourceChain)
	assert.Equal(t, "usdc", cfg.TokenSymbol)
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	_, err := loadWithEnv(t, map[string]string{"USDC_BRIDGE_ENV": "localnet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid USDC_BRIDGE_ENV")
}

func TestLoadRequiresAPIKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("USDC_BRIDGE_API_KEY", "")
	t.Setenv("USDC_BRIDGE_WALLET_EMAIL", "treasury@example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USDC_BRIDGE_API_KEY")
}

func TestLoadRequiresWalletEmail(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("USDC_BRIDGE_API_KEY", "sk_test_abc")
	t.Setenv("USDC_BRIDGE_WALLET_EMAIL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USDC_BRIDGE_WALLET_EMAIL")
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := loadWithEnv(t, map[string]string{
		"USDC_BRIDGE_WALLET_BASE_URL": "http://localhost:8080",
		"USDC_BRIDGE_POLL_INTERVAL":   "500ms",
		"USDC_BRIDGE_POLL_ATTEMPTS":   "10",
		"USDC_BRIDGE_TOKEN_CONTRACT":  "0x1111111111111111111111111111111111111111",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.WalletBaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10, cfg.PollAttempts)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.TokenContract)
}
