package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Environment selects the wallet provider deployment and the chain pair.
const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Config holds the application configuration. It is read once at process
// start; nothing re-reads the environment afterwards.
type Config struct {
	Env         string
	APIKey      string
	WalletEmail string

	// Wallet API
	WalletBaseURL string

	// Bridge core API
	CoreAPIURL string

	// Chains and tokens, derived from Env unless overridden
	SourceChain     string // EVM chain the transfer leaves from
	DestChain       string // Stellar-compatible chain it arrives on
	TokenSymbol     string
	StellarToken    string
	TokenContract   string // token contract on the source chain
	StellarContract string // token contract on the destination chain
	BaseRPCURL      string
	SorobanRPCURL   string
	HorizonURL      string

	// Transaction polling
	PollInterval time.Duration
	PollAttempts int

	// Script transfer flows
	TransferAmount   string
	EVMRecipient     string
	StellarRecipient string
}

// IsStaging reports whether the staging deployment is targeted.
func (c *Config) IsStaging() bool {
	return c.Env == EnvStaging
}

var globalConfig *Config

// Load reads configuration from environment variables and an optional
// config file. It fails before any network call when a required value
// is missing.
func Load() (*Config, error) {
	viper.SetConfigName(".usdc-bridge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("env", EnvStaging)
	viper.SetDefault("core_api_url", "https://core.api.allbridgecoreapi.net")
	viper.SetDefault("poll_interval", "2s")
	viper.SetDefault("poll_attempts", 60)
	viper.SetDefault("transfer_amount", "1")
	viper.SetDefault("evm_recipient", "0x0610CFB8f9778160908410978Fd22a68E3FdD21C")
	viper.SetDefault("stellar_recipient", "CDVII37YKYMZQFYH3LVA4ANVSXGRFENWAXORJC4O35VTP4ZE3MVMMZ54")

	viper.SetEnvPrefix("USDC_BRIDGE")
	viper.AutomaticEnv()

	// Config file is optional
	_ = viper.ReadInConfig()

	cfg := &Config{
		Env:           viper.GetString("env"),
		APIKey:        viper.GetString("api_key"),
		WalletEmail:   viper.GetString("wallet_email"),
		WalletBaseURL: viper.GetString("wallet_base_url"),
		CoreAPIURL:    viper.GetString("core_api_url"),
		BaseRPCURL:    viper.GetString("base_rpc_url"),
		SorobanRPCURL: viper.GetString("soroban_rpc_url"),
		HorizonURL:    viper.GetString("stellar_horizon_url"),
		PollInterval:  viper.GetDuration("poll_interval"),
		PollAttempts:  viper.GetInt("poll_attempts"),

		TransferAmount:   viper.GetString("transfer_amount"),
		EVMRecipient:     viper.GetString("evm_recipient"),
		StellarRecipient: viper.GetString("stellar_recipient"),
	}

	if cfg.Env != EnvStaging && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("invalid USDC_BRIDGE_ENV %q: must be %q or %q", cfg.Env, EnvStaging, EnvProduction)
	}

	if cfg.WalletBaseURL == "" {
		if cfg.IsStaging() {
			cfg.WalletBaseURL = "https://staging.crossmint.com"
		} else {
			cfg.WalletBaseURL = "https://www.crossmint.com"
		}
	}

	if cfg.IsStaging() {
		cfg.SourceChain = "base-sepolia"
		cfg.TokenSymbol = "usdxm"
	} else {
		cfg.SourceChain = "base"
		cfg.TokenSymbol = "usdc"
	}
	cfg.DestChain = "stellar"
	cfg.StellarToken = "usdc"

	cfg.TokenContract = viper.GetString("token_contract")
	if cfg.TokenContract == "" {
		cfg.TokenContract = "0x14196F08a4Fa0B66B7331bC40dd6bCd8A1dEeA9F"
	}
	cfg.StellarContract = viper.GetString("stellar_token_contract")
	if cfg.StellarContract == "" {
		cfg.StellarContract = "CCZP7JXIY2V4UVYVTV3D5YZREYBDES2KMIULISZ2JRR6O5JBHXVLW7UB"
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("wallet API key not found. Please set USDC_BRIDGE_API_KEY or create a .usdc-bridge.yaml config file")
	}
	if cfg.WalletEmail == "" {
		return nil, fmt.Errorf("wallet owner email not found. Please set USDC_BRIDGE_WALLET_EMAIL")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
