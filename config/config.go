package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// AssetEntry describes an asset available on a configured network
type AssetEntry struct {
	Kind     string `mapstructure:"kind"` // NATIVE or ERC20
	Contract string `mapstructure:"contract"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Network holds the RPC configuration for one EVM chain
type Network struct {
	RPCUrl   string                `mapstructure:"rpc_url"`
	ChainID  uint64                `mapstructure:"chain_id"`
	GasLimit uint64                `mapstructure:"gas_limit"`
	Assets   map[string]AssetEntry `mapstructure:"assets"`
}

// Party holds one end user's demo signing material
type Party struct {
	Address    string `mapstructure:"address"`
	PrivateKey string `mapstructure:"private_key"`
}

// Custody configures the local custody service stand-in
type Custody struct {
	// Secret is the node secret the local service derives policy keys from
	Secret string `mapstructure:"secret"`
	// CodeID is the content id of the settlement logic; escrow bundles
	// are sealed to it
	CodeID string `mapstructure:"code_id"`
}

// Pinata configures the IPFS pinning collaborator
type Pinata struct {
	JWT     string `mapstructure:"jwt"`
	BaseURL string `mapstructure:"base_url"`
}

// Config holds the application configuration
type Config struct {
	Domain      string             `mapstructure:"domain"`
	SessionFile string             `mapstructure:"session_file"`
	Networks    map[string]Network `mapstructure:"networks"`
	PartyA      Party              `mapstructure:"party_a"`
	PartyB      Party              `mapstructure:"party_b"`
	Custody     Custody            `mapstructure:"custody"`
	Pinata      Pinata             `mapstructure:"pinata"`
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".evm-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("domain", "localhost")
	viper.SetDefault("pinata.base_url", "https://api.pinata.cloud")

	// Read from environment variables
	viper.SetEnvPrefix("EVM_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.Custody.Secret == "" {
		return nil, fmt.Errorf("custody secret not found. Please set EVM_SWAP_CUSTODY_SECRET or add custody.secret to a .evm-swap.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Network returns a configured network by name
func (c *Config) Network(name string) (Network, error) {
	network, exists := c.Networks[name]
	if !exists {
		return Network{}, fmt.Errorf("network %s not configured", name)
	}
	if network.RPCUrl == "" {
		return Network{}, fmt.Errorf("RPC URL not configured for network %s", name)
	}
	return network, nil
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
