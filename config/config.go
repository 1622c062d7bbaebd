// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Ledger constants: script templates, capacities, fee amounts — fixed
//     per network and not operator-tunable
//   - Client settings: runtime configuration, can vary per installation
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds client runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Ledger node connection
	RPC RPCConfig

	// Issuance
	Issuance IssuanceConfig

	// Price feed polling
	PriceFeed PriceFeedConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds the ledger node connection settings.
type RPCConfig struct {
	URL     string        `conf:"rpc.url"`
	Timeout time.Duration `conf:"rpc.timeout"`
}

// IssuanceConfig holds issuance workflow settings. The fee amount and the
// collector/creator addresses are fixed per network; they live here so
// testnets can point at their own accounts.
type IssuanceConfig struct {
	FeeRate          uint64        `conf:"issuance.feerate"`   // base units per tx byte
	PlatformFeeCoins uint64        `conf:"issuance.fee"`       // whole coins
	CollectorAddress string        `conf:"issuance.collector"` // bech32
	CreatorAddress   string        `conf:"issuance.creator"`   // bech32, tip destination
	TipIndexWait     time.Duration `conf:"issuance.tip_wait"`
	TipProgressEvery time.Duration `conf:"issuance.tip_progress"`
}

// PriceFeedConfig holds the coin price poller settings.
type PriceFeedConfig struct {
	Enabled  bool          `conf:"pricefeed.enabled"`
	URL      string        `conf:"pricefeed.url"`
	Interval time.Duration `conf:"pricefeed.interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.cellforge
//	macOS:   ~/Library/Application Support/Cellforge
//	Windows: %APPDATA%\Cellforge
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cellforge"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Cellforge")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Cellforge")
		}
		return filepath.Join(home, "AppData", "Roaming", "Cellforge")
	default:
		return filepath.Join(home, ".cellforge")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the wallet keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// RegistryDir returns the local token registry database directory.
func (c *Config) RegistryDir() string {
	return filepath.Join(c.NetworkDataDir(), "registry")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "cellforge.conf")
}
