package config

import (
	"fmt"
	"net/url"

	"github.com/cellforge/cellforge/pkg/types"
)

// Validate checks runtime client config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}

	if cfg.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}
	u, err := url.Parse(cfg.RPC.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("rpc.url must be an http(s) URL")
	}
	if cfg.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be positive")
	}

	if cfg.Issuance.FeeRate == 0 {
		return fmt.Errorf("issuance.feerate must be positive")
	}
	if cfg.Issuance.PlatformFeeCoins == 0 {
		return fmt.Errorf("issuance.fee must be positive")
	}
	if err := validateAddress(cfg.Issuance.CollectorAddress, "issuance.collector"); err != nil {
		return err
	}
	if err := validateAddress(cfg.Issuance.CreatorAddress, "issuance.creator"); err != nil {
		return err
	}
	if cfg.Issuance.TipIndexWait <= 0 {
		return fmt.Errorf("issuance.tip_wait must be positive")
	}
	if cfg.Issuance.TipProgressEvery <= 0 {
		return fmt.Errorf("issuance.tip_progress must be positive")
	}

	if cfg.PriceFeed.Enabled {
		if cfg.PriceFeed.URL == "" {
			return fmt.Errorf("pricefeed.url is required when the price feed is enabled")
		}
		if cfg.PriceFeed.Interval <= 0 {
			return fmt.Errorf("pricefeed.interval must be positive")
		}
	}

	return nil
}

// validateAddress checks a bech32 address field. Empty is allowed here:
// the workflows that need the address fail with a clear error at use time,
// so an operator who never issues tokens does not have to configure one.
func validateAddress(s, field string) error {
	if s == "" {
		return nil
	}
	if _, err := types.ParseAddress(s); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

// AddressHRP returns the bech32 HRP for a network.
func AddressHRP(network NetworkType) string {
	if network == Testnet {
		return types.TestnetHRP
	}
	return types.MainnetHRP
}
