package config

import "time"

// DefaultMainnet returns the default client configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			URL:     "http://127.0.0.1:8114",
			Timeout: 30 * time.Second,
		},
		Issuance: IssuanceConfig{
			FeeRate:          1,
			PlatformFeeCoins: 300,
			// Platform accounts are provisioned per network; mainnet
			// addresses are filled at deployment.
			CollectorAddress: "",
			CreatorAddress:   "",
			TipIndexWait:     60 * time.Second,
			TipProgressEvery: 10 * time.Second,
		},
		PriceFeed: PriceFeedConfig{
			Enabled:  false,
			URL:      "",
			Interval: 60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default client configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.RPC.URL = "http://127.0.0.1:8115"
	return cfg
}

// Default returns the default client configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
