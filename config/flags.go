package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags. Flags override the config file,
// which overrides the built-in defaults.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string

	// RPC
	RPCURL string

	// Issuance
	FeeRate   uint64
	Collector string
	Creator   string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args (subcommand and its arguments)
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("forge-cli", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// RPC
	fs.StringVar(&f.RPCURL, "rpc-url", "", "Ledger node RPC URL")

	// Issuance
	fs.Uint64Var(&f.FeeRate, "fee-rate", 0, "Fee rate in base units per transaction byte")
	fs.StringVar(&f.Collector, "collector", "", "Platform fee collector address")
	fs.StringVar(&f.Creator, "creator", "", "Creator tip destination address")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = PrintUsage

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "log-json" {
			f.SetLogJSON = true
		}
	})

	f.Args = fs.Args()
	return f
}

// ApplyFlags applies parsed flags on top of a Config.
func ApplyFlags(cfg *Config, f *Flags) error {
	if f.Testnet {
		cfg.Network = Testnet
	}
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.RPCURL != "" {
		cfg.RPC.URL = f.RPCURL
	}
	if f.FeeRate != 0 {
		cfg.Issuance.FeeRate = f.FeeRate
	}
	if f.Collector != "" {
		cfg.Issuance.CollectorAddress = f.Collector
	}
	if f.Creator != "" {
		cfg.Issuance.CreatorAddress = f.Creator
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
	return nil
}

// PrintUsage writes the CLI usage text to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `forge-cli - token issuance client

Usage:
  forge-cli [flags] <command> [args]

Commands:
  wallet create <name>        Create a new wallet
  wallet restore <name>       Restore a wallet from a mnemonic
  wallet address <name>       Show a wallet's receive address
  wallet list                 List wallets in the keystore
  balance <name>              Show a wallet's spendable balance
  issue <name>                Issue a new token (interactive)
  tokens                      List tokens recorded by this client

Flags:
  --network <name>     Network type: mainnet or testnet
  --testnet            Shorthand for --network=testnet
  --datadir <path>     Data directory
  --config, -c <path>  Config file path
  --rpc-url <url>      Ledger node RPC URL
  --fee-rate <n>       Fee rate in base units per byte
  --collector <addr>   Platform fee collector address
  --creator <addr>     Creator tip destination address
  --log-level <level>  Log level: debug, info, warn, error
  --log-file <path>    Log file path
  --log-json           Output logs as JSON
  --help, -h           Show this help
  --version            Show version
`)
}
