// forge-cli is the command-line client for issuing fungible tokens on a
// cell-model ledger: wallet management, balance queries, and the multi-step
// issuance workflow.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cellforge/cellforge/config"
	"github.com/cellforge/cellforge/internal/balance"
	"github.com/cellforge/cellforge/internal/issuance"
	"github.com/cellforge/cellforge/internal/ledger"
	"github.com/cellforge/cellforge/internal/log"
	"github.com/cellforge/cellforge/internal/pricefeed"
	"github.com/cellforge/cellforge/internal/storage"
	"github.com/cellforge/cellforge/internal/token"
	"github.com/cellforge/cellforge/internal/wallet"
	"github.com/cellforge/cellforge/pkg/types"
	"github.com/asaskevich/EventBus"
	"golang.org/x/term"
)

const version = "0.3.0"

func main() {
	flags := config.ParseFlags()
	if flags.Help {
		config.PrintUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Printf("forge-cli %s\n", version)
		os.Exit(0)
	}

	cfg := loadConfig(flags)

	types.SetAddressHRP(config.AddressHRP(cfg.Network))

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	if len(flags.Args) == 0 {
		config.PrintUsage()
		os.Exit(1)
	}

	cmd := flags.Args[0]
	args := flags.Args[1:]

	switch cmd {
	case "wallet":
		cmdWallet(cfg, args)
	case "balance":
		cmdBalance(cfg, args)
	case "issue":
		cmdIssue(cfg, args)
	case "tokens":
		cmdTokens(cfg)
	case "help":
		config.PrintUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		config.PrintUsage()
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, and flags, then validates.
func loadConfig(flags *config.Flags) *config.Config {
	network := config.Mainnet
	if flags.Testnet || flags.Network == string(config.Testnet) {
		network = config.Testnet
	}
	cfg := config.Default(network)

	path := flags.Config
	if path == "" {
		if flags.DataDir != "" {
			cfg.DataDir = flags.DataDir
		}
		path = cfg.ConfigFile()
	}
	values, err := config.LoadFile(path)
	if err != nil {
		fatal("load config %s: %v", path, err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		fatal("apply config: %v", err)
	}
	if err := config.ApplyFlags(cfg, flags); err != nil {
		fatal("apply flags: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		fatal("invalid config: %v", err)
	}
	return cfg
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: forge-cli wallet <create|restore|address|list> [args]")
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(cfg, args[1:])
	case "restore":
		cmdWalletRestore(cfg, args[1:])
	case "address":
		cmdWalletAddress(cfg, args[1:])
	case "list":
		cmdWalletList(cfg)
	default:
		fatal("Unknown wallet command: %s\nUsage: forge-cli wallet <create|restore|address|list> [args]", args[0])
	}
}

func cmdWalletCreate(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: forge-cli wallet create <name>")
	}
	name := args[0]

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	password := readNewPassword()
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	createWalletFromSeed(cfg, name, seed, password)
}

func cmdWalletRestore(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: forge-cli wallet restore <name> (the mnemonic is prompted)")
	}
	name := args[0]

	fmt.Print("Enter mnemonic: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fatal("read mnemonic: %v", err)
	}
	mnemonic := strings.TrimSpace(line)

	if !wallet.ValidateMnemonic(mnemonic) {
		fatal("invalid mnemonic")
	}

	password := readNewPassword()
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	createWalletFromSeed(cfg, name, seed, password)
}

func createWalletFromSeed(cfg *config.Config, name string, seed, password []byte) {
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		fatal("derive master key: %v", err)
	}
	hdKey, err := master.DeriveAddress(0, wallet.ChangeExternal, 0)
	if err != nil {
		fatal("derive address: %v", err)
	}
	addr := hdKey.Address()

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	if err := ks.Create(name, seed, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}
	for i := range seed {
		seed[i] = 0
	}

	if err := ks.AddAccount(name, wallet.AccountEntry{
		Index:   0,
		Name:    "Default",
		Address: addr.String(),
	}); err != nil {
		fatal("add account: %v", err)
	}

	fmt.Printf("\nWallet created: %s\n", name)
	fmt.Printf("Address: %s\n", addr.String())
}

func cmdWalletAddress(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: forge-cli wallet address <name>")
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	accounts, err := ks.ListAccounts(args[0])
	if err != nil {
		fatal("list accounts: %v", err)
	}
	for _, a := range accounts {
		fmt.Printf("[%d] %s  %s\n", a.Index, a.Address, a.Name)
	}
}

func cmdWalletList(cfg *config.Config) {
	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: forge-cli balance <wallet>")
	}

	db, err := storage.NewBadger(cfg.RegistryDir())
	if err != nil {
		fatal("open registry: %v", err)
	}
	defer db.Close()

	session := connectWallet(cfg, args[0], wallet.NewSessionCache(db))
	defer session.Disconnect()

	client := ledger.NewRPCWithTimeout(cfg.RPC.URL, cfg.RPC.Timeout)
	resolver := balance.NewResolver(client)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Address: %s\n", session.Address.String())
	fmt.Printf("Balance: %s\n", resolver.Resolve(ctx, session.Lock))
}

// ── issue ───────────────────────────────────────────────────────────────

func cmdIssue(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	name := fs.String("name", "", "Token name (optional, defaults to symbol)")
	symbol := fs.String("symbol", "", "Token symbol (1-8 alphanumeric chars)")
	amountStr := fs.String("amount", "", "Total supply in display units (e.g. 21000000 or 0.5)")
	decimals := fs.Uint("decimals", 8, "Decimal places (0-18)")
	tip := fs.Uint("tip", 0, "Creator tip percentage (1-25, 0 disables)")
	fs.Parse(args)

	if *walletName == "" || *symbol == "" || *amountStr == "" {
		fatal("Usage: forge-cli issue --wallet <name> --symbol <SYM> --amount <n> [--name <n>] [--decimals <n>] [--tip <pct>]")
	}
	if cfg.Issuance.CollectorAddress == "" {
		fatal("issuance.collector is not configured for %s", cfg.Network)
	}
	if *tip > 0 && cfg.Issuance.CreatorAddress == "" {
		fatal("issuance.creator is not configured for %s", cfg.Network)
	}

	db, err := storage.NewBadger(cfg.RegistryDir())
	if err != nil {
		fatal("open registry: %v", err)
	}
	defer db.Close()

	session := connectWallet(cfg, *walletName, wallet.NewSessionCache(db))
	defer session.Disconnect()

	client := ledger.NewRPCWithTimeout(cfg.RPC.URL, cfg.RPC.Timeout)

	bus := EventBus.New()
	// Print every status event as it happens.
	_ = bus.Subscribe(issuance.TopicStatus, func(ev issuance.Event) {
		fmt.Printf("[%s] %s\n", ev.State, ev.Message)
	})

	orch := issuance.New(client, session, token.NewStore(db), issuanceConfig(cfg), bus)

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.PriceFeed.Enabled {
		poller := pricefeed.New(cfg.PriceFeed.URL, cfg.PriceFeed.Interval, bus)
		_ = bus.Subscribe(pricefeed.TopicPrice, func(q pricefeed.Quote) {
			fmt.Printf("1 coin = $%.4f\n", q.PriceUSD)
		})
		go poller.Run(ctx)
	}

	sess, err := orch.StartIssuance(ctx, issuance.Params{
		Name:          *name,
		Symbol:        *symbol,
		Amount:        *amountStr,
		Decimals:      uint8(*decimals),
		TipEnabled:    *tip > 0,
		TipPercentage: uint8(*tip),
		Network:       string(cfg.Network),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nIssuance failed: %v\n", err)
		printTransactions(sess)
		os.Exit(1)
	}

	fmt.Printf("\nToken issued!\n")
	fmt.Printf("  Token ID: %s\n", sess.TokenID().String())
	fmt.Printf("  Symbol:   %s\n", sess.Params.Symbol)
	fmt.Printf("  Supply:   %s base units\n", sess.BaseUnits().String())
	printTransactions(sess)
}

func printTransactions(sess *issuance.Session) {
	refs := sess.Transactions()
	if len(refs) == 0 {
		return
	}
	fmt.Println("Transactions:")
	for _, r := range refs {
		status := "pending"
		if r.Confirmed {
			status = "confirmed"
		}
		fmt.Printf("  %-5s %s (%s)\n", r.Role, r.Hash.String(), status)
	}
}

func issuanceConfig(cfg *config.Config) issuance.Config {
	collector, err := types.ParseAddress(cfg.Issuance.CollectorAddress)
	if err != nil {
		fatal("issuance.collector: %v", err)
	}
	var creator types.Address
	if cfg.Issuance.CreatorAddress != "" {
		creator, err = types.ParseAddress(cfg.Issuance.CreatorAddress)
		if err != nil {
			fatal("issuance.creator: %v", err)
		}
	}
	return issuance.Config{
		FeeRate:          cfg.Issuance.FeeRate,
		PlatformFee:      cfg.Issuance.PlatformFeeCoins * types.UnitsPerCoin,
		CollectorAddress: collector,
		CreatorAddress:   creator,
		TipIndexWait:     cfg.Issuance.TipIndexWait,
		TipProgressEvery: cfg.Issuance.TipProgressEvery,
	}
}

// ── tokens ──────────────────────────────────────────────────────────────

func cmdTokens(cfg *config.Config) {
	db, err := storage.NewBadger(cfg.RegistryDir())
	if err != nil {
		fatal("open registry: %v", err)
	}
	defer db.Close()

	entries, err := token.NewStore(db).List()
	if err != nil {
		fatal("list tokens: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No tokens recorded by this client.")
		return
	}

	fmt.Printf("Tokens: %d\n\n", len(entries))
	for i, e := range entries {
		fmt.Printf("  [%d] %s (%s)\n", i, e.Metadata.Name, e.Metadata.Symbol)
		fmt.Printf("      ID:       %s\n", e.ID.String())
		fmt.Printf("      Decimals: %d\n", e.Metadata.Decimals)
		fmt.Printf("      Supply:   %s\n", formatSupply(e.Metadata.Supply, e.Metadata.Decimals))
		fmt.Printf("      Mint Tx:  %s\n", e.Metadata.MintTx.String())
		fmt.Println()
	}
}

func formatSupply(baseUnits string, decimals uint8) string {
	n, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok {
		return baseUnits
	}
	return token.FormatAmount(n, decimals)
}

// ── helpers ─────────────────────────────────────────────────────────────

// connectWallet opens the keystore, prompts for the password, and returns a
// live session. When a cache is given, the previous session identity for the
// network is shown first, then reconciled against the fresh connection: a
// stale entry is cleared, and the new identity is saved for the next run.
func connectWallet(cfg *config.Config, name string, cache *wallet.SessionCache) *wallet.Session {
	network := string(cfg.Network)
	var cached wallet.CachedSession
	var haveCached bool
	if cache != nil {
		c, ok, err := cache.Load(network)
		switch {
		case err != nil:
			log.Wallet.Warn().Err(err).Msg("session cache unreadable")
		case ok:
			cached, haveCached = c, true
			fmt.Printf("Last session: %s (wallet %q)\n", c.Address.String(), c.Wallet)
		}
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	session, err := wallet.Connect(ks, name, 0, password, network)
	if err != nil {
		fatal("%v", err)
	}

	if cache != nil {
		if haveCached && !cached.Matches(session) {
			if err := cache.Clear(network); err != nil {
				log.Wallet.Warn().Err(err).Msg("stale session cache entry not cleared")
			}
		}
		err := cache.Save(network, wallet.CachedSession{
			Address: session.Address,
			Lock:    session.Lock,
			Wallet:  name,
			Account: 0,
		})
		if err != nil {
			log.Wallet.Warn().Err(err).Msg("session cache save failed")
		}
	}
	return session
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return password, err
}

func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
