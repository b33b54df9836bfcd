package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainEthereum Chain = "ethereum"
	ChainBase     Chain = "base"
	ChainUnknown  Chain = "unknown"
)

func AllEVMChains() []Chain {
	return []Chain{ChainBase, ChainEthereum}
}

// IsEVM reports whether the chain uses hex addresses and explorer-style APIs.
func (c Chain) IsEVM() bool {
	return c == ChainEthereum || c == ChainBase
}

type Config struct {
	// Solana data sources
	HeliusAPIKey string
	HeliusRPCURL string
	HeliusAPIURL string

	BirdeyeAPIKey string
	BirdeyeAPIURL string

	// DEX aggregator (no key required)
	DexScreenerAPI string
	PumpFunAPI     string

	// EVM RPCs (used for contract probes when explorer keys are missing)
	EVMRPC map[Chain]string

	// Block explorer API keys
	ExplorerKeys map[Chain]string

	// Fetch tuning
	ProviderTimeout time.Duration
	TxSampleLimit   int
	TopHolderLimit  int

	// Signal windows and thresholds
	FreshWalletWindow time.Duration
	DevLookbackDays   int
	MaxDeployedTokens int
	ClusterMinHolders int

	// Watchlist
	DBPath          string
	WatchSchedule   string
	ScoreAlertDelta int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HeliusAPIKey: os.Getenv("HELIUS_API_KEY"),
		HeliusAPIURL: envOr("HELIUS_API_URL", "https://api.helius.xyz/v0"),

		BirdeyeAPIKey: os.Getenv("BIRDEYE_API_KEY"),
		BirdeyeAPIURL: envOr("BIRDEYE_API_URL", "https://public-api.birdeye.so"),

		DexScreenerAPI: envOr("DEXSCREENER_API", "https://api.dexscreener.com"),
		PumpFunAPI:     envOr("PUMPFUN_API", "https://frontend-api.pump.fun"),

		ProviderTimeout: time.Duration(envInt("PROVIDER_TIMEOUT_SECONDS", 8)) * time.Second,
		TxSampleLimit:   envInt("TX_SAMPLE_LIMIT", 100),
		TopHolderLimit:  envInt("TOP_HOLDER_LIMIT", 20),

		FreshWalletWindow: time.Duration(envInt("FRESH_WALLET_WINDOW_HOURS", 24)) * time.Hour,
		DevLookbackDays:   envInt("DEV_LOOKBACK_DAYS", 60),
		MaxDeployedTokens: envInt("MAX_DEPLOYED_TOKENS", 25),
		ClusterMinHolders: envInt("CLUSTER_MIN_HOLDERS", 3),

		DBPath:          envOr("DB_PATH", "sentinel.db"),
		WatchSchedule:   envOr("WATCH_SCHEDULE", "@every 10m"),
		ScoreAlertDelta: envInt("SCORE_ALERT_DELTA", 10),
	}

	cfg.HeliusRPCURL = envOr("HELIUS_RPC_URL",
		"https://mainnet.helius-rpc.com/?api-key="+cfg.HeliusAPIKey)

	cfg.EVMRPC = map[Chain]string{
		ChainEthereum: envOr("ETH_RPC_URL", "https://eth.llamarpc.com"),
		ChainBase:     envOr("BASE_RPC_URL", "https://mainnet.base.org"),
	}

	cfg.ExplorerKeys = map[Chain]string{
		ChainEthereum: os.Getenv("ETHERSCAN_API_KEY"),
		ChainBase:     os.Getenv("BASESCAN_API_KEY"),
	}

	return cfg, nil
}

func (c *Config) GetExplorerURL(chain Chain) string {
	switch chain {
	case ChainEthereum:
		return "https://api.etherscan.io/api"
	case ChainBase:
		return "https://api.basescan.org/api"
	default:
		return ""
	}
}

func (c *Config) GetExplorerKey(chain Chain) string {
	return c.ExplorerKeys[chain]
}

func (c *Config) Validate() error {
	hasSolana := c.HeliusAPIKey != ""
	hasEVM := c.ExplorerKeys[ChainEthereum] != "" || c.ExplorerKeys[ChainBase] != ""

	if !hasSolana && !hasEVM {
		return fmt.Errorf("no API credentials configured — need at least one of: HELIUS_API_KEY (Solana), ETHERSCAN_API_KEY or BASESCAN_API_KEY (EVM)")
	}
	return nil
}

// --- Known infrastructure addresses ---
// A funding edge pointing at any of these is plumbing, not a funder: system
// programs, token programs, DEX programs and routers, wrapped native assets.

var (
	pumpFunProgram = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	raydiumAMMv4   = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
)

var excludedSolanaFunders = map[string]bool{
	solana.SystemProgramID.String():                    true,
	solana.TokenProgramID.String():                     true,
	solana.SPLAssociatedTokenAccountProgramID.String(): true,
	solana.SolMint.String():                            true,
	solana.ComputeBudget.String():                      true,
	pumpFunProgram.String():                            true,
	raydiumAMMv4.String():                              true,
}

var excludedEVMFunders = map[string]bool{
	"0x0000000000000000000000000000000000000000": true, // zero address (mint/burn)
	"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": true, // WETH
	"0x4200000000000000000000000000000000000006": true, // WETH (Base)
	"0x3fc91a3afd70395cd496c647d5a6cc9d4b2b7fad": true, // Uniswap universal router
	"0x7a250d5630b4cf539739df2c5dacb4c659f2488d": true, // Uniswap V2 router
}

// IsExcludedFunder reports whether addr is a known infrastructure address
// that must never be counted as a wallet's funding source.
func IsExcludedFunder(chain Chain, addr string) bool {
	if addr == "" {
		return true
	}
	if chain == ChainSolana {
		return excludedSolanaFunders[addr]
	}
	return excludedEVMFunders[strings.ToLower(addr)]
}

// PumpFunProgram returns the pump.fun bonding-curve program address.
func PumpFunProgram() string { return pumpFunProgram.String() }

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
