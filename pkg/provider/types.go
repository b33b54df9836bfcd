// Package provider fetches raw on-chain signals from third-party data
// sources and normalizes them into a common shape. One adapter per chain
// family; both fail softly: a transport or parse error yields an empty or
// nil result, never an error that crosses the adapter boundary.
package provider

import (
	"context"
	"time"

	"github.com/chain-sentinel/pkg/config"
)

// HolderRecord is one entry of a "largest accounts" query. SharePct is
// derived from the token's total supply at fetch time.
type HolderRecord struct {
	Owner     string  `json:"owner"`
	RawAmount string  `json:"raw_amount"`
	UIAmount  float64 `json:"ui_amount"`
	SharePct  float64 `json:"share_pct"`
}

// LiquiditySnapshot is the highest-liquidity pool found for a token.
type LiquiditySnapshot struct {
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	MarketCapUSD float64 `json:"market_cap_usd"`
	PriceUSD     float64 `json:"price_usd"`
	DEX          string  `json:"dex"`
}

// WalletActivityProfile summarizes wallet behavior over a bounded recent
// transaction sample. Percentages are sample-based estimates, not
// population statistics.
type WalletActivityProfile struct {
	WalletCount    int     `json:"wallet_count"`
	FreshWalletPct float64 `json:"fresh_wallet_pct"`
	ClusterPct     float64 `json:"cluster_pct"`
}

// TradingProfile counts heuristic adversarial-trading signals in the same
// bounded sample. Only available on Solana.
type TradingProfile struct {
	SuspectedBotWallets  int `json:"suspected_bot_wallets"`
	SandwichPatternCount int `json:"sandwich_pattern_count"`
}

type TokenMeta struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// DeployedToken is a token discovered in a deployer's launch history.
// CreatedAt may be zero when the discovery strategy has no timestamp;
// such entries are retained and treated as in-window.
type DeployedToken struct {
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Market is live DEX-aggregator market data for one token. Listed is false
// when no aggregator knows the token, the "dead token" signal.
type Market struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	MarketCapUSD float64 `json:"market_cap_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	Listed       bool    `json:"listed"`
}

// Provider is the per-chain adapter contract. Every method applies its own
// bounded timeout and returns a zero value ("unknown") on failure; callers
// must not read empty as "zero risk".
type Provider interface {
	Chain() config.Chain

	TokenMeta(ctx context.Context, token string) TokenMeta
	TopHolders(ctx context.Context, token string) []HolderRecord
	Liquidity(ctx context.Context, token string) *LiquiditySnapshot
	WalletActivity(ctx context.Context, token string) *WalletActivityProfile
	// TradingActivity returns nil on chains without a transaction-ordering
	// data source (all EVM chains today).
	TradingActivity(ctx context.Context, token string) *TradingProfile

	// Deployer resolves the wallet that created the token, or "" when no
	// tier of the fallback chain produces one.
	Deployer(ctx context.Context, token string) string
	DeployedTokens(ctx context.Context, deployer string, lookback time.Duration) []DeployedToken

	// FundingWallet resolves the wallet that first sent native currency to
	// holder, falling back to the fee payer of the holder's oldest known
	// transaction. Returns "" when unresolvable.
	FundingWallet(ctx context.Context, holder string) string

	// Markets batch-resolves live market data, keyed by token address.
	Markets(ctx context.Context, tokens []string) map[string]Market
}
