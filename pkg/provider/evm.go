package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chain-sentinel/pkg/config"
)

// EVM fetches from the chain's Etherscan-style block explorer and
// DexScreener. One instance per chain (Ethereum, Base); they differ only in
// explorer endpoint and API key.
type EVM struct {
	cfg   *config.Config
	chain config.Chain
	http  *httpClient
}

func NewEVM(cfg *config.Config, chain config.Chain) *EVM {
	return &EVM{cfg: cfg, chain: chain, http: newHTTPClient(cfg.ProviderTimeout)}
}

func (e *EVM) Chain() config.Chain { return e.chain }

func dexChainID(c config.Chain) string {
	// DexScreener chain ids happen to match our names for all three chains.
	return string(c)
}

// explorerGet calls an Etherscan-family endpoint and unmarshals the result
// field. Explorers signal errors by replacing the result array with a
// string, so a failed unmarshal of result is treated as "no data".
func (e *EVM) explorerGet(ctx context.Context, params string, out interface{}) error {
	apiURL := e.cfg.GetExplorerURL(e.chain)
	if apiURL == "" {
		return fmt.Errorf("no explorer for chain %s", e.chain)
	}
	url := fmt.Sprintf("%s?%s&apikey=%s", apiURL, params, e.cfg.GetExplorerKey(e.chain))

	var resp struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := e.http.getJSON(ctx, url, nil, &resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("explorer %s: %s", resp.Status, resp.Message)
	}
	return nil
}

// ── Token metadata ──────────────────────────────────────────

func (e *EVM) TokenMeta(ctx context.Context, token string) TokenMeta {
	meta := TokenMeta{Name: "Unknown", Symbol: "???"}
	pairs := e.http.dexPairs(ctx, e.cfg.DexScreenerAPI, dexChainID(e.chain), []string{token})
	if best := bestPair(pairs); best != nil && best.BaseToken.Name != "" {
		meta.Name = best.BaseToken.Name
		meta.Symbol = best.BaseToken.Symbol
	}
	return meta
}

// ── Top holders ─────────────────────────────────────────────

type explorerHolder struct {
	Address  string `json:"TokenHolderAddress"`
	Quantity string `json:"TokenHolderQuantity"`
}

func (e *EVM) TopHolders(ctx context.Context, token string) []HolderRecord {
	var entries []explorerHolder
	params := fmt.Sprintf("module=token&action=tokenholderlist&contractaddress=%s&page=1&offset=%d",
		token, e.cfg.TopHolderLimit)
	if err := e.explorerGet(ctx, params, &entries); err != nil {
		log.Warn().Err(err).Str("token", abbrev(token)).Msg("tokenholderlist failed")
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	var supplyStr string
	if err := e.explorerGet(ctx, "module=stats&action=tokensupply&contractaddress="+token, &supplyStr); err != nil {
		supplyStr = ""
	}
	return holdersFromExplorer(entries, supplyStr, e.chain)
}

// holdersFromExplorer converts explorer holder rows into records with
// supply shares. When the supply endpoint failed, the visible holders' sum
// stands in for total supply and shares become upper bounds.
func holdersFromExplorer(entries []explorerHolder, supplyStr string, chain config.Chain) []HolderRecord {
	amounts := make([]float64, len(entries))
	var visibleSum float64
	for i, h := range entries {
		amounts[i] = parseFloat(h.Quantity)
		visibleSum += amounts[i]
	}
	supply := parseFloat(supplyStr)
	if supply <= 0 {
		supply = visibleSum
	}
	if supply <= 0 {
		return nil
	}

	holders := make([]HolderRecord, 0, len(entries))
	for i, h := range entries {
		if config.IsExcludedFunder(chain, h.Address) {
			continue
		}
		holders = append(holders, HolderRecord{
			Owner:     strings.ToLower(h.Address),
			RawAmount: h.Quantity,
			UIAmount:  amounts[i],
			SharePct:  amounts[i] / supply * 100,
		})
	}
	sort.SliceStable(holders, func(i, j int) bool {
		return holders[i].UIAmount > holders[j].UIAmount
	})
	return holders
}

// ── Liquidity ───────────────────────────────────────────────

func (e *EVM) Liquidity(ctx context.Context, token string) *LiquiditySnapshot {
	return liquidityFromPairs(e.http.dexPairs(ctx, e.cfg.DexScreenerAPI, dexChainID(e.chain), []string{token}))
}

// ── Wallet activity ─────────────────────────────────────────

type explorerTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	ContractAddress string `json:"contractAddress"`
}

func (e *EVM) WalletActivity(ctx context.Context, token string) *WalletActivityProfile {
	var txs []explorerTx
	params := fmt.Sprintf("module=account&action=tokentx&contractaddress=%s&page=1&offset=%d&sort=desc",
		token, e.cfg.TxSampleLimit)
	if err := e.explorerGet(ctx, params, &txs); err != nil {
		log.Warn().Err(err).Str("token", abbrev(token)).Msg("tokentx failed")
		return nil
	}
	if len(txs) == 0 {
		return nil
	}
	return evmActivityFromTxs(txs, time.Now(), e.cfg.FreshWalletWindow)
}

// evmActivityFromTxs derives the activity profile from a token-transfer
// sample. Fresh wallets are receivers seen inside the window; clustering is
// approximated by repeat senders since EVM explorers expose no slot-level
// ordering.
func evmActivityFromTxs(txs []explorerTx, now time.Time, freshWindow time.Duration) *WalletActivityProfile {
	cutoff := now.Add(-freshWindow).Unix()

	wallets := map[string]bool{}
	fresh := map[string]bool{}
	senderCounts := map[string]int{}

	for _, tx := range txs {
		from := strings.ToLower(tx.From)
		to := strings.ToLower(tx.To)
		ts := parseInt64(tx.TimeStamp)

		if !config.IsExcludedFunder(config.ChainEthereum, from) {
			wallets[from] = true
			senderCounts[from]++
		}
		if to != "" && !config.IsExcludedFunder(config.ChainEthereum, to) {
			wallets[to] = true
			if ts > cutoff {
				fresh[to] = true
			}
		}
	}
	if len(wallets) == 0 {
		return nil
	}

	repeat := 0
	for _, n := range senderCounts {
		if n >= 3 {
			repeat++
		}
	}

	freshPct := float64(len(fresh)) / float64(len(wallets)) * 100
	clusterPct := float64(repeat) / float64(len(wallets)) * 100
	if clusterPct > 100 {
		clusterPct = 100
	}
	return &WalletActivityProfile{
		WalletCount:    len(wallets),
		FreshWalletPct: round1(freshPct),
		ClusterPct:     round1(clusterPct),
	}
}

// TradingActivity is unavailable on EVM chains: explorers expose no
// intra-block transaction ordering, so bracket detection cannot run.
func (e *EVM) TradingActivity(ctx context.Context, token string) *TradingProfile {
	return nil
}

// ── Deployer resolution ─────────────────────────────────────

func (e *EVM) Deployer(ctx context.Context, token string) string {
	var creations []struct {
		ContractCreator string `json:"contractCreator"`
	}
	params := "module=contract&action=getcontractcreation&contractaddresses=" + token
	if err := e.explorerGet(ctx, params, &creations); err == nil && len(creations) > 0 {
		if c := creations[0].ContractCreator; c != "" {
			return strings.ToLower(c)
		}
	}

	// Fallback: sender of the contract's first transaction. Weak signal; an
	// early interactor can masquerade as the creator.
	var txs []explorerTx
	params = fmt.Sprintf("module=account&action=txlist&address=%s&page=1&offset=1&sort=asc", token)
	if err := e.explorerGet(ctx, params, &txs); err != nil {
		log.Warn().Err(err).Str("token", abbrev(token)).Msg("deployer lookup failed")
		return ""
	}
	if len(txs) > 0 && txs[0].From != "" {
		return strings.ToLower(txs[0].From)
	}
	return ""
}

// DeployedTokens scans the deployer's recent transactions for contract
// creations (empty "to" field) inside the lookback window.
func (e *EVM) DeployedTokens(ctx context.Context, deployer string, lookback time.Duration) []DeployedToken {
	var txs []explorerTx
	params := fmt.Sprintf("module=account&action=txlist&address=%s&page=1&offset=50&sort=desc", deployer)
	if err := e.explorerGet(ctx, params, &txs); err != nil {
		log.Warn().Err(err).Str("deployer", abbrev(deployer)).Msg("txlist failed")
		return nil
	}

	cutoff := time.Now().Add(-lookback)
	var tokens []DeployedToken
	for _, tx := range txs {
		if tx.To != "" || tx.ContractAddress == "" {
			continue
		}
		created := parseUnixStr(tx.TimeStamp)
		if !created.IsZero() && created.Before(cutoff) {
			continue
		}
		tokens = append(tokens, DeployedToken{
			Address:   strings.ToLower(tx.ContractAddress),
			CreatedAt: created,
		})
		if len(tokens) >= e.cfg.MaxDeployedTokens {
			break
		}
	}
	return tokens
}

// ── Funding-wallet resolution ───────────────────────────────

// FundingWallet returns the sender of the holder's first incoming native
// transfer, skipping known infrastructure; the very first transaction's
// sender is the fallback.
func (e *EVM) FundingWallet(ctx context.Context, holder string) string {
	var txs []explorerTx
	params := fmt.Sprintf("module=account&action=txlist&address=%s&page=1&offset=10&sort=asc", holder)
	if err := e.explorerGet(ctx, params, &txs); err != nil {
		log.Warn().Err(err).Str("holder", abbrev(holder)).Msg("funding lookup failed")
		return ""
	}
	return evmFunderFromTxs(txs, holder)
}

func evmFunderFromTxs(txs []explorerTx, holder string) string {
	holder = strings.ToLower(holder)
	for _, tx := range txs {
		from := strings.ToLower(tx.From)
		if strings.ToLower(tx.To) == holder && tx.Value != "0" && tx.Value != "" &&
			from != holder && !config.IsExcludedFunder(config.ChainEthereum, from) {
			return from
		}
	}
	if len(txs) > 0 {
		from := strings.ToLower(txs[0].From)
		if from != holder && !config.IsExcludedFunder(config.ChainEthereum, from) {
			return from
		}
	}
	return ""
}

// ── Market enrichment ───────────────────────────────────────

// Markets batch-resolves live market data. Keys are lowercased so callers
// can join against explorer-sourced (lowercase) addresses regardless of the
// checksum casing DexScreener returns.
func (e *EVM) Markets(ctx context.Context, tokens []string) map[string]Market {
	raw := e.http.dexMarkets(ctx, e.cfg.DexScreenerAPI, dexChainID(e.chain), tokens)
	markets := make(map[string]Market, len(raw))
	for addr, m := range raw {
		markets[strings.ToLower(addr)] = m
	}
	return markets
}
