package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chain-sentinel/pkg/config"
)

// Solana fetches from Helius (RPC + enhanced transaction API), Birdeye, and
// DexScreener, with pump.fun as a launchpad-specific fallback.
type Solana struct {
	cfg  *config.Config
	http *httpClient
}

func NewSolana(cfg *config.Config) *Solana {
	return &Solana{cfg: cfg, http: newHTTPClient(cfg.ProviderTimeout)}
}

func (s *Solana) Chain() config.Chain { return config.ChainSolana }

// ── Token metadata ──────────────────────────────────────────

func (s *Solana) TokenMeta(ctx context.Context, token string) TokenMeta {
	meta := TokenMeta{Name: "Unknown", Symbol: "???"}
	pairs := s.http.dexPairs(ctx, s.cfg.DexScreenerAPI, "solana", []string{token})
	if best := bestPair(pairs); best != nil && best.BaseToken.Name != "" {
		meta.Name = best.BaseToken.Name
		meta.Symbol = best.BaseToken.Symbol
	}
	return meta
}

// ── Top holders ─────────────────────────────────────────────

type solTokenAmount struct {
	Address  string   `json:"address"`
	Amount   string   `json:"amount"`
	Decimals int      `json:"decimals"`
	UIAmount *float64 `json:"uiAmount"`
}

func (a solTokenAmount) ui() float64 {
	if a.UIAmount != nil {
		return *a.UIAmount
	}
	return tokenValue(a.Amount, a.Decimals)
}

func (s *Solana) totalSupply(ctx context.Context, mint string) float64 {
	var value struct {
		Value solTokenAmount `json:"value"`
	}
	if err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getTokenSupply", []interface{}{mint}, &value); err != nil {
		log.Warn().Err(err).Str("mint", abbrev(mint)).Msg("getTokenSupply failed")
		return 0
	}
	return value.Value.ui()
}

// TopHolders returns the largest token accounts resolved to owner wallets,
// capped by the RPC at 20. Empty means "could not fetch", not "no holders".
func (s *Solana) TopHolders(ctx context.Context, token string) []HolderRecord {
	supply := s.totalSupply(ctx, token)
	if supply == 0 {
		return nil
	}

	var largest struct {
		Value []solTokenAmount `json:"value"`
	}
	if err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getTokenLargestAccounts", []interface{}{token}, &largest); err != nil {
		log.Warn().Err(err).Str("mint", abbrev(token)).Msg("getTokenLargestAccounts failed")
		return nil
	}
	if len(largest.Value) == 0 {
		return nil
	}

	accounts := largest.Value
	if len(accounts) > s.cfg.TopHolderLimit {
		accounts = accounts[:s.cfg.TopHolderLimit]
	}

	// Token accounts are not wallets; resolve each to its owner.
	addrs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		addrs = append(addrs, a.Address)
	}
	var multi struct {
		Value []*struct {
			Data struct {
				Parsed struct {
					Info struct {
						Owner string `json:"owner"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}
	if err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getMultipleAccounts",
		[]interface{}{addrs, map[string]string{"encoding": "jsonParsed"}}, &multi); err != nil {
		log.Warn().Err(err).Msg("getMultipleAccounts failed")
		return nil
	}

	var holders []HolderRecord
	for i, acc := range multi.Value {
		if acc == nil || i >= len(accounts) {
			continue
		}
		owner := acc.Data.Parsed.Info.Owner
		if owner == "" || config.IsExcludedFunder(config.ChainSolana, owner) {
			continue
		}
		ui := accounts[i].ui()
		holders = append(holders, HolderRecord{
			Owner:     owner,
			RawAmount: accounts[i].Amount,
			UIAmount:  ui,
			SharePct:  ui / supply * 100,
		})
	}
	return holders
}

// ── Liquidity ───────────────────────────────────────────────

// Liquidity prefers Birdeye's token overview, falling back to the best
// DexScreener pair when no Birdeye key is configured or the call fails.
func (s *Solana) Liquidity(ctx context.Context, token string) *LiquiditySnapshot {
	if s.cfg.BirdeyeAPIKey != "" {
		var result struct {
			Data struct {
				Liquidity float64 `json:"liquidity"`
				V24hUSD   float64 `json:"v24hUSD"`
				Price     float64 `json:"price"`
				MC        float64 `json:"mc"`
			} `json:"data"`
		}
		url := s.cfg.BirdeyeAPIURL + "/defi/token_overview?address=" + token
		headers := map[string]string{"X-API-KEY": s.cfg.BirdeyeAPIKey, "x-chain": "solana"}
		if err := s.http.getJSON(ctx, url, headers, &result); err == nil && result.Data.Liquidity > 0 {
			return &LiquiditySnapshot{
				LiquidityUSD: result.Data.Liquidity,
				Volume24hUSD: result.Data.V24hUSD,
				MarketCapUSD: result.Data.MC,
				PriceUSD:     result.Data.Price,
				DEX:          "birdeye",
			}
		}
	}
	return liquidityFromPairs(s.http.dexPairs(ctx, s.cfg.DexScreenerAPI, "solana", []string{token}))
}

// ── Wallet activity & adversarial trading ───────────────────

type heliusTx struct {
	Signature      string `json:"signature"`
	Timestamp      int64  `json:"timestamp"`
	Slot           int64  `json:"slot"`
	FeePayer       string `json:"feePayer"`
	TokenTransfers []struct {
		Mint            string  `json:"mint"`
		FromUserAccount string  `json:"fromUserAccount"`
		ToUserAccount   string  `json:"toUserAccount"`
		TokenAmount     float64 `json:"tokenAmount"`
	} `json:"tokenTransfers"`
	Instructions []struct {
		ProgramID string   `json:"programId"`
		Accounts  []string `json:"accounts"`
	} `json:"instructions"`
}

// recentTxs fetches the token's bounded recent-transaction sample from the
// Helius enhanced API. txType may be empty for all types.
func (s *Solana) recentTxs(ctx context.Context, address, txType string, before string) []heliusTx {
	url := fmt.Sprintf("%s/addresses/%s/transactions?api-key=%s&limit=%d",
		s.cfg.HeliusAPIURL, address, s.cfg.HeliusAPIKey, s.cfg.TxSampleLimit)
	if txType != "" {
		url += "&type=" + txType
	}
	if before != "" {
		url += "&before=" + before
	}
	var txs []heliusTx
	if err := s.http.getJSON(ctx, url, nil, &txs); err != nil {
		log.Warn().Err(err).Str("addr", abbrev(address)).Msg("helius tx fetch failed")
		return nil
	}
	return txs
}

func (s *Solana) WalletActivity(ctx context.Context, token string) *WalletActivityProfile {
	// Holder count from the token-accounts index.
	var accounts struct {
		TokenAccounts []struct {
			Owner string `json:"owner"`
		} `json:"token_accounts"`
	}
	err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getTokenAccounts", map[string]interface{}{
		"mint":           token,
		"limit":          s.cfg.TxSampleLimit,
		"displayOptions": map[string]bool{"showZeroBalance": false},
	}, &accounts)
	if err != nil {
		log.Warn().Err(err).Str("mint", abbrev(token)).Msg("getTokenAccounts failed")
		return nil
	}
	walletCount := len(accounts.TokenAccounts)
	if walletCount == 0 {
		return nil
	}

	txs := s.recentTxs(ctx, token, "TRANSFER", "")
	return activityFromSample(txs, walletCount, time.Now(), s.cfg.FreshWalletWindow)
}

// activityFromSample derives fresh-wallet and same-slot-cluster percentages
// from a transaction sample. Pure; factored out for testing.
func activityFromSample(txs []heliusTx, walletCount int, now time.Time, freshWindow time.Duration) *WalletActivityProfile {
	cutoff := now.Add(-freshWindow).Unix()

	all := map[string]bool{}
	recent := map[string]bool{}
	slots := map[int64][]string{}

	for _, tx := range txs {
		if tx.FeePayer == "" {
			continue
		}
		all[tx.FeePayer] = true
		slots[tx.Slot] = append(slots[tx.Slot], tx.FeePayer)
		if tx.Timestamp > cutoff {
			recent[tx.FeePayer] = true
		}
	}

	freshPct := 0.0
	if len(all) > 0 {
		freshPct = float64(len(recent)) / float64(len(all)) * 100
	}

	// A slot with >2 distinct fee payers is a co-occurrence signal.
	clustered := 0
	for _, payers := range slots {
		distinct := map[string]bool{}
		for _, p := range payers {
			distinct[p] = true
		}
		if len(distinct) > 2 {
			clustered++
		}
	}
	clusterPct := 0.0
	if len(slots) > 0 {
		clusterPct = float64(clustered) / float64(len(slots)) * 100
		if clusterPct > 100 {
			clusterPct = 100
		}
	}

	return &WalletActivityProfile{
		WalletCount:    walletCount,
		FreshWalletPct: round1(freshPct),
		ClusterPct:     round1(clusterPct),
	}
}

func (s *Solana) TradingActivity(ctx context.Context, token string) *TradingProfile {
	txs := s.recentTxs(ctx, token, "", "")
	if txs == nil {
		return nil
	}
	return tradingFromSample(txs)
}

// tradingFromSample detects bracket (sandwich) patterns and repeat fee
// payers in a slot-ordered sample. A heuristic, not a ground-truth MEV
// detector.
func tradingFromSample(txs []heliusTx) *TradingProfile {
	slots := map[int64][]string{}
	payerCounts := map[string]int{}
	for _, tx := range txs {
		slots[tx.Slot] = append(slots[tx.Slot], tx.FeePayer)
		payerCounts[tx.FeePayer]++
	}

	sandwiches := 0
	for _, payers := range slots {
		if len(payers) >= 3 && payers[0] != "" && payers[0] == payers[len(payers)-1] {
			sandwiches++
		}
	}

	bots := 0
	for payer, n := range payerCounts {
		if payer != "" && n >= 5 {
			bots++
		}
	}

	return &TradingProfile{SuspectedBotWallets: bots, SandwichPatternCount: sandwiches}
}

// ── Deployer resolution ─────────────────────────────────────

// Deployer resolves the token's creator with a three-tier fallback:
// mint/freeze authority, then the signer of the creation transaction, then
// the Helius-reported fee payer. Authority revocation is common, so a
// missing authority must fall through rather than read as "no deployer".
func (s *Solana) Deployer(ctx context.Context, token string) string {
	// Tier 1: on-chain authority fields.
	var info struct {
		Value struct {
			Data struct {
				Parsed struct {
					Info struct {
						MintAuthority   string `json:"mintAuthority"`
						FreezeAuthority string `json:"freezeAuthority"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}
	if err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getAccountInfo",
		[]interface{}{token, map[string]string{"encoding": "jsonParsed"}}, &info); err == nil {
		if a := info.Value.Data.Parsed.Info.MintAuthority; a != "" && a != "null" {
			return a
		}
		if a := info.Value.Data.Parsed.Info.FreezeAuthority; a != "" && a != "null" {
			return a
		}
	}

	// Tier 2: first signer of the creation (oldest) transaction.
	oldest := s.oldestSignature(ctx, token)
	if oldest == "" {
		return ""
	}
	tx := s.getTransaction(ctx, oldest)
	if tx != nil {
		for _, key := range tx.Transaction.Message.AccountKeys {
			if key.Signer && key.Writable && key.Pubkey != token {
				return key.Pubkey
			}
		}
	}

	// Tier 3: enhanced API fee payer for the same signature.
	var parsed []struct {
		FeePayer string `json:"feePayer"`
	}
	url := fmt.Sprintf("%s/transactions/?api-key=%s", s.cfg.HeliusAPIURL, s.cfg.HeliusAPIKey)
	if err := s.http.postJSON(ctx, url, nil,
		map[string][]string{"transactions": {oldest}}, &parsed); err == nil {
		if len(parsed) > 0 && parsed[0].FeePayer != "" && parsed[0].FeePayer != token {
			return parsed[0].FeePayer
		}
	}
	return ""
}

// oldestSignature returns the last (oldest) signature known for an address.
func (s *Solana) oldestSignature(ctx context.Context, address string) string {
	var sigs []struct {
		Signature string `json:"signature"`
	}
	if err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getSignaturesForAddress",
		[]interface{}{address, map[string]interface{}{"limit": 1000, "commitment": "finalized"}}, &sigs); err != nil {
		log.Warn().Err(err).Str("addr", abbrev(address)).Msg("getSignaturesForAddress failed")
		return ""
	}
	if len(sigs) == 0 {
		return ""
	}
	return sigs[len(sigs)-1].Signature
}

type solParsedTx struct {
	Transaction struct {
		Message struct {
			AccountKeys []struct {
				Pubkey   string `json:"pubkey"`
				Signer   bool   `json:"signer"`
				Writable bool   `json:"writable"`
			} `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
	Meta *struct {
		PreBalances  []int64 `json:"preBalances"`
		PostBalances []int64 `json:"postBalances"`
	} `json:"meta"`
}

func (s *Solana) getTransaction(ctx context.Context, signature string) *solParsedTx {
	var tx solParsedTx
	if err := s.http.rpcCall(ctx, s.cfg.HeliusRPCURL, "getTransaction",
		[]interface{}{signature, map[string]interface{}{
			"encoding":                       "jsonParsed",
			"maxSupportedTransactionVersion": 0,
		}}, &tx); err != nil {
		log.Warn().Err(err).Msg("getTransaction failed")
		return nil
	}
	if len(tx.Transaction.Message.AccountKeys) == 0 {
		return nil
	}
	return &tx
}

// ── Deployed-token discovery ────────────────────────────────

// DeployedTokens merges three discovery strategies (DexScreener search,
// the pump.fun user-coins API, and a raw Helius transaction scan), then
// de-duplicates and filters to the lookback window. Entries with unknown
// timestamps are kept to avoid false negatives in a deployer's history.
func (s *Solana) DeployedTokens(ctx context.Context, deployer string, lookback time.Duration) []DeployedToken {
	seen := map[string]bool{}
	var tokens []DeployedToken

	add := func(mint string, ts time.Time) {
		if mint == "" || seen[mint] {
			return
		}
		seen[mint] = true
		tokens = append(tokens, DeployedToken{Address: mint, CreatedAt: ts})
	}

	// Strategy 1: DexScreener indexes launches by the deployer address.
	for _, p := range s.http.dexSearch(ctx, s.cfg.DexScreenerAPI, "solana", deployer) {
		add(p.BaseToken.Address, unixFlexible(p.PairCreatedAt))
	}

	// Strategy 2: pump.fun user-created coins.
	var coins []struct {
		Mint             string `json:"mint"`
		CreatedTimestamp int64  `json:"created_timestamp"`
	}
	url := fmt.Sprintf("%s/coins/user-created-coins/%s?offset=0&limit=50&includeNsfw=true",
		s.cfg.PumpFunAPI, deployer)
	if err := s.http.getJSON(ctx, url, map[string]string{"User-Agent": "Mozilla/5.0"}, &coins); err != nil {
		log.Warn().Err(err).Msg("pump.fun user coins failed")
	}
	for _, c := range coins {
		add(c.Mint, unixFlexible(c.CreatedTimestamp))
	}

	// Strategy 3: only when the indexers came up nearly empty, page through
	// the deployer's transactions looking for mint events.
	if len(tokens) < 3 {
		s.scanDeployerTxs(ctx, deployer, lookback, add)
	}

	cutoff := time.Now().Add(-lookback)
	filtered := tokens[:0]
	for _, t := range tokens {
		if t.CreatedAt.IsZero() || !t.CreatedAt.Before(cutoff) {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) > s.cfg.MaxDeployedTokens {
		filtered = filtered[:s.cfg.MaxDeployedTokens]
	}
	return filtered
}

func (s *Solana) scanDeployerTxs(ctx context.Context, deployer string, lookback time.Duration, add func(string, time.Time)) {
	cutoff := time.Now().Add(-lookback).Unix()
	before := ""
	for page := 0; page < 3; page++ {
		txs := s.recentTxs(ctx, deployer, "", before)
		if len(txs) == 0 {
			return
		}
		var oldest int64
		for _, tx := range txs {
			if oldest == 0 || tx.Timestamp < oldest {
				oldest = tx.Timestamp
			}
			// Mint events show as token transfers with no source account.
			for _, tt := range tx.TokenTransfers {
				if tt.Mint != "" && tt.FromUserAccount == "" {
					add(tt.Mint, unixFlexible(tx.Timestamp))
				}
			}
			// pump.fun create instructions carry the mint as account 0.
			for _, ix := range tx.Instructions {
				if ix.ProgramID == config.PumpFunProgram() && len(ix.Accounts) > 0 && len(ix.Accounts[0]) > 30 {
					add(ix.Accounts[0], unixFlexible(tx.Timestamp))
				}
			}
		}
		if oldest != 0 && oldest < cutoff {
			return
		}
		before = txs[len(txs)-1].Signature
		if before == "" {
			return
		}
	}
}

// ── Funding-wallet resolution ───────────────────────────────

// FundingWallet inspects the holder's oldest transaction for an incoming
// SOL transfer and returns the sender; when no balance movement is found it
// falls back to the transaction's fee payer, a weaker signal.
func (s *Solana) FundingWallet(ctx context.Context, holder string) string {
	oldest := s.oldestSignature(ctx, holder)
	if oldest == "" {
		return ""
	}
	tx := s.getTransaction(ctx, oldest)
	if tx == nil {
		return ""
	}
	return funderFromCreationTx(tx, holder)
}

// funderFromCreationTx is the pure core of funding resolution: whoever lost
// lamports while the holder gained them in its first transaction.
func funderFromCreationTx(tx *solParsedTx, holder string) string {
	keys := tx.Transaction.Message.AccountKeys

	if tx.Meta != nil {
		holderIdx := -1
		for i, key := range keys {
			if key.Pubkey == holder {
				holderIdx = i
				break
			}
		}
		if holderIdx >= 0 && holderIdx < len(tx.Meta.PreBalances) && holderIdx < len(tx.Meta.PostBalances) {
			if tx.Meta.PostBalances[holderIdx] > tx.Meta.PreBalances[holderIdx] {
				for i := range keys {
					if i == holderIdx || i >= len(tx.Meta.PreBalances) || i >= len(tx.Meta.PostBalances) {
						continue
					}
					if tx.Meta.PostBalances[i] < tx.Meta.PreBalances[i] &&
						!config.IsExcludedFunder(config.ChainSolana, keys[i].Pubkey) {
						return keys[i].Pubkey
					}
				}
			}
		}
	}

	// Fallback: the fee payer of the creation tx is usually the funder.
	for _, key := range keys {
		if key.Signer && key.Writable && key.Pubkey != holder &&
			!config.IsExcludedFunder(config.ChainSolana, key.Pubkey) {
			return key.Pubkey
		}
	}
	return ""
}

// ── Market enrichment ───────────────────────────────────────

// Markets batch-resolves live market data, filling DexScreener misses from
// the pump.fun coin endpoint (bonded-but-unlisted launches live there).
func (s *Solana) Markets(ctx context.Context, tokens []string) map[string]Market {
	markets := s.http.dexMarkets(ctx, s.cfg.DexScreenerAPI, "solana", tokens)

	var missing []string
	for _, t := range tokens {
		if _, ok := markets[t]; !ok {
			missing = append(missing, t)
		}
	}
	sort.Strings(missing)
	if len(missing) > 10 {
		missing = missing[:10] // pump.fun has no batch endpoint; cap the fan-out
	}
	for _, mint := range missing {
		var coin struct {
			Name         string  `json:"name"`
			Symbol       string  `json:"symbol"`
			USDMarketCap float64 `json:"usd_market_cap"`
		}
		url := s.cfg.PumpFunAPI + "/coins/" + mint
		if err := s.http.getJSON(ctx, url, map[string]string{"User-Agent": "Mozilla/5.0"}, &coin); err != nil {
			continue
		}
		if coin.Name == "" {
			continue
		}
		markets[mint] = Market{
			Name:         coin.Name,
			Symbol:       coin.Symbol,
			MarketCapUSD: coin.USDMarketCap,
			Listed:       coin.USDMarketCap > 0,
		}
	}
	return markets
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
