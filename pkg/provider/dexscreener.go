package provider

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DexScreener is chain-agnostic: both adapters use it for pool selection,
// token metadata, and deployer-history market enrichment. Batch lookups
// take up to 29 addresses per request (API limit).
const dexScreenerBatchSize = 29

type dexPair struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	FDV           float64 `json:"fdv"`
	MarketCap     float64 `json:"marketCap"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
}

func (p dexPair) marketCapUSD() float64 {
	if p.FDV > 0 {
		return p.FDV
	}
	return p.MarketCap
}

// dexPairs fetches all pairs for a comma-joined token list, filtered to one
// DexScreener chain id.
func (h *httpClient) dexPairs(ctx context.Context, apiBase, chainID string, tokens []string) []dexPair {
	var result struct {
		Pairs []dexPair `json:"pairs"`
	}
	url := apiBase + "/latest/dex/tokens/" + strings.Join(tokens, ",")
	if err := h.getJSON(ctx, url, nil, &result); err != nil {
		log.Warn().Err(err).Msg("dexscreener token lookup failed")
		return nil
	}
	return filterPairs(result.Pairs, chainID)
}

// dexSearch runs the free-text pair search, used for discovering tokens
// associated with a deployer wallet.
func (h *httpClient) dexSearch(ctx context.Context, apiBase, chainID, query string) []dexPair {
	var result struct {
		Pairs []dexPair `json:"pairs"`
	}
	url := apiBase + "/latest/dex/search?q=" + query
	if err := h.getJSON(ctx, url, nil, &result); err != nil {
		log.Warn().Err(err).Msg("dexscreener search failed")
		return nil
	}
	return filterPairs(result.Pairs, chainID)
}

func filterPairs(pairs []dexPair, chainID string) []dexPair {
	out := pairs[:0]
	for _, p := range pairs {
		if p.ChainID == chainID {
			out = append(out, p)
		}
	}
	return out
}

// bestPair picks the highest-liquidity pair; ties keep the first found.
func bestPair(pairs []dexPair) *dexPair {
	if len(pairs) == 0 {
		return nil
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Liquidity.USD > pairs[j].Liquidity.USD
	})
	return &pairs[0]
}

// liquidityFromPairs converts the best pair into a LiquiditySnapshot.
func liquidityFromPairs(pairs []dexPair) *LiquiditySnapshot {
	best := bestPair(pairs)
	if best == nil {
		return nil
	}
	return &LiquiditySnapshot{
		LiquidityUSD: best.Liquidity.USD,
		Volume24hUSD: best.Volume.H24,
		MarketCapUSD: best.marketCapUSD(),
		PriceUSD:     parseFloat(best.PriceUSD),
		DEX:          best.DexID,
	}
}

// dexMarkets batch-resolves market data for a token list, keyed by address.
// Tokens absent from every response stay absent from the map.
func (h *httpClient) dexMarkets(ctx context.Context, apiBase, chainID string, tokens []string) map[string]Market {
	markets := make(map[string]Market, len(tokens))
	for i := 0; i < len(tokens); i += dexScreenerBatchSize {
		end := i + dexScreenerBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		for _, p := range h.dexPairs(ctx, apiBase, chainID, tokens[i:end]) {
			addr := p.BaseToken.Address
			if addr == "" {
				continue
			}
			if _, ok := markets[addr]; ok {
				continue
			}
			markets[addr] = Market{
				Name:         p.BaseToken.Name,
				Symbol:       p.BaseToken.Symbol,
				MarketCapUSD: p.marketCapUSD(),
				Volume24hUSD: p.Volume.H24,
				Listed:       true,
			}
		}
	}
	return markets
}
