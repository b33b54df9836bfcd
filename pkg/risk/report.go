// Package risk turns normalized provider signals into bounded risk scores
// and a composite verdict. All scorers are pure functions over fetched
// data; a missing signal scores as its documented default, never as a
// fetch retry.
package risk

import (
	"sort"
	"time"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/deployer"
	"github.com/chain-sentinel/pkg/provider"
)

// SupplyProfile summarizes how concentrated the token supply is across the
// visible top holders.
type SupplyProfile struct {
	Top1Pct     float64 `json:"top1_pct"`
	Top10Pct    float64 `json:"top10_pct"`
	Gini        float64 `json:"gini"`
	HolderCount int     `json:"holder_count"`
}

// SupplyProfileFromHolders derives concentration stats from a top-holder
// list. Returns nil when no holders could be fetched: unknown, not safe.
func SupplyProfileFromHolders(holders []provider.HolderRecord) *SupplyProfile {
	if len(holders) == 0 {
		return nil
	}
	sorted := make([]provider.HolderRecord, len(holders))
	copy(sorted, holders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UIAmount > sorted[j].UIAmount
	})

	amounts := make([]float64, len(sorted))
	var top10 float64
	for i, h := range sorted {
		amounts[i] = h.UIAmount
		if i < 10 {
			top10 += h.SharePct
		}
	}
	return &SupplyProfile{
		Top1Pct:     round2(sorted[0].SharePct),
		Top10Pct:    round1(top10),
		Gini:        round2(Gini(amounts)),
		HolderCount: len(sorted),
	}
}

// Report is the full scan result for one token.
type Report struct {
	Address     string       `json:"address"`
	Chain       config.Chain `json:"chain"`
	TokenName   string       `json:"token_name"`
	TokenSymbol string       `json:"token_symbol"`

	Liquidity *provider.LiquiditySnapshot     `json:"liquidity"`
	Supply    *SupplyProfile                  `json:"supply"`
	Activity  *provider.WalletActivityProfile `json:"activity"`
	Trading   *provider.TradingProfile        `json:"trading"`
	Dev       *deployer.Report                `json:"dev,omitempty"`

	LiquidityScore int `json:"liquidity_score"`
	SupplyScore    int `json:"supply_score"`
	WalletScore    int `json:"wallet_score"`
	TradingScore   int `json:"trading_score"`

	Composite int    `json:"composite"`
	Label     string `json:"label"`
	Summary   string `json:"summary"`

	ScannedAt time.Time `json:"scanned_at"`
}

// Finalize computes every score, the composite, the label, and the summary
// from the report's fetched signals.
func (r *Report) Finalize() {
	r.LiquidityScore = ScoreLiquidity(r.Liquidity)
	r.SupplyScore = ScoreSupply(r.Supply)
	r.WalletScore = ScoreWallets(r.Activity)
	r.TradingScore = ScoreTrading(r.Trading)
	r.Composite = Composite(r.Chain, r.WalletScore, r.LiquidityScore, r.SupplyScore, r.TradingScore)
	r.Label = Label(r.Composite)
	r.Summary = Summarize(r)
}

func round1(f float64) float64 { return float64(int(f*10+0.5)) / 10 }
func round2(f float64) float64 { return float64(int(f*100+0.5)) / 100 }
