package risk

import (
	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/provider"
)

// Score thresholds are hand-tuned against live rug pulls and legitimate
// launches. Every scorer returns 0..100; the convention throughout is
// higher = riskier.

// ScoreLiquidity rates exit feasibility. An unknown pool is nearly as bad
// as an empty one: if no aggregator can see liquidity, neither can a
// seller.
func ScoreLiquidity(snap *provider.LiquiditySnapshot) int {
	if snap == nil {
		return 80
	}
	liq := snap.LiquidityUSD
	switch {
	case liq == 0:
		return 80
	case liq < 1_000:
		return 90
	case liq < 5_000:
		return 70
	case liq < 20_000:
		return 40
	default:
		return 20
	}
}

// ScoreSupply rates holder concentration from the top-10 share bracket plus
// a Gini term. nil means holders could not be fetched; concentration is
// then unknown and contributes nothing rather than a phantom penalty.
func ScoreSupply(s *SupplyProfile) int {
	if s == nil {
		return 0
	}
	score := 0
	switch {
	case s.Top10Pct > 80:
		score += 60
	case s.Top10Pct > 50:
		score += 40
	case s.Top10Pct > 30:
		score += 20
	}
	score += int(s.Gini * 40)
	if score > 100 {
		score = 100
	}
	return score
}

// ScoreWallets rates fresh-wallet share and same-block clustering, each
// capped at half the scale so neither signal alone can max the score.
func ScoreWallets(a *provider.WalletActivityProfile) int {
	if a == nil {
		return 0
	}
	fresh := a.FreshWalletPct * 0.5
	if fresh > 50 {
		fresh = 50
	}
	cluster := a.ClusterPct * 0.8
	if cluster > 50 {
		cluster = 50
	}
	return int(fresh + cluster)
}

// ScoreTrading rates adversarial-trading pressure: sandwich patterns
// dominate, bot wallets top up.
func ScoreTrading(t *provider.TradingProfile) int {
	if t == nil {
		return 0
	}
	sandwich := t.SandwichPatternCount * 5
	if sandwich > 60 {
		sandwich = 60
	}
	bots := t.SuspectedBotWallets * 20
	if bots > 40 {
		bots = 40
	}
	score := sandwich + bots
	if score > 100 {
		score = 100
	}
	return score
}

// Composite blends the sub-scores with per-chain weights. EVM chains have
// no trading signal, so its weight is redistributed onto the signals that
// exist there.
func Composite(chain config.Chain, walletScore, liquidityScore, supplyScore, tradingScore int) int {
	if chain.IsEVM() {
		return int(float64(liquidityScore)*0.35 +
			float64(supplyScore)*0.35 +
			float64(walletScore)*0.30)
	}
	return int(float64(walletScore)*0.30 +
		float64(liquidityScore)*0.25 +
		float64(supplyScore)*0.25 +
		float64(tradingScore)*0.20)
}

// Label maps a composite score to its risk band.
func Label(composite int) string {
	switch {
	case composite <= 30:
		return "LOW"
	case composite <= 60:
		return "MEDIUM"
	case composite <= 80:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}
