package risk

import (
	"strings"
	"testing"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/provider"
)

func TestSummarizeCritical(t *testing.T) {
	r := &Report{
		Chain:     config.ChainSolana,
		Liquidity: &provider.LiquiditySnapshot{LiquidityUSD: 400},
		Supply:    &SupplyProfile{Top1Pct: 35, Top10Pct: 88, Gini: 0.95},
		Activity:  &provider.WalletActivityProfile{FreshWalletPct: 75, ClusterPct: 60},
		Trading:   &provider.TradingProfile{SandwichPatternCount: 10, SuspectedBotWallets: 2},
	}
	r.Finalize()

	if r.Label != "CRITICAL" {
		t.Fatalf("expected CRITICAL label, got %s (composite %d)", r.Label, r.Composite)
	}
	for _, want := range []string{
		"Key concerns:",
		"critically low liquidity",
		"top holder controls 35.0%",
		"top 10 holders control 88.0%",
		"sandwich-attack patterns",
		"suspected bot wallets",
		"less than a day old",
	} {
		if !strings.Contains(r.Summary, want) {
			t.Errorf("summary missing %q:\n%s", want, r.Summary)
		}
	}
}

func TestSummarizeClean(t *testing.T) {
	r := &Report{
		Chain:     config.ChainSolana,
		Liquidity: &provider.LiquiditySnapshot{LiquidityUSD: 150_000},
		Supply:    &SupplyProfile{Top1Pct: 3, Top10Pct: 18, Gini: 0.2},
		Activity:  &provider.WalletActivityProfile{FreshWalletPct: 5, ClusterPct: 2},
		Trading:   &provider.TradingProfile{},
	}
	r.Finalize()

	if r.Label != "LOW" {
		t.Fatalf("expected LOW label, got %s (composite %d)", r.Label, r.Composite)
	}
	if !strings.Contains(r.Summary, "No major red flags") {
		t.Errorf("clean token should have no concerns:\n%s", r.Summary)
	}
	if !strings.Contains(r.Summary, "LP lock") {
		t.Errorf("expected default advice:\n%s", r.Summary)
	}
}

func TestSummarizeMissingSignals(t *testing.T) {
	// Everything unfetchable: only the liquidity default drives the score.
	r := &Report{Chain: config.ChainBase}
	r.Finalize()

	if r.LiquidityScore != 80 {
		t.Errorf("LiquidityScore = %d, want 80", r.LiquidityScore)
	}
	if r.Summary == "" {
		t.Error("summary should never be empty")
	}
}
