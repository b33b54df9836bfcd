package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/provider"
)

type stubProvider struct {
	chain     config.Chain
	meta      provider.TokenMeta
	holders   []provider.HolderRecord
	liquidity *provider.LiquiditySnapshot
	activity  *provider.WalletActivityProfile
	trading   *provider.TradingProfile
	deployer  string
	deployed  []provider.DeployedToken
	markets   map[string]provider.Market
}

func (s *stubProvider) Chain() config.Chain { return s.chain }
func (s *stubProvider) TokenMeta(ctx context.Context, token string) provider.TokenMeta {
	return s.meta
}
func (s *stubProvider) TopHolders(ctx context.Context, token string) []provider.HolderRecord {
	return s.holders
}
func (s *stubProvider) Liquidity(ctx context.Context, token string) *provider.LiquiditySnapshot {
	return s.liquidity
}
func (s *stubProvider) WalletActivity(ctx context.Context, token string) *provider.WalletActivityProfile {
	return s.activity
}
func (s *stubProvider) TradingActivity(ctx context.Context, token string) *provider.TradingProfile {
	return s.trading
}
func (s *stubProvider) Deployer(ctx context.Context, token string) string { return s.deployer }
func (s *stubProvider) DeployedTokens(ctx context.Context, deployer string, lookback time.Duration) []provider.DeployedToken {
	return s.deployed
}
func (s *stubProvider) FundingWallet(ctx context.Context, holder string) string { return "" }
func (s *stubProvider) Markets(ctx context.Context, tokens []string) map[string]provider.Market {
	return s.markets
}

func testConfig() *config.Config {
	return &config.Config{DevLookbackDays: 60, MaxDeployedTokens: 25}
}

func TestScanUnsupportedChain(t *testing.T) {
	sc := NewWithProviders(testConfig(), map[config.Chain]provider.Provider{})
	_, err := sc.Scan(context.Background(), "0xdead", config.ChainEthereum)
	if !errors.Is(err, ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}
}

func TestScanHighRiskToken(t *testing.T) {
	p := &stubProvider{
		chain: config.ChainSolana,
		meta:  provider.TokenMeta{Name: "Sus Coin", Symbol: "SUS"},
		holders: []provider.HolderRecord{
			{Owner: "w1", UIAmount: 850, SharePct: 85},
			{Owner: "w2", UIAmount: 100, SharePct: 10},
			{Owner: "w3", UIAmount: 50, SharePct: 5},
		},
		liquidity: &provider.LiquiditySnapshot{LiquidityUSD: 600},
		activity:  &provider.WalletActivityProfile{WalletCount: 40, FreshWalletPct: 90, ClusterPct: 70},
		trading:   &provider.TradingProfile{SandwichPatternCount: 8, SuspectedBotWallets: 3},
		deployer:  "dev1",
	}
	sc := NewWithProviders(testConfig(), map[config.Chain]provider.Provider{
		config.ChainSolana: p,
	})

	r, err := sc.Scan(context.Background(), "mint", config.ChainSolana)
	if err != nil {
		t.Fatal(err)
	}
	if r.TokenName != "Sus Coin" || r.TokenSymbol != "SUS" {
		t.Errorf("meta not propagated: %q %q", r.TokenName, r.TokenSymbol)
	}
	if r.Supply == nil || r.Supply.Top1Pct != 85 {
		t.Errorf("supply profile wrong: %+v", r.Supply)
	}
	if r.Label != "HIGH" && r.Label != "CRITICAL" {
		t.Errorf("expected elevated risk, got %s (%d)", r.Label, r.Composite)
	}
	if r.Dev == nil {
		t.Error("deployer history missing")
	} else if r.Dev.Rating != "NEW_DEPLOYER" {
		t.Errorf("Dev.Rating = %s, want NEW_DEPLOYER", r.Dev.Rating)
	}
	if r.Summary == "" {
		t.Error("summary missing")
	}
}

func TestScanDegradesGracefully(t *testing.T) {
	// Every signal fetch fails: the scan must still produce a scored report.
	p := &stubProvider{chain: config.ChainBase}
	sc := NewWithProviders(testConfig(), map[config.Chain]provider.Provider{
		config.ChainBase: p,
	})

	r, err := sc.Scan(context.Background(), "0xtoken", config.ChainBase)
	if err != nil {
		t.Fatal(err)
	}
	if r.Supply != nil || r.Activity != nil || r.Trading != nil || r.Liquidity != nil {
		t.Errorf("expected nil profiles, got %+v", r)
	}
	if r.Dev != nil {
		t.Error("deployer history should be absent when unresolvable")
	}
	if r.LiquidityScore != 80 {
		t.Errorf("LiquidityScore = %d, want the unknown-pool default 80", r.LiquidityScore)
	}
	if r.Label == "" || r.Summary == "" {
		t.Error("report must always carry a label and summary")
	}
}
