package deployer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/provider"
)

type stubProvider struct {
	chain    config.Chain
	deployer string
	deployed []provider.DeployedToken
	markets  map[string]provider.Market
}

func (s *stubProvider) Chain() config.Chain { return s.chain }
func (s *stubProvider) TokenMeta(ctx context.Context, token string) provider.TokenMeta {
	return provider.TokenMeta{}
}
func (s *stubProvider) TopHolders(ctx context.Context, token string) []provider.HolderRecord {
	return nil
}
func (s *stubProvider) Liquidity(ctx context.Context, token string) *provider.LiquiditySnapshot {
	return nil
}
func (s *stubProvider) WalletActivity(ctx context.Context, token string) *provider.WalletActivityProfile {
	return nil
}
func (s *stubProvider) TradingActivity(ctx context.Context, token string) *provider.TradingProfile {
	return nil
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

func TestHistoryNoDeployer(t *testing.T) {
	p := &stubProvider{chain: config.ChainSolana}
	_, err := NewAnalyzer(testConfig(), p).History(context.Background(), "mint")
	if !errors.Is(err, ErrNoDeployer) {
		t.Fatalf("expected ErrNoDeployer, got %v", err)
	}
}

func TestHistoryFirstLaunch(t *testing.T) {
	p := &stubProvider{chain: config.ChainSolana, deployer: "dev1"}
	rep, err := NewAnalyzer(testConfig(), p).History(context.Background(), "mint")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 0 || rep.Rating != RatingNew {
		t.Errorf("got total=%d rating=%s, want 0/NEW_DEPLOYER", rep.Total, rep.Rating)
	}
}

func TestHistoryProvenBeatsDeadRatio(t *testing.T) {
	// One $2M success among three abandoned launches still rates PROVEN.
	p := &stubProvider{
		chain:    config.ChainSolana,
		deployer: "dev1",
		deployed: []provider.DeployedToken{
			{Address: "winner"}, {Address: "dead1"}, {Address: "dead2"}, {Address: "dead3"},
		},
		markets: map[string]provider.Market{
			"winner": {Symbol: "WIN", MarketCapUSD: 2_000_000, Listed: true},
		},
	}
	rep, err := NewAnalyzer(testConfig(), p).History(context.Background(), "mint")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rating != RatingProven {
		t.Errorf("Rating = %s, want PROVEN", rep.Rating)
	}
	if rep.DeadCount != 3 {
		t.Errorf("DeadCount = %d, want 3", rep.DeadCount)
	}
	if rep.Tokens[0].Symbol != "WIN" {
		t.Errorf("tokens not sorted by market cap: %+v", rep.Tokens[0])
	}
}

func TestHistorySerialDeployer(t *testing.T) {
	p := &stubProvider{
		chain:    config.ChainSolana,
		deployer: "dev1",
		deployed: []provider.DeployedToken{
			{Address: "d1"}, {Address: "d2"}, {Address: "d3"}, {Address: "d4"},
		},
		markets: map[string]provider.Market{},
	}
	rep, err := NewAnalyzer(testConfig(), p).History(context.Background(), "mint")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rating != RatingSerial {
		t.Errorf("Rating = %s, want SERIAL_DEPLOYER", rep.Rating)
	}
}

func TestHistoryExcludesScannedToken(t *testing.T) {
	p := &stubProvider{
		chain:    config.ChainSolana,
		deployer: "dev1",
		deployed: []provider.DeployedToken{
			{Address: "mint"}, // the token under scan
			{Address: "other"},
		},
		markets: map[string]provider.Market{
			"other": {MarketCapUSD: 5_000, Listed: true},
		},
	}
	rep, err := NewAnalyzer(testConfig(), p).History(context.Background(), "mint")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 1 {
		t.Errorf("Total = %d, want 1 (scanned token excluded)", rep.Total)
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		dead      int
		biggestMC float64
		want      Rating
	}{
		{"no history", 0, 0, 0, RatingNew},
		{"proven", 5, 4, 600_000, RatingProven},
		{"proven at boundary", 1, 0, 500_000, RatingProven},
		{"some record", 2, 1, 150_000, RatingSome},
		{"serial", 5, 4, 2_000, RatingSerial},
		{"serial needs volume", 2, 2, 0, RatingLow},
		{"low record", 3, 1, 50_000, RatingLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.total, tt.dead, tt.biggestMC); got != tt.want {
				t.Errorf("Rate(%d, %d, %v) = %s, want %s", tt.total, tt.dead, tt.biggestMC, got, tt.want)
			}
		})
	}
}
