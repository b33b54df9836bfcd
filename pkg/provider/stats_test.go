package provider

import (
	"strconv"
	"testing"
	"time"

	"github.com/chain-sentinel/pkg/config"
)

func TestActivityFromSample(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	old := now.Add(-48 * time.Hour).Unix()
	recent := now.Add(-1 * time.Hour).Unix()

	txs := []heliusTx{
		{FeePayer: "A", Slot: 1, Timestamp: recent},
		{FeePayer: "B", Slot: 1, Timestamp: old},
		{FeePayer: "C", Slot: 1, Timestamp: old},
		{FeePayer: "D", Slot: 2, Timestamp: old},
		{FeePayer: "", Slot: 3, Timestamp: recent}, // unattributed, ignored
	}
	got := activityFromSample(txs, 50, now, 24*time.Hour)
	if got.WalletCount != 50 {
		t.Errorf("WalletCount = %d, want 50", got.WalletCount)
	}
	if got.FreshWalletPct != 25 {
		t.Errorf("FreshWalletPct = %v, want 25", got.FreshWalletPct)
	}
	// slot 1 has three distinct payers, slot 2 has one: 1 of 2 clustered.
	if got.ClusterPct != 50 {
		t.Errorf("ClusterPct = %v, want 50", got.ClusterPct)
	}
}

func TestActivityFromSampleEmpty(t *testing.T) {
	got := activityFromSample(nil, 10, time.Now(), 24*time.Hour)
	if got.FreshWalletPct != 0 || got.ClusterPct != 0 {
		t.Errorf("empty sample should yield zero percentages, got %+v", got)
	}
}

func TestTradingFromSample(t *testing.T) {
	txs := []heliusTx{
		// slot 1: X brackets Y, a sandwich.
		{FeePayer: "X", Slot: 1},
		{FeePayer: "Y", Slot: 1},
		{FeePayer: "X", Slot: 1},
		// X keeps firing: 5 appearances total makes it a suspected bot.
		{FeePayer: "X", Slot: 2},
		{FeePayer: "X", Slot: 3},
		{FeePayer: "X", Slot: 4},
		{FeePayer: "Z", Slot: 5},
	}
	got := tradingFromSample(txs)
	if got.SandwichPatternCount != 1 {
		t.Errorf("SandwichPatternCount = %d, want 1", got.SandwichPatternCount)
	}
	if got.SuspectedBotWallets != 1 {
		t.Errorf("SuspectedBotWallets = %d, want 1", got.SuspectedBotWallets)
	}
}

func TestTradingFromSampleNoSignals(t *testing.T) {
	txs := []heliusTx{
		{FeePayer: "A", Slot: 1},
		{FeePayer: "B", Slot: 2},
	}
	got := tradingFromSample(txs)
	if got.SandwichPatternCount != 0 || got.SuspectedBotWallets != 0 {
		t.Errorf("expected no signals, got %+v", got)
	}
}

func TestFunderFromCreationTx(t *testing.T) {
	const systemProgram = "11111111111111111111111111111111"

	mk := func(keys []struct {
		pubkey           string
		signer, writable bool
	}, pre, post []int64) *solParsedTx {
		tx := &solParsedTx{}
		for _, k := range keys {
			tx.Transaction.Message.AccountKeys = append(tx.Transaction.Message.AccountKeys, struct {
				Pubkey   string `json:"pubkey"`
				Signer   bool   `json:"signer"`
				Writable bool   `json:"writable"`
			}{k.pubkey, k.signer, k.writable})
		}
		if pre != nil {
			tx.Meta = &struct {
				PreBalances  []int64 `json:"preBalances"`
				PostBalances []int64 `json:"postBalances"`
			}{pre, post}
		}
		return tx
	}

	t.Run("balance diff finds sender", func(t *testing.T) {
		tx := mk([]struct {
			pubkey           string
			signer, writable bool
		}{
			{"funderA", true, true},
			{"holderB", false, true},
		}, []int64{10_000, 0}, []int64{5_000, 5_000})
		if got := funderFromCreationTx(tx, "holderB"); got != "funderA" {
			t.Errorf("got %q, want funderA", got)
		}
	})

	t.Run("infrastructure sender is skipped", func(t *testing.T) {
		tx := mk([]struct {
			pubkey           string
			signer, writable bool
		}{
			{systemProgram, false, true},
			{"realFunder", true, true},
			{"holderB", false, true},
		}, []int64{100, 10_000, 0}, []int64{50, 5_000, 5_050})
		if got := funderFromCreationTx(tx, "holderB"); got != "realFunder" {
			t.Errorf("got %q, want realFunder", got)
		}
	})

	t.Run("no meta falls back to fee payer", func(t *testing.T) {
		tx := mk([]struct {
			pubkey           string
			signer, writable bool
		}{
			{"payerC", true, true},
			{"holderB", false, true},
		}, nil, nil)
		if got := funderFromCreationTx(tx, "holderB"); got != "payerC" {
			t.Errorf("got %q, want payerC", got)
		}
	})
}

func TestEVMActivityFromTxs(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	old := now.Add(-72 * time.Hour).Unix()
	recent := now.Add(-2 * time.Hour).Unix()

	ts := func(v int64) string { return strconv.FormatInt(v, 10) }
	txs := []explorerTx{
		{From: "0xAAA", To: "0xBBB", TimeStamp: ts(recent)},
		{From: "0xAAA", To: "0xCCC", TimeStamp: ts(old)},
		{From: "0xAAA", To: "0xBBB", TimeStamp: ts(old)},
	}
	got := evmActivityFromTxs(txs, now, 24*time.Hour)
	if got.WalletCount != 3 {
		t.Errorf("WalletCount = %d, want 3", got.WalletCount)
	}
	if got.FreshWalletPct != 33.3 {
		t.Errorf("FreshWalletPct = %v, want 33.3", got.FreshWalletPct)
	}
	// 0xaaa sent three times: one repeat sender among three wallets.
	if got.ClusterPct != 33.3 {
		t.Errorf("ClusterPct = %v, want 33.3", got.ClusterPct)
	}
}

func TestEVMFunderFromTxs(t *testing.T) {
	zero := "0x0000000000000000000000000000000000000000"
	tests := []struct {
		name   string
		txs    []explorerTx
		holder string
		want   string
	}{
		{
			"first incoming transfer wins",
			[]explorerTx{
				{From: "0xDEAD", To: "0xH", Value: "0"},
				{From: "0xF1", To: "0xH", Value: "1000"},
			},
			"0xH", "0xf1",
		},
		{
			"infrastructure skipped",
			[]explorerTx{
				{From: zero, To: "0xH", Value: "500"},
				{From: "0xF2", To: "0xH", Value: "500"},
			},
			"0xH", "0xf2",
		},
		{
			"fallback to first sender",
			[]explorerTx{
				{From: "0xF3", To: "0xOther", Value: "100"},
			},
			"0xH", "0xf3",
		},
		{"no transactions", nil, "0xH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evmFunderFromTxs(tt.txs, tt.holder); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHoldersFromExplorer(t *testing.T) {
	entries := []explorerHolder{
		{Address: "0xBIG", Quantity: "600"},
		{Address: "0x0000000000000000000000000000000000000000", Quantity: "250"},
		{Address: "0xSMALL", Quantity: "150"},
	}

	t.Run("with supply", func(t *testing.T) {
		got := holdersFromExplorer(entries, "1000", config.ChainEthereum)
		if len(got) != 2 {
			t.Fatalf("expected 2 holders (zero address excluded), got %d", len(got))
		}
		if got[0].Owner != "0xbig" || got[0].SharePct != 60 {
			t.Errorf("top holder = %+v, want 0xbig at 60%%", got[0])
		}
	})

	t.Run("supply fallback to visible sum", func(t *testing.T) {
		got := holdersFromExplorer(entries, "", config.ChainEthereum)
		if len(got) != 2 {
			t.Fatalf("expected 2 holders, got %d", len(got))
		}
		if got[0].SharePct != 60 {
			t.Errorf("SharePct = %v, want 60", got[0].SharePct)
		}
	})

	t.Run("nothing parseable", func(t *testing.T) {
		bad := []explorerHolder{{Address: "0xA", Quantity: "not-a-number"}}
		if got := holdersFromExplorer(bad, "", config.ChainEthereum); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestBestPairAndLiquidity(t *testing.T) {
	if bestPair(nil) != nil {
		t.Error("bestPair(nil) should be nil")
	}
	pairs := []dexPair{
		{DexID: "shallow"},
		{DexID: "deep"},
	}
	pairs[0].Liquidity.USD = 100
	pairs[1].Liquidity.USD = 9_000
	pairs[1].FDV = 50_000
	pairs[1].PriceUSD = "0.0042"

	snap := liquidityFromPairs(pairs)
	if snap == nil {
		t.Fatal("expected snapshot")
	}
	if snap.DEX != "deep" || snap.LiquidityUSD != 9_000 {
		t.Errorf("picked wrong pair: %+v", snap)
	}
	if snap.MarketCapUSD != 50_000 {
		t.Errorf("MarketCapUSD = %v, want FDV 50000", snap.MarketCapUSD)
	}
	if snap.PriceUSD != 0.0042 {
		t.Errorf("PriceUSD = %v, want 0.0042", snap.PriceUSD)
	}
}

func TestUnixFlexible(t *testing.T) {
	if !unixFlexible(0).IsZero() {
		t.Error("zero stays zero")
	}
	sec := int64(1_700_000_000)
	if got := unixFlexible(sec); got.Unix() != sec {
		t.Errorf("seconds passthrough failed: %v", got)
	}
	if got := unixFlexible(sec * 1000); got.Unix() != sec {
		t.Errorf("milliseconds not normalized: %v", got)
	}
}

func TestTokenValue(t *testing.T) {
	tests := []struct {
		raw      string
		decimals int
		want     float64
	}{
		{"", 6, 0},
		{"0", 9, 0},
		{"1000000", 6, 1},
		{"1500000000", 9, 1.5},
		{"garbage", 6, 0},
	}
	for _, tt := range tests {
		if got := tokenValue(tt.raw, tt.decimals); got != tt.want {
			t.Errorf("tokenValue(%q, %d) = %v, want %v", tt.raw, tt.decimals, got, tt.want)
		}
	}
}

