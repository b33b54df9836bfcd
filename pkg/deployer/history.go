// Package deployer reconstructs a token creator's launch history and rates
// their track record.
package deployer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/provider"
)

// ErrNoDeployer means every resolution tier came up empty for the token.
var ErrNoDeployer = errors.New("deployer could not be resolved")

// Rating buckets a deployer's track record. Market-cap evidence outranks
// the dead-token ratio: one genuine success outweighs a string of failed
// experiments.
type Rating string

const (
	RatingNew    Rating = "NEW_DEPLOYER"
	RatingProven Rating = "PROVEN"
	RatingSome   Rating = "SOME_RECORD"
	RatingSerial Rating = "SERIAL_DEPLOYER"
	RatingLow    Rating = "LOW_RECORD"
)

// A deployment is dead when no aggregator lists it or its market cap has
// collapsed below this floor.
const deadMarketCapUSD = 1_000

const (
	provenMarketCapUSD = 500_000
	someMarketCapUSD   = 100_000
	serialDeadRatio    = 0.7
)

// TokenRecord is one prior launch with its current market state.
type TokenRecord struct {
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	CreatedAt    time.Time `json:"created_at"`
	Dead         bool      `json:"dead"`
}

// Report is the deployer's rated launch history.
type Report struct {
	Deployer     string        `json:"deployer"`
	Tokens       []TokenRecord `json:"tokens"`
	Total        int           `json:"total"`
	DeadCount    int           `json:"dead_count"`
	BiggestMCUSD float64       `json:"biggest_mc_usd"`
	Rating       Rating        `json:"rating"`
}

type Analyzer struct {
	cfg *config.Config
	p   provider.Provider
}

func NewAnalyzer(cfg *config.Config, p provider.Provider) *Analyzer {
	return &Analyzer{cfg: cfg, p: p}
}

// History resolves the token's deployer, discovers their other launches in
// the lookback window, enriches each with live market data, and rates the
// record.
func (a *Analyzer) History(ctx context.Context, token string) (*Report, error) {
	dep := a.p.Deployer(ctx, token)
	if dep == "" {
		return nil, ErrNoDeployer
	}
	log.Debug().Str("token", abbrev(token)).Str("deployer", abbrev(dep)).Msg("deployer resolved")

	lookback := time.Duration(a.cfg.DevLookbackDays) * 24 * time.Hour
	deployed := a.p.DeployedTokens(ctx, dep, lookback)

	// The token under scan is not part of the track record.
	self := normalizeAddr(a.p.Chain(), token)
	addrs := make([]string, 0, len(deployed))
	filtered := deployed[:0]
	for _, d := range deployed {
		if normalizeAddr(a.p.Chain(), d.Address) == self {
			continue
		}
		filtered = append(filtered, d)
		addrs = append(addrs, d.Address)
	}
	deployed = filtered

	markets := map[string]provider.Market{}
	if len(addrs) > 0 {
		markets = a.p.Markets(ctx, addrs)
	}

	report := &Report{Deployer: dep}
	for _, d := range deployed {
		m, ok := markets[normalizeAddr(a.p.Chain(), d.Address)]
		if !ok {
			m, ok = markets[d.Address]
		}
		rec := TokenRecord{
			Address:      d.Address,
			Name:         m.Name,
			Symbol:       m.Symbol,
			MarketCapUSD: m.MarketCapUSD,
			CreatedAt:    d.CreatedAt,
			Dead:         !ok || !m.Listed || m.MarketCapUSD < deadMarketCapUSD,
		}
		report.Tokens = append(report.Tokens, rec)
		if rec.Dead {
			report.DeadCount++
		}
		if rec.MarketCapUSD > report.BiggestMCUSD {
			report.BiggestMCUSD = rec.MarketCapUSD
		}
	}
	sort.SliceStable(report.Tokens, func(i, j int) bool {
		return report.Tokens[i].MarketCapUSD > report.Tokens[j].MarketCapUSD
	})

	report.Total = len(report.Tokens)
	report.Rating = Rate(report.Total, report.DeadCount, report.BiggestMCUSD)
	return report, nil
}

// Rate applies the track-record policy. Order matters: a proven success is
// checked before the serial-deployer ratio so one real winner outweighs a
// pile of abandoned launches.
func Rate(total, dead int, biggestMC float64) Rating {
	switch {
	case total == 0:
		return RatingNew
	case biggestMC >= provenMarketCapUSD:
		return RatingProven
	case biggestMC >= someMarketCapUSD:
		return RatingSome
	case total > 2 && float64(dead) > serialDeadRatio*float64(total):
		return RatingSerial
	default:
		return RatingLow
	}
}

func normalizeAddr(chain config.Chain, addr string) string {
	if chain.IsEVM() {
		return strings.ToLower(addr)
	}
	return addr
}

func abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
