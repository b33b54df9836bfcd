// Package cluster detects wallet cabals: groups of top holders whose
// wallets were funded by the same source. Shared funding is the strongest
// cheap signal that "independent" holders are one operator.
package cluster

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/provider"
)

// ErrNoHolders means the holder list could not be fetched; cluster analysis
// has nothing to work with.
var ErrNoHolders = errors.New("no holders available for cluster analysis")

const fundingConcurrency = 8

// Member is one holder inside a cluster.
type Member struct {
	Holder   string  `json:"holder"`
	SharePct float64 `json:"share_pct"`
}

// Cluster is a set of holders sharing one funding wallet.
type Cluster struct {
	Funder        string   `json:"funder"`
	Members       []Member `json:"members"`
	TotalSharePct float64  `json:"total_share_pct"`
}

// Result is the full cabal analysis for one token.
type Result struct {
	Token         string       `json:"token"`
	Chain         config.Chain `json:"chain"`
	HolderCount   int          `json:"holder_count"`
	ResolvedCount int          `json:"resolved_count"`
	Clusters      []Cluster    `json:"clusters"`
	CabalScore    int          `json:"cabal_score"`
}

type Detector struct {
	cfg *config.Config
	p   provider.Provider
}

func NewDetector(cfg *config.Config, p provider.Provider) *Detector {
	return &Detector{cfg: cfg, p: p}
}

// Find fetches the token's top holders, traces each one's funding wallet
// concurrently, and groups holders by shared funder. Holders whose funding
// cannot be resolved are counted but join no cluster.
func (d *Detector) Find(ctx context.Context, token string) (*Result, error) {
	holders := d.p.TopHolders(ctx, token)
	if len(holders) == 0 {
		return nil, ErrNoHolders
	}

	funders := make([]string, len(holders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fundingConcurrency)
	for i, h := range holders {
		i, h := i, h
		g.Go(func() error {
			funders[i] = d.p.FundingWallet(gctx, h.Owner)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{
		Token:       token,
		Chain:       d.p.Chain(),
		HolderCount: len(holders),
	}

	byFunder := map[string][]Member{}
	for i, h := range holders {
		f := funders[i]
		if f == "" || config.IsExcludedFunder(d.p.Chain(), f) {
			continue
		}
		result.ResolvedCount++
		byFunder[f] = append(byFunder[f], Member{Holder: h.Owner, SharePct: h.SharePct})
	}

	for funder, members := range byFunder {
		if len(members) < d.cfg.ClusterMinHolders {
			continue
		}
		var total float64
		for _, m := range members {
			total += m.SharePct
		}
		result.Clusters = append(result.Clusters, Cluster{
			Funder:        funder,
			Members:       members,
			TotalSharePct: total,
		})
	}
	sort.SliceStable(result.Clusters, func(i, j int) bool {
		return result.Clusters[i].TotalSharePct > result.Clusters[j].TotalSharePct
	})

	result.CabalScore = Score(result.Clusters, result.ResolvedCount)
	log.Info().Str("token", abbrev(token)).
		Int("holders", result.HolderCount).
		Int("clusters", len(result.Clusters)).
		Int("score", result.CabalScore).
		Msg("cluster analysis complete")
	return result, nil
}

// Score rates cabal severity 0..100 from three capped components: how many
// distinct cabals exist, how much supply they jointly control, and what
// fraction of traceable holders belong to one.
func Score(clusters []Cluster, resolvedHolders int) int {
	if len(clusters) == 0 {
		return 0
	}

	count := len(clusters) * 10
	if count > 30 {
		count = 30
	}

	var totalPct float64
	cabalHolders := map[string]bool{}
	for _, c := range clusters {
		totalPct += c.TotalSharePct
		for _, m := range c.Members {
			cabalHolders[m.Holder] = true
		}
	}
	share := int(totalPct * 1.5)
	if share > 40 {
		share = 40
	}

	ratio := 0.0
	if resolvedHolders > 0 {
		ratio = float64(len(cabalHolders)) / float64(resolvedHolders)
	}
	coverage := int(ratio * 30)
	if coverage > 30 {
		coverage = 30
	}

	score := count + share + coverage
	if score > 100 {
		score = 100
	}
	return score
}

func abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
