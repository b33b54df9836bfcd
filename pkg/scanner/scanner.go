// Package scanner orchestrates a full token risk scan: chain resolution,
// concurrent signal fetching, deployer history, and final scoring.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chain-sentinel/pkg/chain"
	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/deployer"
	"github.com/chain-sentinel/pkg/provider"
	"github.com/chain-sentinel/pkg/risk"
)

// ErrUnsupportedChain means the address does not classify onto any chain
// this scanner has a configured provider for.
var ErrUnsupportedChain = errors.New("unsupported or unrecognized chain")

type Scanner struct {
	cfg       *config.Config
	providers map[config.Chain]provider.Provider
	detector  *chain.Detector
}

// New builds a scanner with one provider per chain the configuration has
// credentials for.
func New(cfg *config.Config) *Scanner {
	providers := map[config.Chain]provider.Provider{}
	if cfg.HeliusAPIKey != "" {
		providers[config.ChainSolana] = provider.NewSolana(cfg)
	}
	for _, c := range config.AllEVMChains() {
		if cfg.GetExplorerKey(c) != "" {
			providers[c] = provider.NewEVM(cfg, c)
		}
	}
	return &Scanner{cfg: cfg, providers: providers, detector: chain.NewDetector(cfg)}
}

// NewWithProviders wires explicit providers, bypassing chain probing when a
// hint is given. Used by tests and by the watch monitor.
func NewWithProviders(cfg *config.Config, providers map[config.Chain]provider.Provider) *Scanner {
	return &Scanner{cfg: cfg, providers: providers, detector: chain.NewDetector(cfg)}
}

// Provider returns the adapter for a chain, or nil when unconfigured.
func (s *Scanner) Provider(c config.Chain) provider.Provider {
	return s.providers[c]
}

// Scan runs the full pipeline for one token. hint skips chain detection
// when the caller already knows the chain; pass config.ChainUnknown to
// auto-detect. Individual signal failures degrade the report, they do not
// abort it.
func (s *Scanner) Scan(ctx context.Context, address string, hint config.Chain) (*risk.Report, error) {
	c := hint
	if c == "" || c == config.ChainUnknown {
		c = s.detector.Detect(ctx, address)
	}
	p, ok := s.providers[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChain, c)
	}

	log.Info().Str("address", abbrev(address)).Str("chain", string(c)).Msg("scanning token")
	start := time.Now()

	report := &risk.Report{Address: address, Chain: c, ScannedAt: start}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta := p.TokenMeta(gctx, address)
		report.TokenName, report.TokenSymbol = meta.Name, meta.Symbol
		return nil
	})
	g.Go(func() error {
		report.Supply = risk.SupplyProfileFromHolders(p.TopHolders(gctx, address))
		return nil
	})
	g.Go(func() error {
		report.Liquidity = p.Liquidity(gctx, address)
		return nil
	})
	g.Go(func() error {
		report.Activity = p.WalletActivity(gctx, address)
		return nil
	})
	g.Go(func() error {
		report.Trading = p.TradingActivity(gctx, address)
		return nil
	})
	g.Go(func() error {
		dev, err := deployer.NewAnalyzer(s.cfg, p).History(gctx, address)
		if err != nil {
			log.Warn().Err(err).Str("address", abbrev(address)).Msg("deployer history unavailable")
			return nil
		}
		report.Dev = dev
		return nil
	})
	_ = g.Wait()

	report.Finalize()
	log.Info().Str("address", abbrev(address)).
		Int("composite", report.Composite).
		Str("label", report.Label).
		Dur("took", time.Since(start)).
		Msg("scan complete")
	return report, nil
}

func abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
