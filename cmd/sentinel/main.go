package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chain-sentinel/pkg/chain"
	"github.com/chain-sentinel/pkg/cluster"
	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/deployer"
	"github.com/chain-sentinel/pkg/provider"
	"github.com/chain-sentinel/pkg/report"
	"github.com/chain-sentinel/pkg/scanner"
	"github.com/chain-sentinel/pkg/watchlist"
)

var banner = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("205")).
	Border(lipgloss.RoundedBorder()).
	Padding(0, 2).
	Render("🛡  CHAIN SENTINEL — token risk scanner")

func usage() {
	fmt.Println(banner)
	fmt.Println(`
Usage:
  sentinel scan <address>       full risk scan (chain auto-detected)
  sentinel clusters <address>   wallet-cabal detection for top holders
  sentinel dev <address>        deployer track record only
  sentinel watch add <address>  add token to the watchlist
  sentinel watch rm <address>   remove token from the watchlist
  sentinel watch ls             list watched tokens
  sentinel watch run            run the scheduled re-scan monitor

Flags:
  --json   print the raw result as JSON (scan, clusters, dev)`)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	args, asJSON := splitFlags(os.Args[1:])
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigCh; log.Info().Msg("shutting down..."); cancel() }()

	sc := scanner.New(cfg)

	switch args[0] {
	case "scan":
		requireAddr(args)
		r, err := sc.Scan(ctx, args[1], config.ChainUnknown)
		if err != nil {
			log.Fatal().Err(err).Msg("scan failed")
		}
		if asJSON {
			printJSON(r)
			return
		}
		report.FormatRisk(os.Stdout, r)

	case "clusters":
		requireAddr(args)
		p := providerFor(ctx, cfg, sc, args[1])
		res, err := cluster.NewDetector(cfg, p).Find(ctx, args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("cluster analysis failed")
		}
		if asJSON {
			printJSON(struct {
				*cluster.Result
				Graph *cluster.Graph `json:"graph"`
			}{res, cluster.BuildGraph(res)})
			return
		}
		report.FormatClusters(os.Stdout, res)

	case "dev":
		requireAddr(args)
		p := providerFor(ctx, cfg, sc, args[1])
		dev, err := deployer.NewAnalyzer(cfg, p).History(ctx, args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("deployer analysis failed")
		}
		if asJSON {
			printJSON(dev)
			return
		}
		report.FormatDev(os.Stdout, dev)

	case "watch":
		runWatch(ctx, cfg, sc, args[1:])

	default:
		usage()
		os.Exit(1)
	}
}

func runWatch(ctx context.Context, cfg *config.Config, sc *scanner.Scanner, args []string) {
	store, err := watchlist.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("watchlist init failed")
	}
	defer store.Close()

	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	switch args[0] {
	case "add":
		requireAddr(args)
		c := chain.NewDetector(cfg).Detect(ctx, args[1])
		if c == config.ChainUnknown {
			log.Fatal().Str("address", args[1]).Msg("address not recognized on any supported chain")
		}
		label := ""
		if len(args) > 2 {
			label = args[2]
		}
		if err := store.Add(args[1], c, label); err != nil {
			log.Fatal().Err(err).Msg("watchlist add failed")
		}
		log.Info().Str("address", args[1]).Str("chain", string(c)).Msg("👁  watching")

	case "rm":
		requireAddr(args)
		if err := store.Remove(args[1]); err != nil {
			log.Fatal().Err(err).Msg("watchlist remove failed")
		}
		log.Info().Str("address", args[1]).Msg("removed from watchlist")

	case "ls":
		entries, err := store.List()
		if err != nil {
			log.Fatal().Err(err).Msg("watchlist read failed")
		}
		if len(entries) == 0 {
			fmt.Println("watchlist is empty")
			return
		}
		for _, e := range entries {
			score := "unscanned"
			if e.LastScore >= 0 {
				score = fmt.Sprintf("%d (%s)", e.LastScore, e.LastLabel)
			}
			fmt.Printf("%-46s %-9s %-12s %s\n", e.Address, e.Chain, score, e.Label)
		}

	case "run":
		fmt.Println(banner)
		mon := watchlist.NewMonitor(cfg, store, sc, func(a watchlist.Alert) {
			log.Warn().
				Str("address", a.Entry.Address).
				Int("score", a.Report.Composite).
				Int("prev", a.PrevScore).
				Str("label", a.Report.Label).
				Msg("🚨 risk change")
			report.FormatRisk(os.Stdout, a.Report)
		})
		if err := mon.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("monitor stopped")
		}

	default:
		usage()
		os.Exit(1)
	}
}

// providerFor resolves the chain for an address and returns its adapter.
func providerFor(ctx context.Context, cfg *config.Config, sc *scanner.Scanner, addr string) provider.Provider {
	c := chain.NewDetector(cfg).Detect(ctx, addr)
	if c == config.ChainUnknown {
		log.Fatal().Str("address", addr).Msg("address is neither a Solana nor an EVM address")
	}
	p := sc.Provider(c)
	if p == nil {
		log.Fatal().Str("chain", string(c)).Msg("no provider configured for chain — check API keys")
	}
	return p
}

func requireAddr(args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
}

func splitFlags(args []string) ([]string, bool) {
	var out []string
	asJSON := false
	for _, a := range args {
		if a == "--json" || a == "-json" {
			asJSON = true
			continue
		}
		out = append(out, a)
	}
	return out, asJSON
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("json encode failed")
	}
}
