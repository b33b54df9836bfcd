// Package report renders scan results for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/chain-sentinel/pkg/chain"
	"github.com/chain-sentinel/pkg/cluster"
	"github.com/chain-sentinel/pkg/deployer"
	"github.com/chain-sentinel/pkg/risk"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func labelColor(label string) string {
	switch label {
	case "LOW":
		return green(label)
	case "MEDIUM":
		return yellow(label)
	default:
		return red(label)
	}
}

// FormatRisk writes the full scan report: header, per-signal table, score
// table, deployer record, and the verdict paragraph.
func FormatRisk(w io.Writer, r *risk.Report) {
	fmt.Fprintf(w, "\n%s %s (%s) on %s\n", bold("Token:"), r.TokenName, r.TokenSymbol, r.Chain)
	fmt.Fprintf(w, "%s %s\n", bold("Address:"), r.Address)
	if url := chain.ExplorerURL(r.Address, r.Chain); url != "" {
		fmt.Fprintf(w, "%s %s\n", bold("Explorer:"), url)
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Signal", "Value"})
	table.SetBorder(false)

	if r.Liquidity != nil {
		table.Append([]string{"Liquidity", fmtUSD(r.Liquidity.LiquidityUSD)})
		table.Append([]string{"24h volume", fmtUSD(r.Liquidity.Volume24hUSD)})
		table.Append([]string{"Market cap", fmtUSD(r.Liquidity.MarketCapUSD)})
		table.Append([]string{"DEX", r.Liquidity.DEX})
	} else {
		table.Append([]string{"Liquidity", "N/A"})
	}
	if r.Supply != nil {
		table.Append([]string{"Top holder share", fmt.Sprintf("%.2f%%", r.Supply.Top1Pct)})
		table.Append([]string{"Top 10 share", fmt.Sprintf("%.1f%%", r.Supply.Top10Pct)})
		table.Append([]string{"Gini coefficient", fmt.Sprintf("%.2f", r.Supply.Gini)})
	} else {
		table.Append([]string{"Supply concentration", "N/A"})
	}
	if r.Activity != nil {
		table.Append([]string{"Active wallets", fmt.Sprintf("%d", r.Activity.WalletCount)})
		table.Append([]string{"Fresh wallets", fmt.Sprintf("%.1f%%", r.Activity.FreshWalletPct)})
		table.Append([]string{"Clustered activity", fmt.Sprintf("%.1f%%", r.Activity.ClusterPct)})
	} else {
		table.Append([]string{"Wallet activity", "N/A"})
	}
	if r.Trading != nil {
		table.Append([]string{"Sandwich patterns", fmt.Sprintf("%d", r.Trading.SandwichPatternCount)})
		table.Append([]string{"Suspected bots", fmt.Sprintf("%d", r.Trading.SuspectedBotWallets)})
	}
	table.Render()

	fmt.Fprintln(w)
	scores := tablewriter.NewWriter(w)
	scores.SetHeader([]string{"Score", "0-100"})
	scores.SetBorder(false)
	scores.Append([]string{"Wallet activity", fmt.Sprintf("%d", r.WalletScore)})
	scores.Append([]string{"Liquidity", fmt.Sprintf("%d", r.LiquidityScore)})
	scores.Append([]string{"Supply", fmt.Sprintf("%d", r.SupplyScore)})
	if !r.Chain.IsEVM() {
		scores.Append([]string{"Trading", fmt.Sprintf("%d", r.TradingScore)})
	}
	scores.Append([]string{bold("Composite"), fmt.Sprintf("%s (%d)", labelColor(r.Label), r.Composite)})
	scores.Render()

	if r.Dev != nil {
		fmt.Fprintln(w)
		FormatDev(w, r.Dev)
	}

	fmt.Fprintf(w, "\n%s\n", r.Summary)
}

// FormatDev writes the deployer's rated track record.
func FormatDev(w io.Writer, d *deployer.Report) {
	fmt.Fprintf(w, "%s %s — %s (%d launches, %d dead, best %s)\n",
		bold("Deployer:"), d.Deployer, ratingColor(d.Rating), d.Total, d.DeadCount, fmtUSD(d.BiggestMCUSD))
	if len(d.Tokens) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Token", "Symbol", "Market Cap", "Status"})
	table.SetBorder(false)
	for _, t := range d.Tokens {
		status := green("live")
		if t.Dead {
			status = red("dead")
		}
		table.Append([]string{shortAddr(t.Address), t.Symbol, fmtUSD(t.MarketCapUSD), status})
	}
	table.Render()
}

func ratingColor(r deployer.Rating) string {
	switch r {
	case deployer.RatingProven:
		return green(string(r))
	case deployer.RatingSome, deployer.RatingNew:
		return yellow(string(r))
	default:
		return red(string(r))
	}
}

// FormatClusters writes the cabal analysis with per-cluster membership.
func FormatClusters(w io.Writer, res *cluster.Result) {
	fmt.Fprintf(w, "\n%s %s on %s\n", bold("Token:"), res.Token, res.Chain)
	fmt.Fprintf(w, "%s %d holders inspected, %d with traceable funding\n",
		bold("Coverage:"), res.HolderCount, res.ResolvedCount)

	if len(res.Clusters) == 0 {
		fmt.Fprintf(w, "\n%s\n", green("No shared-funding clusters found among top holders."))
		return
	}

	for i, c := range res.Clusters {
		fmt.Fprintf(w, "\n%s funded by %s (%.1f%% of supply)\n",
			bold(fmt.Sprintf("Cluster %d:", i+1)), c.Funder, c.TotalSharePct)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Holder", "Share"})
		table.SetBorder(false)
		for _, m := range c.Members {
			table.Append([]string{m.Holder, fmt.Sprintf("%.2f%%", m.SharePct)})
		}
		table.Render()
	}

	scoreStr := fmt.Sprintf("%d/100", res.CabalScore)
	if res.CabalScore >= 60 {
		scoreStr = red(scoreStr)
	} else if res.CabalScore >= 30 {
		scoreStr = yellow(scoreStr)
	} else {
		scoreStr = green(scoreStr)
	}
	fmt.Fprintf(w, "\n%s %s\n", bold("Cabal score:"), scoreStr)

	g := cluster.BuildGraph(res)
	fmt.Fprintf(w, "%s %s\n", bold("Graph:"), g.Summary())
}

func fmtUSD(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func shortAddr(addr string) string {
	if len(addr) > 16 {
		return addr[:8] + "..." + addr[len(addr)-6:]
	}
	return addr
}
