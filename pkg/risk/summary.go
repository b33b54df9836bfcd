package risk

import (
	"fmt"
	"strings"
)

// Summarize renders a one-paragraph human verdict: an opener matching the
// composite band, the concrete red flags found, and one actionable piece
// of advice.
func Summarize(r *Report) string {
	var concerns []string
	var advice []string

	if r.Activity != nil {
		if r.Activity.FreshWalletPct > 40 {
			concerns = append(concerns,
				fmt.Sprintf("%.0f%% of active wallets are less than a day old", r.Activity.FreshWalletPct))
			advice = append(advice, "Fresh-wallet swarms usually mean a coordinated launch; wait for organic holders.")
		}
		if r.Activity.ClusterPct > 30 {
			concerns = append(concerns,
				fmt.Sprintf("%.0f%% of activity happens in coordinated same-block bursts", r.Activity.ClusterPct))
		}
	}

	if r.Liquidity != nil {
		switch {
		case r.Liquidity.LiquidityUSD < 1_000:
			concerns = append(concerns,
				fmt.Sprintf("critically low liquidity ($%.0f)", r.Liquidity.LiquidityUSD))
			advice = append(advice, "Liquidity this thin means any sell moves the price; exiting may be impossible.")
		case r.Liquidity.LiquidityUSD < 5_000:
			concerns = append(concerns,
				fmt.Sprintf("low liquidity ($%.0f)", r.Liquidity.LiquidityUSD))
		}
	}

	if r.Supply != nil {
		if r.Supply.Top1Pct > 20 {
			concerns = append(concerns,
				fmt.Sprintf("the top holder controls %.1f%% of supply", r.Supply.Top1Pct))
			advice = append(advice, "A single wallet this large can zero the chart in one transaction.")
		}
		if r.Supply.Top10Pct > 50 {
			concerns = append(concerns,
				fmt.Sprintf("the top 10 holders control %.1f%% of supply", r.Supply.Top10Pct))
		}
	}

	if r.Trading != nil {
		if r.Trading.SandwichPatternCount > 2 {
			concerns = append(concerns,
				fmt.Sprintf("%d sandwich-attack patterns in recent blocks", r.Trading.SandwichPatternCount))
		}
		if r.Trading.SuspectedBotWallets > 0 {
			concerns = append(concerns,
				fmt.Sprintf("%d suspected bot wallets trading the token", r.Trading.SuspectedBotWallets))
			advice = append(advice, "Bot-dominated volume inflates apparent demand.")
		}
	}

	opener := openerFor(r.Composite)

	var b strings.Builder
	b.WriteString(opener)
	if len(concerns) > 0 {
		b.WriteString(" Key concerns: ")
		b.WriteString(strings.Join(concerns, "; "))
		b.WriteString(".")
	} else {
		b.WriteString(" No major red flags in the signals checked.")
	}
	b.WriteString(" ")
	if len(advice) > 0 {
		b.WriteString(advice[0])
	} else {
		b.WriteString("Always verify LP lock status before trading.")
	}
	return b.String()
}

func openerFor(composite int) string {
	switch {
	case composite <= 30:
		return "✅ Low risk profile."
	case composite <= 60:
		return "⚠️ Moderate risk — trade carefully."
	case composite <= 80:
		return "🚨 High risk — multiple danger signals."
	default:
		return "🔴 CRITICAL risk — strong rug-pull indicators."
	}
}
