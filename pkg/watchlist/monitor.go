package watchlist

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/risk"
	"github.com/chain-sentinel/pkg/scanner"
)

// Alert is fired when a watched token's risk moves by at least the
// configured delta, or its label changes. prevScore is -1 on first scan.
type Alert struct {
	Entry     Entry
	Report    *risk.Report
	PrevScore int
	PrevLabel string
}

// AlertFunc receives alerts; it must not block the scan loop for long.
type AlertFunc func(Alert)

// Monitor re-scans every watchlist entry on the configured cron schedule.
type Monitor struct {
	cfg   *config.Config
	store *Store
	scan  *scanner.Scanner
	alert AlertFunc
	cron  *cron.Cron
}

func NewMonitor(cfg *config.Config, store *Store, scan *scanner.Scanner, alert AlertFunc) *Monitor {
	return &Monitor{cfg: cfg, store: store, scan: scan, alert: alert}
}

// Start schedules the periodic sweep and runs one immediately. Blocks until
// ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.cfg.WatchSchedule, func() { m.sweep(ctx) }); err != nil {
		return err
	}
	log.Info().Str("schedule", m.cfg.WatchSchedule).Msg("watch monitor started")

	m.sweep(ctx)
	m.cron.Start()
	<-ctx.Done()
	<-m.cron.Stop().Done()
	return ctx.Err()
}

// sweep scans every entry sequentially; one bad token must not starve the
// rest of the list.
func (m *Monitor) sweep(ctx context.Context) {
	entries, err := m.store.List()
	if err != nil {
		log.Error().Err(err).Msg("watchlist read failed")
		return
	}
	log.Info().Int("tokens", len(entries)).Msg("watchlist sweep")

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		report, err := m.scan.Scan(ctx, e.Address, e.Chain)
		if err != nil {
			log.Warn().Err(err).Str("address", e.Address).Msg("watch scan failed")
			continue
		}

		if m.shouldAlert(e, report) {
			m.alert(Alert{
				Entry:     e,
				Report:    report,
				PrevScore: e.LastScore,
				PrevLabel: e.LastLabel,
			})
		}
		if err := m.store.UpdateScore(e.Address, report.Composite, report.Label); err != nil {
			log.Warn().Err(err).Str("address", e.Address).Msg("score update failed")
		}
	}
}

func (m *Monitor) shouldAlert(e Entry, r *risk.Report) bool {
	if m.alert == nil {
		return false
	}
	if e.LastScore < 0 {
		// First scan establishes the baseline; only a hot start alerts.
		return r.Label == "CRITICAL"
	}
	delta := r.Composite - e.LastScore
	if delta < 0 {
		delta = -delta
	}
	return delta >= m.cfg.ScoreAlertDelta || (e.LastLabel != "" && e.LastLabel != r.Label)
}
