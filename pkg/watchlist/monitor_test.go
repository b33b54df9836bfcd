package watchlist

import (
	"testing"

	"github.com/chain-sentinel/pkg/config"
	"github.com/chain-sentinel/pkg/risk"
)

func TestShouldAlert(t *testing.T) {
	m := &Monitor{
		cfg:   &config.Config{ScoreAlertDelta: 10},
		alert: func(Alert) {},
	}

	tests := []struct {
		name  string
		entry Entry
		rep   *risk.Report
		want  bool
	}{
		{
			"first scan establishes baseline silently",
			Entry{LastScore: -1},
			&risk.Report{Composite: 55, Label: "MEDIUM"},
			false,
		},
		{
			"first scan alerts when already critical",
			Entry{LastScore: -1},
			&risk.Report{Composite: 90, Label: "CRITICAL"},
			true,
		},
		{
			"small drift stays quiet",
			Entry{LastScore: 40, LastLabel: "MEDIUM"},
			&risk.Report{Composite: 49, Label: "MEDIUM"},
			false,
		},
		{
			"delta at threshold alerts",
			Entry{LastScore: 40, LastLabel: "MEDIUM"},
			&risk.Report{Composite: 50, Label: "MEDIUM"},
			true,
		},
		{
			"improvement also alerts",
			Entry{LastScore: 70, LastLabel: "HIGH"},
			&risk.Report{Composite: 40, Label: "MEDIUM"},
			true,
		},
		{
			"label flip alerts regardless of delta",
			Entry{LastScore: 60, LastLabel: "MEDIUM"},
			&risk.Report{Composite: 61, Label: "HIGH"},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.shouldAlert(tt.entry, tt.rep); got != tt.want {
				t.Errorf("shouldAlert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldAlertNoHandler(t *testing.T) {
	m := &Monitor{cfg: &config.Config{ScoreAlertDelta: 10}}
	if m.shouldAlert(Entry{LastScore: 0}, &risk.Report{Composite: 100, Label: "CRITICAL"}) {
		t.Error("nil alert handler must suppress alerts")
	}
}
