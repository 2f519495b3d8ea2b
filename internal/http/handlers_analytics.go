package http

import (
	"net/http"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/services"
)

type trendBar struct {
	Label  string
	Amount core.Money
	Height int
}

type analyticsPage struct {
	chrome
	Snapshot   services.AnalyticsSnapshot
	Bars       []trendBar
	Remaining  core.Money
	OverBudget bool
	Timeframes []core.Timeframe
}

// trendBars scales points so the tallest bar fills the chart.
func trendBars(points []core.TrendPoint) []trendBar {
	var peak int64
	for _, p := range points {
		peak = max(peak, p.Amount.Minor)
	}
	bars := make([]trendBar, len(points))
	for i, p := range points {
		bars[i] = trendBar{Label: p.Label, Amount: p.Amount}
		if peak > 0 && p.Amount.Minor > 0 {
			bars[i].Height = max(int(p.Amount.Minor*100/peak), 4)
		}
	}
	return bars
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tf := core.ParseTimeframe(r.URL.Query().Get("timeframe"))
	snap, err := s.wallet.Analytics.Snapshot(ctx, tf)
	if err != nil {
		s.loadFailed(w, r, log.ComponentAnalytics, err)
		return
	}

	remaining := snap.Budget.Sub(snap.Spent)
	page := analyticsPage{
		chrome:     s.chrome(ctx, "Analytics", "analytics"),
		Snapshot:   snap,
		Bars:       trendBars(snap.Trend),
		Remaining:  remaining,
		OverBudget: remaining.IsNegative(),
		Timeframes: []core.Timeframe{core.Weekly, core.Monthly},
	}
	if page.OverBudget {
		page.Remaining = core.Money{Minor: -remaining.Minor}
	}
	s.renderPage(w, r, "analytics", page)
}
