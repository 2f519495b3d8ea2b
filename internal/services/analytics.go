package services

import (
	"context"
	"fmt"

	"walletwhisper/internal/core"
)

// AnalyticsService derives the analytics page from the live ledger.
type AnalyticsService struct {
	*base
	budget core.Money
}

// AnalyticsSnapshot is everything the analytics page shows for a timeframe.
type AnalyticsSnapshot struct {
	Timeframe core.Timeframe
	From      core.Date
	To        core.Date
	Spent     core.Money
	Budget    core.Money
	Totals    []core.CategoryTotal
	Trend     []core.TrendPoint
	Insights  []core.Insight
	Currency  core.Currency
}

// Snapshot returns the analytics for tf as of today. Results are cached per
// timeframe and day until the next wallet change.
func (s *AnalyticsService) Snapshot(ctx context.Context, tf core.Timeframe) (AnalyticsSnapshot, error) {
	today := s.today()
	key := string(tf) + ":" + today.String()
	if s.snapshots != nil {
		if snap, ok := s.snapshots.Get(key); ok {
			return snap, nil
		}
	}

	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		return AnalyticsSnapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return AnalyticsSnapshot{}, fmt.Errorf("list goals: %w", err)
	}
	currency := s.currency(ctx)

	from, to := tf.Period(today)
	totals := core.CategoryTotals(list, from, to)
	spent := core.SpendBetween(list, from, to)
	budget := periodBudget(s.budget, from, to)

	snap := AnalyticsSnapshot{
		Timeframe: tf,
		From:      from,
		To:        to,
		Spent:     spent,
		Budget:    budget,
		Totals:    totals,
		Trend:     tf.Trend(list, today),
		Insights: core.Insights(core.InsightInput{
			Timeframe: tf,
			Totals:    totals,
			Spent:     spent,
			Budget:    budget,
			Saved:     core.TotalSaved(goals),
			Currency:  currency,
		}),
		Currency: currency,
	}
	if s.snapshots != nil {
		s.snapshots.Set(key, snap)
	}
	return snap, nil
}

// periodBudget scales the weekly budget to the number of days in [from, to).
func periodBudget(weekly core.Money, from, to core.Date) core.Money {
	days := int64(to.Sub(from.Time).Hours() / 24)
	return core.Money{Minor: weekly.Minor * days / 7}
}
