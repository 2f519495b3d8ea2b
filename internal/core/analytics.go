package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Timeframe string

const (
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
)

// ParseTimeframe defaults to Weekly for anything it does not recognise.
func ParseTimeframe(s string) Timeframe {
	if Timeframe(strings.ToLower(strings.TrimSpace(s))) == Monthly {
		return Monthly
	}
	return Weekly
}

// Period returns the half-open date range [from, to) covered by tf around
// today: the Monday-based week or the calendar month.
func (tf Timeframe) Period(today Date) (Date, Date) {
	if tf == Monthly {
		from := today.MonthStart()
		return from, Date{Time: from.AddDate(0, 1, 0)}
	}
	from := today.WeekStart()
	return from, from.AddDays(7)
}

var categoryColors = map[Category]string{
	CategoryFood:      "#10B981",
	CategoryTransport: "#3B82F6",
	CategoryAirtime:   "#8B5CF6",
	CategoryData:      "#6366F1",
	CategorySchool:    "#F59E0B",
	CategoryGifts:     "#EC4899",
	CategoryDebts:     "#EF4444",
	CategoryMisc:      "#6B7280",
}

// CategoryTotal is one slice of the spending breakdown.
type CategoryTotal struct {
	Category Category
	Amount   Money
	Share    int
	Color    string
}

// CategoryTotals sums the ledger per category over [from, to). Categories
// without spending are left out; the rest keep the fixed category order.
func CategoryTotals(list []Transaction, from, to Date) []CategoryTotal {
	sums := make(map[Category]Money, len(Categories))
	var total Money
	for _, tx := range list {
		if tx.Date.Before(from.Time) || !tx.Date.Before(to.Time) {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}
	var out []CategoryTotal
	for _, c := range Categories {
		amount, ok := sums[c]
		if !ok {
			continue
		}
		out = append(out, CategoryTotal{
			Category: c,
			Amount:   amount,
			Share:    share(amount, total),
			Color:    categoryColors[c],
		})
	}
	return out
}

func share(part, total Money) int {
	if total.Minor <= 0 {
		return 0
	}
	return int(math.Round(float64(part.Minor) / float64(total.Minor) * 100))
}

// TrendPoint is one x-axis position of the spending trend.
type TrendPoint struct {
	Label  string
	Amount Money
}

// DailyTrend returns Mon..Sun totals for the week starting at weekStart.
func DailyTrend(list []Transaction, weekStart Date) []TrendPoint {
	points := make([]TrendPoint, 7)
	for i := range points {
		day := weekStart.AddDays(i)
		points[i] = TrendPoint{Label: day.Format("Mon"), Amount: SpendOn(list, day)}
	}
	return points
}

// WeeklyTrend splits the month starting at monthStart into 7-day buckets
// labelled "Week 1".."Week 5".
func WeeklyTrend(list []Transaction, monthStart Date) []TrendPoint {
	monthEnd := Date{Time: monthStart.AddDate(0, 1, 0)}
	var points []TrendPoint
	for i, from := 1, monthStart; from.Before(monthEnd.Time); i, from = i+1, from.AddDays(7) {
		to := from.AddDays(7)
		if to.After(monthEnd.Time) {
			to = monthEnd
		}
		points = append(points, TrendPoint{
			Label:  fmt.Sprintf("Week %d", i),
			Amount: SpendBetween(list, from, to),
		})
	}
	return points
}

// Trend picks the trend granularity matching tf.
func (tf Timeframe) Trend(list []Transaction, today Date) []TrendPoint {
	if tf == Monthly {
		return WeeklyTrend(list, today.MonthStart())
	}
	return DailyTrend(list, today.WeekStart())
}

type InsightKind string

const (
	InsightWarning InsightKind = "warning"
	InsightSuccess InsightKind = "success"
	InsightTip     InsightKind = "tip"
)

type Insight struct {
	Kind        InsightKind
	Title       string
	Description string
}

// InsightInput carries what the insight rules look at.
type InsightInput struct {
	Timeframe Timeframe
	Totals    []CategoryTotal
	Spent     Money
	Budget    Money
	Saved     Money
	Currency  Currency
}

// Insights derives at most one warning, one success and one tip.
func Insights(in InsightInput) []Insight {
	period := "this week"
	if in.Timeframe == Monthly {
		period = "this month"
	}
	var out []Insight

	if over := in.Spent.Sub(in.Budget); in.Budget.Minor > 0 && over.Minor > 0 {
		out = append(out, Insight{
			Kind:        InsightWarning,
			Title:       "Over Budget",
			Description: fmt.Sprintf("You overspent %s by %s", period, FormatMoney(over, in.Currency)),
		})
	} else if top, ok := topCategory(in.Totals); ok && top.Share >= 40 {
		out = append(out, Insight{
			Kind:        InsightWarning,
			Title:       string(top.Category) + " Overspend",
			Description: fmt.Sprintf("%s took %d%% of your spending %s", top.Category, top.Share, period),
		})
	}

	if in.Saved.Minor > 0 {
		desc := fmt.Sprintf("You've saved %s so far", FormatMoney(in.Saved, in.Currency))
		if in.Spent.Minor > 0 {
			desc += fmt.Sprintf(" (%d%% of what you spent %s)", share(in.Saved, in.Spent), period)
		}
		out = append(out, Insight{Kind: InsightSuccess, Title: "Great Savings!", Description: desc})
	}

	if top, ok := topCategory(in.Totals); ok {
		out = append(out, Insight{
			Kind:        InsightTip,
			Title:       "Smart Tip",
			Description: fmt.Sprintf("Try reducing %s spend by 10%% next %s", strings.ToLower(string(top.Category)), strings.TrimPrefix(period, "this ")),
		})
	} else {
		out = append(out, Insight{
			Kind:        InsightTip,
			Title:       "Smart Tip",
			Description: "Log every expense to see where your money goes",
		})
	}
	return out
}

func topCategory(totals []CategoryTotal) (CategoryTotal, bool) {
	if len(totals) == 0 {
		return CategoryTotal{}, false
	}
	sorted := append([]CategoryTotal(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount.Minor > sorted[j].Amount.Minor })
	return sorted[0], true
}

// BudgetMessage is the dashboard line comparing week spend to budget.
func BudgetMessage(weekSpend, budget Money, c Currency) string {
	remaining := budget.Sub(weekSpend)
	if remaining.Minor > 0 {
		return fmt.Sprintf("You're %s under budget this week 👏", FormatMoney(remaining, c))
	}
	return fmt.Sprintf("%s over budget - let's get back on track! 💪", FormatMoney(Money{Minor: -remaining.Minor}, c))
}

// BudgetPercent is the filled share of the weekly budget bar, capped at 100.
func BudgetPercent(weekSpend, budget Money) int {
	p := share(weekSpend, budget)
	if p > 100 {
		return 100
	}
	return p
}
