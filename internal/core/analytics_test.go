package core

import (
	"strings"
	"testing"
)

func TestBalanceToggle(t *testing.T) {
	e := BalanceEdit{Balance: NewMoney(45000)}
	e = e.Toggle()
	if !e.Editing || e.Buffer != "45000" {
		t.Fatalf("entering edit mode must seed the buffer, got %+v", e)
	}
	e.Buffer = "50000.5"
	e = e.Toggle()
	if e.Editing || e.Balance.Minor != 5000050 {
		t.Fatalf("unexpected commit %+v", e)
	}
	if CommitBalance("nonsense").Minor != 0 {
		t.Fatal("invalid buffer commits as zero")
	}
}

func TestCategoryTotals(t *testing.T) {
	list := seedLedger()
	totals := CategoryTotals(list, NewDate(2024, 1, 8), NewDate(2024, 1, 15))
	if len(totals) != 3 {
		t.Fatalf("expected 3 categories, got %+v", totals)
	}
	order := []Category{CategoryFood, CategoryData, CategoryDebts}
	for i, c := range order {
		if totals[i].Category != c {
			t.Fatalf("position %d: expected %s, got %s", i, c, totals[i].Category)
		}
	}
	if totals[2].Share != 64 || totals[2].Color == "" {
		t.Fatalf("unexpected debts slice %+v", totals[2])
	}
}

func TestTrend(t *testing.T) {
	list := seedLedger()
	week := DailyTrend(list, NewDate(2024, 1, 8))
	if len(week) != 7 || week[0].Label != "Mon" || week[6].Label != "Sun" {
		t.Fatalf("unexpected week %+v", week)
	}
	if week[5].Amount != NewMoney(5800) || week[6].Amount != NewMoney(2000) {
		t.Fatalf("unexpected amounts %+v", week)
	}
	month := Monthly.Trend(list, NewDate(2024, 1, 20))
	if len(month) != 5 || month[1].Amount != NewMoney(7800) || month[2].Amount != NewMoney(1500) {
		t.Fatalf("unexpected month %+v", month)
	}
}

func TestPeriod(t *testing.T) {
	from, to := Weekly.Period(NewDate(2024, 1, 17))
	if from.String() != "2024-01-15" || to.String() != "2024-01-22" {
		t.Fatalf("unexpected week %s..%s", from, to)
	}
	from, to = Monthly.Period(NewDate(2024, 2, 17))
	if from.String() != "2024-02-01" || to.String() != "2024-03-01" {
		t.Fatalf("unexpected month %s..%s", from, to)
	}
	if ParseTimeframe("MONTHLY") != Monthly || ParseTimeframe("yearly") != Weekly {
		t.Fatal("unexpected timeframe parsing")
	}
}

func TestBudgetMessage(t *testing.T) {
	if got := BudgetMessage(NewMoney(12500), NewMoney(15000), CurrencyNGN); got != "You're ₦2,500 under budget this week 👏" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := BudgetMessage(NewMoney(16000), NewMoney(15000), CurrencyNGN); got != "₦1,000 over budget - let's get back on track! 💪" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := BudgetMessage(NewMoney(15000), NewMoney(15000), CurrencyNGN); !strings.HasPrefix(got, "₦0 over budget") {
		t.Fatalf("unexpected message %q", got)
	}
	if BudgetPercent(NewMoney(12500), NewMoney(15000)) != 83 || BudgetPercent(NewMoney(30000), NewMoney(15000)) != 100 {
		t.Fatal("unexpected budget percent")
	}
}

func TestInsights(t *testing.T) {
	totals := []CategoryTotal{
		{Category: CategoryFood, Amount: NewMoney(8500), Share: 60},
		{Category: CategoryData, Amount: NewMoney(5500), Share: 40},
	}
	got := Insights(InsightInput{
		Timeframe: Weekly,
		Totals:    totals,
		Spent:     NewMoney(14000),
		Budget:    NewMoney(15000),
		Saved:     NewMoney(7000),
		Currency:  CurrencyNGN,
	})
	if len(got) != 3 {
		t.Fatalf("expected three insights, got %+v", got)
	}
	if got[0].Kind != InsightWarning || got[0].Title != "Food Overspend" {
		t.Fatalf("unexpected warning %+v", got[0])
	}
	if got[1].Kind != InsightSuccess || !strings.Contains(got[1].Description, "₦7,000") {
		t.Fatalf("unexpected success %+v", got[1])
	}
	if got[2].Description != "Try reducing food spend by 10% next week" {
		t.Fatalf("unexpected tip %+v", got[2])
	}

	over := Insights(InsightInput{Timeframe: Monthly, Spent: NewMoney(20000), Budget: NewMoney(15000), Currency: CurrencyNGN})
	if over[0].Title != "Over Budget" || over[0].Description != "You overspent this month by ₦5,000" {
		t.Fatalf("unexpected over budget insight %+v", over[0])
	}
}

func TestTogglePriority(t *testing.T) {
	list := []Priority{{ID: 1, Text: "Pay debt ₦8,000", Urgent: true}, {ID: 2, Text: "Data subscription ₦2,000"}}
	out, p, err := TogglePriority(list, 1)
	if err != nil || !p.Done || !out[0].Done || list[0].Done {
		t.Fatalf("unexpected toggle %+v err=%v", out, err)
	}
	if _, _, err := TogglePriority(list, 7); err != ErrPriorityNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	if _, err := (Profile{Name: "Ada", Email: "ada@example.com"}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := (Profile{Name: "Ada", Email: "nope"}).Validate(); err == nil {
		t.Fatal("expected invalid email error")
	}
	if _, err := (Profile{Email: "ada@example.com"}).Validate(); err == nil {
		t.Fatal("expected missing name error")
	}
}
