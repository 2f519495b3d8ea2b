package services

import (
	"context"
	"fmt"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
)

const (
	entityBalance  = "balance"
	entityPriority = "priority"
)

// DashboardService owns the home page: balance, spend summary and the
// priority list.
type DashboardService struct {
	*base
	budget core.Money
}

type Dashboard struct {
	Balance       core.Money
	TodaySpend    core.Money
	WeekSpend     core.Money
	WeeklyBudget  core.Money
	BudgetPercent int
	BudgetMessage string
	Priorities    []core.Priority
	Recent        []core.Transaction
	Settings      core.Settings
}

const recentTransactions = 3

func (s *DashboardService) Overview(ctx context.Context) (Dashboard, error) {
	balance, err := s.store.Balance(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load balance: %w", err)
	}
	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}
	priorities, err := s.store.ListPriorities(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list priorities: %w", err)
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load settings: %w", err)
	}

	today := s.today()
	weekStart := today.WeekStart()
	week := core.SpendBetween(list, weekStart, weekStart.AddDays(7))
	recent := list
	if len(recent) > recentTransactions {
		recent = recent[:recentTransactions]
	}

	return Dashboard{
		Balance:       balance,
		TodaySpend:    core.SpendOn(list, today),
		WeekSpend:     week,
		WeeklyBudget:  s.budget,
		BudgetPercent: core.BudgetPercent(week, s.budget),
		BudgetMessage: core.BudgetMessage(week, s.budget, settings.Currency),
		Priorities:    priorities,
		Recent:        recent,
		Settings:      settings,
	}, nil
}

// EditBalance enters edit mode with the buffer seeded from the stored value.
func (s *DashboardService) EditBalance(ctx context.Context) (core.BalanceEdit, error) {
	balance, err := s.store.Balance(ctx)
	if err != nil {
		return core.BalanceEdit{}, fmt.Errorf("load balance: %w", err)
	}
	return core.BalanceEdit{Balance: balance}.Toggle(), nil
}

// CommitBalance leaves edit mode. Anything that does not parse becomes zero.
func (s *DashboardService) CommitBalance(ctx context.Context, buffer string) (core.Money, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := core.CommitBalance(buffer)
	if err := s.store.SetBalance(ctx, balance); err != nil {
		n, err := s.fail(ctx, log.ComponentDashboard, log.OpUpdate, entityBalance, fmt.Errorf("save balance: %w", err))
		return core.Money{}, n, err
	}

	n := core.Notify("Balance Updated", "New balance: "+core.FormatMoney(balance, s.currency(ctx)))
	return balance, s.done(ctx, log.ComponentDashboard, log.OpUpdate, entityBalance, 0, n), nil
}

func (s *DashboardService) TogglePriority(ctx context.Context, id int64) (core.Priority, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.ListPriorities(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentDashboard, log.OpToggle, entityPriority, fmt.Errorf("list priorities: %w", err))
		return core.Priority{}, n, err
	}
	_, p, err := core.TogglePriority(list, id)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentDashboard, log.OpToggle, entityPriority, err)
		return core.Priority{}, n, err
	}
	if err := s.store.UpdatePriority(ctx, p); err != nil {
		n, err := s.fail(ctx, log.ComponentDashboard, log.OpToggle, entityPriority, fmt.Errorf("save priority: %w", err))
		return core.Priority{}, n, err
	}

	n := core.Notify("Priority Updated", p.Text+" reopened")
	if p.Done {
		n = core.Notify("Priority Updated", p.Text+" marked as done")
	}
	return p, s.done(ctx, log.ComponentDashboard, log.OpToggle, entityPriority, p.ID, n), nil
}
