package services

import (
	"context"
	"fmt"

	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/store"
)

const entityGoal = "goal"

// SavingsService owns the savings goals page.
type SavingsService struct {
	*base
}

// SavingsOverview is what the savings page renders.
type SavingsOverview struct {
	Goals      []core.GoalView
	TotalSaved core.Money
	Currency   core.Currency
}

func (s *SavingsService) Overview(ctx context.Context) (SavingsOverview, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return SavingsOverview{}, fmt.Errorf("list goals: %w", err)
	}
	views := make([]core.GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, g.View())
	}
	return SavingsOverview{
		Goals:      views,
		TotalSaved: core.TotalSaved(goals),
		Currency:   s.currency(ctx),
	}, nil
}

func (s *SavingsService) Create(ctx context.Context, draft core.GoalDraft) (core.Goal, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := draft.Validate(); err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpCreate, entityGoal, err)
		return core.Goal{}, n, err
	}
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpCreate, entityGoal, fmt.Errorf("list goals: %w", err))
		return core.Goal{}, n, err
	}
	id, err := s.store.NextID(ctx, store.KindGoal)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpCreate, entityGoal, fmt.Errorf("next goal id: %w", err))
		return core.Goal{}, n, err
	}
	_, g, err := core.AddGoal(goals, draft, id)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpCreate, entityGoal, err)
		return core.Goal{}, n, err
	}
	if err := s.store.InsertGoal(ctx, g); err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpCreate, entityGoal, fmt.Errorf("save goal: %w", err))
		return core.Goal{}, n, err
	}

	n := core.Notify("Goal Created", "New savings goal: "+g.Title)
	return g, s.done(ctx, log.ComponentSavings, log.OpCreate, entityGoal, g.ID, n), nil
}

// Contribute adds the amount typed by the user to a goal. The goal never
// goes past its target; a locked goal refuses the money.
func (s *SavingsService) Contribute(ctx context.Context, id int64, amount string) (core.Goal, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := core.ParseAmount(amount)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpUpdate, entityGoal,
			core.NewValidationError("Please enter a valid amount", err))
		return core.Goal{}, n, err
	}
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpUpdate, entityGoal, fmt.Errorf("list goals: %w", err))
		return core.Goal{}, n, err
	}
	_, g, err := core.Contribute(goals, id, m)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpUpdate, entityGoal, err)
		return g, n, err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpUpdate, entityGoal, fmt.Errorf("save goal: %w", err))
		return core.Goal{}, n, err
	}

	n := core.Notify("Savings Added", core.FormatMoney(m, s.currency(ctx))+" added to savings")
	return g, s.done(ctx, log.ComponentSavings, log.OpUpdate, entityGoal, g.ID, n), nil
}

func (s *SavingsService) ToggleLock(ctx context.Context, id int64) (core.Goal, core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpToggle, entityGoal, fmt.Errorf("list goals: %w", err))
		return core.Goal{}, n, err
	}
	_, g, err := core.ToggleLock(goals, id)
	if err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpToggle, entityGoal, err)
		return core.Goal{}, n, err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		n, err := s.fail(ctx, log.ComponentSavings, log.OpToggle, entityGoal, fmt.Errorf("save goal: %w", err))
		return core.Goal{}, n, err
	}

	n := core.Notify("Goal Unlocked", g.Title+" can receive savings again")
	if g.Locked {
		n = core.Notify("Goal Locked", g.Title+" is now locked")
	}
	return g, s.done(ctx, log.ComponentSavings, log.OpToggle, entityGoal, g.ID, n), nil
}
