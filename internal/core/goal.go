package core

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Goal is a savings target. Current never exceeds Target.
type Goal struct {
	ID        int64
	Title     string
	Target    Money
	Current   Money
	Notes     string
	Locked    bool
	PiggyMode bool
}

type GoalDraft struct {
	Title     string
	Target    string
	Notes     string
	Locked    bool
	PiggyMode bool
}

func (d GoalDraft) Validate() (Goal, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" || strings.TrimSpace(d.Target) == "" {
		return Goal{}, NewValidationError("Please fill in title and target amount", ErrMissingField)
	}
	if utf8.RuneCountInString(title) > MaxTextLength || utf8.RuneCountInString(d.Notes) > MaxTextLength {
		return Goal{}, NewValidationError("Title and notes must be at most 200 characters", ErrTextTooLong)
	}
	target, err := ParseAmount(d.Target)
	if err != nil {
		return Goal{}, NewValidationError("Please enter a valid target amount", err)
	}
	return Goal{
		Title:     title,
		Target:    target,
		Notes:     strings.TrimSpace(d.Notes),
		Locked:    d.Locked,
		PiggyMode: d.PiggyMode,
	}, nil
}

// AddGoal appends a new goal with nothing saved yet.
func AddGoal(list []Goal, draft GoalDraft, id int64) ([]Goal, Goal, error) {
	g, err := draft.Validate()
	if err != nil {
		return list, Goal{}, err
	}
	g.ID = id
	out := make([]Goal, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, g)
	return out, g, nil
}

// Contribute adds amount to the goal with the given id, clamping at its
// target. Excess is absorbed silently. Locked goals refuse contributions.
// It returns the new list and the updated goal.
func Contribute(list []Goal, id int64, amount Money) ([]Goal, Goal, error) {
	if amount.IsNegative() {
		return list, Goal{}, NewValidationError("Contribution cannot be negative", ErrInvalidAmount)
	}
	i := goalIndex(list, id)
	if i < 0 {
		return list, Goal{}, ErrGoalNotFound
	}
	if list[i].Locked {
		return list, list[i], ErrGoalLocked
	}
	out := append([]Goal(nil), list...)
	// Compare against the remaining room so huge amounts cannot wrap.
	if amount.Minor >= out[i].Target.Minor-out[i].Current.Minor {
		out[i].Current = out[i].Target
	} else {
		out[i].Current = out[i].Current.Add(amount)
	}
	return out, out[i], nil
}

// ToggleLock flips the lock flag of the goal with the given id.
func ToggleLock(list []Goal, id int64) ([]Goal, Goal, error) {
	i := goalIndex(list, id)
	if i < 0 {
		return list, Goal{}, ErrGoalNotFound
	}
	out := append([]Goal(nil), list...)
	out[i].Locked = !out[i].Locked
	return out, out[i], nil
}

func goalIndex(list []Goal, id int64) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func (g Goal) Completed() bool {
	return g.Current.Minor >= g.Target.Minor
}

// ProgressPercent is current/target as a whole percentage.
func (g Goal) ProgressPercent() int {
	if g.Target.Minor <= 0 {
		return 0
	}
	return int(math.Round(float64(g.Current.Minor) / float64(g.Target.Minor) * 100))
}

// Remaining is what is left to reach the target.
func (g Goal) Remaining() Money {
	if g.Completed() {
		return Money{}
	}
	return g.Target.Sub(g.Current)
}

// GoalView is what a goal card may show. In piggy mode the saved amount and
// the progress stay hidden until the target is reached.
type GoalView struct {
	Goal
	Hidden  bool
	Percent int
	BarFill int
}

func (g Goal) View() GoalView {
	v := GoalView{Goal: g, Percent: g.ProgressPercent()}
	if g.PiggyMode && !g.Completed() {
		v.Hidden = true
		v.Percent = 0
	}
	v.BarFill = v.Percent
	if v.BarFill > 100 {
		v.BarFill = 100
	}
	return v
}

// TotalSaved sums the current amount of every goal.
func TotalSaved(list []Goal) Money {
	var total Money
	for _, g := range list {
		total = total.Add(g.Current)
	}
	return total
}
