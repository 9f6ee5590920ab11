// Package goal tracks progress towards the user's active goal
package goal

import (
	"slices"
	"time"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
)

// MinTarget is the shortest goal that can be started.
const MinTarget = 5 * time.Minute

var (
	errInvalidGoalType = &apperr.Error{
		Message: "invalid goal type %q: must be one of focus, learning, or limit",
	}

	errTargetTooShort = &apperr.Error{
		Message: "goal duration must be at least %v",
	}

	ErrNoActiveGoal = &apperr.Error{
		Message: "no active goal",
	}
)

var relevant = map[models.GoalType][]category.Category{
	models.GoalFocus:    {category.Learning, category.Productive},
	models.GoalLearning: {category.Learning},
	models.GoalLimit:    {category.Entertainment, category.SocialMedia},
}

// Relevant reports whether time spent in c counts towards goals of type t.
func Relevant(t models.GoalType, c category.Category) bool {
	return slices.Contains(relevant[t], c)
}

// Tracker holds the current goal. A nil goal means none has been set.
type Tracker struct {
	goal *models.Goal
}

// NewTracker returns a Tracker resuming g, which may be nil.
func NewTracker(g *models.Goal) *Tracker {
	return &Tracker{goal: g}
}

// Current returns a copy of the current goal, or nil.
func (t *Tracker) Current() *models.Goal {
	if t.goal == nil {
		return nil
	}

	g := *t.goal

	return &g
}

// Start replaces any existing goal with a new active one.
func (t *Tracker) Start(
	goalType models.GoalType,
	target time.Duration,
	now time.Time,
) (*models.Goal, error) {
	if _, ok := relevant[goalType]; !ok {
		return nil, errInvalidGoalType.Fmt(goalType)
	}

	if target < MinTarget {
		return nil, errTargetTooShort.Fmt(MinTarget)
	}

	t.goal = &models.Goal{
		Type:          goalType,
		TargetSeconds: int(target.Seconds()),
		StartTime:     now,
		Active:        true,
	}

	return t.Current(), nil
}

// Stop deactivates the current goal without completing it.
func (t *Tracker) Stop() (*models.Goal, error) {
	if t.goal == nil || !t.goal.Active {
		return nil, ErrNoActiveGoal
	}

	t.goal.Active = false

	return t.Current(), nil
}

// OnRecord adds the time spent in rec to the active goal if its category is
// relevant. It reports whether the goal changed and whether this record
// completed it.
func (t *Tracker) OnRecord(rec models.ActivityRecord) (changed, completed bool) {
	g := t.goal
	if g == nil || !g.Active {
		return false, false
	}

	if !Relevant(g.Type, rec.Category) {
		return false, false
	}

	g.ProgressSeconds += rec.TimeSpent

	if g.ProgressSeconds >= g.TargetSeconds {
		g.Active = false
		g.Completed = true

		return true, true
	}

	return true, false
}
