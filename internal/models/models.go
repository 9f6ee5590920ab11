package models

import (
	"time"

	"github.com/ayoisaiah/diary/internal/category"
)

// ActivityRecord is a finalised browsing session. It is immutable once
// appended to the activity log.
type ActivityRecord struct {
	Timestamp time.Time         `json:"timestamp"`
	ID        string            `json:"id"`
	Domain    string            `json:"domain"`
	URL       string            `json:"url"`
	Category  category.Category `json:"category"`
	TimeSpent int               `json:"time_spent"` // seconds
}

// Summary is an LLM generated summary of a visited page.
type Summary struct {
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Summary   string    `json:"summary"`
}

// GoalType determines which categories count towards a goal.
type GoalType string

const (
	GoalFocus    GoalType = "focus"
	GoalLearning GoalType = "learning"
	GoalLimit    GoalType = "limit"
)

// GoalTypes lists the supported goal types.
var GoalTypes = []GoalType{GoalFocus, GoalLearning, GoalLimit}

// Goal is a user defined target of accumulated time in a set of categories.
type Goal struct {
	StartTime       time.Time `json:"start_time"`
	Type            GoalType  `json:"type"`
	TargetSeconds   int       `json:"target_seconds"`
	ProgressSeconds int       `json:"progress_seconds"`
	Active          bool      `json:"active"`
	Completed       bool      `json:"completed"`
}

// Remaining returns the number of seconds left before the goal is met.
func (g *Goal) Remaining() int {
	r := g.TargetSeconds - g.ProgressSeconds
	if r < 0 {
		return 0
	}

	return r
}

// Percent returns the goal progress as a percentage in [0, 100].
func (g *Goal) Percent() float64 {
	if g.TargetSeconds <= 0 {
		return 0
	}

	p := float64(g.ProgressSeconds) / float64(g.TargetSeconds) * 100
	if p > 100 {
		return 100
	}

	return p
}
