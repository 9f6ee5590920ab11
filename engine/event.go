package engine

import (
	"time"

	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/tracker"
)

// Event is a unit of work handled by the dispatcher.
type Event interface {
	engineEvent()
}

// Browser carries a tab or window notification to the session tracker.
type Browser struct {
	tracker.Event
}

// Summarize requests a summary of the page text extracted from URL.
type Summarize struct {
	URL   string
	Title string
	Text  string
}

// StartGoal replaces the current goal with a new one.
type StartGoal struct {
	Type   models.GoalType
	Target time.Duration
}

// StopGoal deactivates the current goal.
type StopGoal struct{}

// GoalStatus reports the current goal.
type GoalStatus struct{}

// Export sends today's digest to the note exporter.
type Export struct{}

// Tick triggers periodic maintenance such as auto-export and pruning.
type Tick struct{}

// summaryDone and exportDone carry the results of background work back onto
// the dispatcher so that all store writes happen there.
type summaryDone struct {
	summary models.Summary
}

type exportDone struct {
	at time.Time
}

func (Browser) engineEvent()     {}
func (Summarize) engineEvent()   {}
func (StartGoal) engineEvent()   {}
func (StopGoal) engineEvent()    {}
func (GoalStatus) engineEvent()  {}
func (Export) engineEvent()      {}
func (Tick) engineEvent()        {}
func (summaryDone) engineEvent() {}
func (exportDone) engineEvent()  {}
