// Package engine serialises browser events and user commands onto a single
// dispatcher goroutine that owns the tracker, goal, and store
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/diary/goal"
	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/stats"
	"github.com/ayoisaiah/diary/store"
	"github.com/ayoisaiah/diary/tracker"
)

const (
	tickInterval   = time.Hour
	dedupeSize     = 512
	dedupeTTL      = 30 * time.Minute
	summaryTimeout = time.Minute
	exportTimeout  = 30 * time.Second
)

var (
	ErrStopped = &apperr.Error{
		Message: "the event loop is not running",
	}

	errSummariesDisabled = &apperr.Error{
		Message: "page summaries are disabled",
	}

	errExportDisabled = &apperr.Error{
		Message: "Notion export is not configured",
	}
)

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(title, message string) error
}

// Summarizer produces a short summary of page text.
type Summarizer interface {
	Summarize(ctx context.Context, url, title, text string) (string, error)
}

// Exporter sends a daily digest to an external note-taking service.
type Exporter interface {
	Export(ctx context.Context, d stats.Digest) error
}

// Options configures an Engine. Store and Tracker are required.
type Options struct {
	Store      store.DB
	Tracker    *tracker.Tracker
	Notifier   Notifier
	Summarizer Summarizer
	Exporter   Exporter
	Logger     *slog.Logger
	Now        func() time.Time
	// GoalCmd is run when a goal is completed.
	GoalCmd string
	// MinChars is the page text length at or below which summaries are
	// skipped. MaxChars truncates longer text.
	MinChars int
	MaxChars int
	// ExportHour is the local hour from which the daily auto-export may run.
	ExportHour    int
	RetentionDays int
	AutoExport    bool
}

type request struct {
	ev    Event
	reply chan Reply
}

// Engine processes events one at a time.
type Engine struct {
	opts   Options
	goals  *goal.Tracker
	events chan request
	done   chan struct{}
	seen   *expirable.LRU[string, struct{}]
	wg     sync.WaitGroup
	// autoExportDay is the local day of the last automatic export attempt,
	// successful or not.
	autoExportDay int
	// inflight is the context for background work, cancelled on shutdown.
	inflight context.Context
	cancel   context.CancelFunc
}

// New returns an Engine that resumes the goal persisted in the store.
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	g, err := opts.Store.GetGoal()
	if err != nil {
		return nil, fmt.Errorf("loading goal: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		opts:     opts,
		goals:    goal.NewTracker(g),
		events:   make(chan request),
		done:     make(chan struct{}),
		seen:     expirable.NewLRU[string, struct{}](dedupeSize, nil, dedupeTTL),
		inflight: ctx,
		cancel:   cancel,
	}, nil
}

// Submit hands ev to the dispatcher and waits for the result.
func (e *Engine) Submit(ctx context.Context, ev Event) (Reply, error) {
	req := request{ev: ev, reply: make(chan Reply, 1)}

	select {
	case e.events <- req:
	case <-e.done:
		return Reply{}, ErrStopped
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// post queues an internal event from a background goroutine. It is dropped if
// the dispatcher has stopped.
func (e *Engine) post(ev Event) {
	select {
	case e.events <- request{ev: ev}:
	case <-e.done:
	}
}

// Run dispatches events until ctx is cancelled. Open sessions are finalised
// before it returns.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	e.prune()

	for {
		select {
		case req := <-e.events:
			r := e.handle(req.ev)
			if req.reply != nil {
				req.reply <- r
			}
		case <-ticker.C:
			e.handle(Tick{})
		case <-ctx.Done():
			e.shutdown()
			return nil
		}
	}
}

func (e *Engine) shutdown() {
	for _, rec := range e.opts.Tracker.FinalizeAll(e.opts.Now()) {
		e.record(rec)
	}

	close(e.done)
	e.cancel()
	e.wg.Wait()
}

func fail(err error) Reply {
	return Reply{Error: err.Error()}
}

func (e *Engine) handle(ev Event) Reply {
	now := e.opts.Now()

	switch ev := ev.(type) {
	case Browser:
		if u, ok := ev.Event.(tracker.TabUpdated); ok {
			// a new page load may be summarised again
			e.seen.Remove(u.URL)
		}

		for _, rec := range e.opts.Tracker.Handle(ev.Event, now) {
			e.record(rec)
		}
	case Summarize:
		return e.summarize(ev, now)
	case StartGoal:
		g, err := e.goals.Start(ev.Type, ev.Target, now)
		if err != nil {
			return fail(err)
		}

		e.saveGoal()

		return Reply{OK: true, Goal: g}
	case StopGoal:
		g, err := e.goals.Stop()
		if err != nil {
			return fail(err)
		}

		e.saveGoal()

		return Reply{OK: true, Goal: g}
	case GoalStatus:
		return Reply{OK: true, Goal: e.goals.Current()}
	case Export:
		if err := e.export(now); err != nil {
			return fail(err)
		}
	case Tick:
		e.tick(now)
	case summaryDone:
		if err := e.opts.Store.AppendSummary(&ev.summary); err != nil {
			e.opts.Logger.Error("saving summary", "url", ev.summary.URL, "error", err)
		}
	case exportDone:
		if err := e.opts.Store.SetLastExport(ev.at); err != nil {
			e.opts.Logger.Error("saving export time", "error", err)
		}
	}

	return Reply{OK: true}
}

// record persists rec and applies it to the active goal. Storage failures
// are logged and tracking carries on.
func (e *Engine) record(rec models.ActivityRecord) {
	log := e.opts.Logger

	if err := e.opts.Store.AppendActivity(&rec); err != nil {
		log.Error("saving activity", "domain", rec.Domain, "error", err)
	} else {
		log.Debug(
			"activity recorded",
			"domain", rec.Domain,
			"category", rec.Category,
			"seconds", rec.TimeSpent,
		)
	}

	changed, completed := e.goals.OnRecord(rec)
	if changed {
		e.saveGoal()
	}

	if completed {
		e.goalCompleted()
	}
}

func (e *Engine) saveGoal() {
	if err := e.opts.Store.SaveGoal(e.goals.Current()); err != nil {
		e.opts.Logger.Error("saving goal", "error", err)
	}
}

func (e *Engine) goalCompleted() {
	g := e.goals.Current()

	e.opts.Logger.Info("goal completed", "type", g.Type, "target", g.TargetSeconds)

	if e.opts.Notifier != nil {
		err := e.opts.Notifier.Notify(
			"Goal completed! 🎉",
			fmt.Sprintf(
				"You finished your %s goal of %s.",
				g.Type,
				timeutil.FormatSeconds(g.TargetSeconds),
			),
		)
		if err != nil {
			e.opts.Logger.Warn("unable to display notification", "error", err)
		}
	}

	if e.opts.GoalCmd != "" {
		e.wg.Add(1)

		go func() {
			defer e.wg.Done()

			if err := runCmd(e.opts.GoalCmd); err != nil {
				e.opts.Logger.Error("running goal command", "error", err)
			}
		}()
	}
}

// runCmd executes a shell-like command string.
func runCmd(command string) error {
	cmdSlice, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("unable to parse goal_cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	//nolint:gosec // the command comes from the user's own config
	cmd := exec.Command(cmdSlice[0], cmdSlice[1:]...)

	return cmd.Run()
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

func (e *Engine) summarize(ev Summarize, now time.Time) Reply {
	if e.opts.Summarizer == nil {
		return fail(errSummariesDisabled)
	}

	if utf8.RuneCountInString(ev.Text) <= e.opts.MinChars {
		return Reply{OK: true}
	}

	if _, ok := e.seen.Get(ev.URL); ok {
		return Reply{OK: true}
	}

	e.seen.Add(ev.URL, struct{}{})

	text := truncate(ev.Text, e.opts.MaxChars)

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(e.inflight, summaryTimeout)
		defer cancel()

		out, err := e.opts.Summarizer.Summarize(ctx, ev.URL, ev.Title, text)
		if err != nil {
			e.opts.Logger.Error("summarising page", "url", ev.URL, "error", err)
			return
		}

		e.post(summaryDone{summary: models.Summary{
			URL:       ev.URL,
			Title:     ev.Title,
			Summary:   out,
			Timestamp: now,
		}})
	}()

	return Reply{OK: true}
}

// export builds today's digest on the dispatcher and sends it in the
// background.
func (e *Engine) export(now time.Time) error {
	if e.opts.Exporter == nil {
		return errExportDisabled
	}

	start, end := timeutil.PeriodRange(timeutil.PeriodToday, now)

	records, err := e.opts.Store.GetActivity(start, end)
	if err != nil {
		return err
	}

	summaries, err := e.opts.Store.GetSummaries(start, end)
	if err != nil {
		return err
	}

	digest := stats.BuildDigest(records, summaries, now)

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(e.inflight, exportTimeout)
		defer cancel()

		if err := e.opts.Exporter.Export(ctx, digest); err != nil {
			if !errors.Is(err, context.Canceled) {
				e.opts.Logger.Error("exporting digest", "error", err)
			}

			return
		}

		e.opts.Logger.Info("digest exported", "title", digest.Title)

		e.post(exportDone{at: now})
	}()

	return nil
}

// tick runs the daily auto-export once the export hour is reached and
// prunes expired data.
func (e *Engine) tick(now time.Time) {
	e.prune()

	if !e.opts.AutoExport || e.opts.Exporter == nil {
		return
	}

	if now.Local().Hour() < e.opts.ExportHour {
		return
	}

	last, err := e.opts.Store.LastExport()
	if err != nil {
		e.opts.Logger.Error("reading last export", "error", err)
		return
	}

	today := timeutil.DayFormat(now.Local())

	if e.autoExportDay == today {
		return
	}

	if !last.IsZero() && timeutil.DayFormat(last.Local()) == today {
		return
	}

	// failed exports are not retried until the next day
	e.autoExportDay = today

	if err := e.export(now); err != nil {
		e.opts.Logger.Error("auto-export", "error", err)
	}
}

// prune deletes activity and summaries older than the retention period.
func (e *Engine) prune() {
	if e.opts.RetentionDays <= 0 {
		return
	}

	n, s, err := Prune(e.opts.Store, e.opts.RetentionDays, e.opts.Now())
	if err != nil {
		e.opts.Logger.Error("pruning old data", "error", err)
		return
	}

	if n > 0 || s > 0 {
		e.opts.Logger.Info("pruned old data", "activity", n, "summaries", s)
	}
}

// Prune deletes activity and summaries logged more than days before now.
func Prune(db store.DB, days int, now time.Time) (activity, summaries int, err error) {
	cutoff := timeutil.RoundToStart(now.Local().AddDate(0, 0, -days))

	activity, err = db.DeleteActivityBefore(cutoff)
	if err != nil {
		return 0, 0, err
	}

	summaries, err = db.DeleteSummariesBefore(cutoff)

	return activity, summaries, err
}
