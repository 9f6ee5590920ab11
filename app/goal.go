package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/engine"
	"github.com/ayoisaiah/diary/goal"
	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/config"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/internal/ui"
	"github.com/ayoisaiah/diary/report"
	"github.com/ayoisaiah/diary/store"
)

const remoteTimeout = 5 * time.Second

var (
	errRemote = &apperr.Error{
		Message: "the running diary host rejected the request: %s",
	}

	errMissingGoalFlags = &apperr.Error{
		Message: "--type and --duration are required when not running in a terminal",
	}
)

// errUnreachable reports that no host is listening, so the goal can be
// changed in the store directly.
var errUnreachable = errors.New("diary host is not running")

// submitRemote sends msg to the events endpoint of a running host or
// server.
func submitRemote(ctx context.Context, port uint, msg engine.Message) (engine.Reply, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return engine.Reply{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("http://127.0.0.1:%d/api/events", port),
		bytes.NewReader(body),
	)
	if err != nil {
		return engine.Reply{}, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return engine.Reply{}, errUnreachable
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound ||
		resp.StatusCode == http.StatusServiceUnavailable {
		return engine.Reply{}, errUnreachable
	}

	var reply engine.Reply

	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return engine.Reply{}, err
	}

	if !reply.OK {
		return reply, errRemote.Fmt(firstNonEmptyString(reply.Error, resp.Status))
	}

	return reply, nil
}

// changeGoal applies msg through a running host when there is one, and to
// the store otherwise.
func changeGoal(
	ctx *cli.Context,
	cfg *config.Config,
	db store.DB,
	msg engine.Message,
	local func(t *goal.Tracker) (*models.Goal, error),
) (*models.Goal, error) {
	reply, err := submitRemote(ctx.Context, cfg.Server.Port, msg)
	if err == nil {
		return reply.Goal, nil
	}

	if !errors.Is(err, errUnreachable) {
		return nil, err
	}

	current, err := db.GetGoal()
	if err != nil {
		return nil, err
	}

	t := goal.NewTracker(current)

	g, err := local(t)
	if err != nil {
		return nil, err
	}

	if err := db.SaveGoal(t.Current()); err != nil {
		return nil, err
	}

	return g, nil
}

// promptGoal asks for the goal type and target that were not given as
// flags.
func promptGoal(goalType *string, target *time.Duration) error {
	var fields []huh.Field

	if *goalType == "" {
		*goalType = string(models.GoalFocus)

		fields = append(fields, huh.NewSelect[string]().
			Title("Goal type").
			Options(
				huh.NewOption("Focus (learning and productive sites)", string(models.GoalFocus)),
				huh.NewOption("Learning", string(models.GoalLearning)),
				huh.NewOption("Limit (entertainment and social media)", string(models.GoalLimit)),
			).
			Value(goalType))
	}

	duration := "1h"

	if *target == 0 {
		fields = append(fields, huh.NewInput().
			Title("Target (e.g. 45m or 2h)").
			Value(&duration).
			Validate(func(s string) error {
				d, err := time.ParseDuration(strings.TrimSpace(s))
				if err != nil {
					return err
				}

				if d < goal.MinTarget {
					return fmt.Errorf("must be at least %v", goal.MinTarget)
				}

				return nil
			}))
	}

	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	if *target == 0 {
		d, err := time.ParseDuration(strings.TrimSpace(duration))
		if err != nil {
			return err
		}

		*target = d
	}

	return nil
}

// goalStartAction starts a new goal, prompting for missing values.
func goalStartAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		goalType := ctx.String("type")
		target := ctx.Duration("duration")

		if goalType == "" || target == 0 {
			if !ui.IsTerminal(os.Stdin) {
				return errMissingGoalFlags
			}

			if err := promptGoal(&goalType, &target); err != nil {
				return err
			}
		}

		g, err := changeGoal(ctx, cfg, db, engine.Message{
			Type:     engine.MsgGoalStart,
			GoalType: goalType,
			Target:   int(target.Seconds()),
		}, func(t *goal.Tracker) (*models.Goal, error) {
			return t.Start(models.GoalType(goalType), target, time.Now())
		})
		if err != nil {
			return err
		}

		report.Success(
			"started a %s goal of %s",
			g.Type,
			timeutil.FormatSeconds(g.TargetSeconds),
		)

		return nil
	})
}

// goalStopAction stops the active goal.
func goalStopAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		g, err := changeGoal(ctx, cfg, db, engine.Message{
			Type: engine.MsgGoalStop,
		}, func(t *goal.Tracker) (*models.Goal, error) {
			return t.Stop()
		})
		if err != nil {
			return err
		}

		report.Success(
			"stopped the %s goal at %s of %s",
			g.Type,
			timeutil.FormatSeconds(g.ProgressSeconds),
			timeutil.FormatSeconds(g.TargetSeconds),
		)

		return nil
	})
}

// goalStatusAction prints the progress of the current goal.
func goalStatusAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		g, err := changeGoal(ctx, cfg, db, engine.Message{
			Type: engine.MsgGoalStatus,
		}, func(t *goal.Tracker) (*models.Goal, error) {
			return t.Current(), nil
		})
		if err != nil {
			return err
		}

		if ctx.Bool("json") {
			return printJSON(g)
		}

		if g == nil {
			report.Info("no goal has been set. Start one with 'diary goal start'")
			return nil
		}

		printGoal(g)

		return nil
	})
}

func printGoal(g *models.Goal) {
	state := ui.Yellow("active")

	switch {
	case g.Completed:
		state = ui.Green("completed")
	case !g.Active:
		state = ui.Red("stopped")
	}

	pterm.Printfln("%s %s goal [%s]", ui.Blue("Goal:"), g.Type, state)
	pterm.Printfln("%s %s", ui.Blue("Started:"), g.StartTime.Local().Format("Jan 02, 2006 03:04 PM"))
	pterm.Printfln(
		"%s %s %s / %s (%.0f%%)",
		ui.Blue("Progress:"),
		ui.ProgressBar(g.Percent(), 20),
		timeutil.FormatSeconds(g.ProgressSeconds),
		timeutil.FormatSeconds(g.TargetSeconds),
		g.Percent(),
	)

	if g.Active {
		pterm.Printfln("%s %s", ui.Blue("Remaining:"), timeutil.FormatSeconds(g.Remaining()))
	}
}
