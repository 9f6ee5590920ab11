package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/engine"
	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/config"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/osutil"
	"github.com/ayoisaiah/diary/internal/pathutil"
	"github.com/ayoisaiah/diary/internal/static"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/internal/ui"
	"github.com/ayoisaiah/diary/notion"
	"github.com/ayoisaiah/diary/report"
	"github.com/ayoisaiah/diary/stats"
	"github.com/ayoisaiah/diary/store"
)

const (
	envNoColor      = "NO_COLOR"
	envDiaryNoColor = "DIARY_NO_COLOR"

	notionTimeout = 30 * time.Second
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// loadConfig reads the configuration. The first-run prompt is shown only
// when interactive is true and standard input is a terminal.
func loadConfig(ctx *cli.Context, interactive bool) (*config.Config, error) {
	if err := pathutil.Initialize(); err != nil {
		return nil, err
	}

	configPath := pathutil.ConfigFilePath()
	envPath := pathutil.EnvFilePath()

	var opts []config.Option

	if interactive && ui.IsTerminal(os.Stdin) {
		opts = append(opts, config.WithPromptConfig(configPath, envPath))
	}

	opts = append(
		opts,
		config.WithViperConfig(configPath, envPath),
		config.WithCLIConfig(ctx),
	)

	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	if cfg.Display.NoColor {
		disableStyling()
	}

	return cfg, nil
}

func openStore(cfg *config.Config) (store.DB, error) {
	return store.Open(cfg.Storage.Driver, pathutil.DBFilePath(cfg.Storage.Driver))
}

// withStore loads the config, opens the store, and passes both to fn.
func withStore(
	ctx *cli.Context,
	fn func(cfg *config.Config, db store.DB) error,
) error {
	cfg, err := loadConfig(ctx, true)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}

	defer db.Close()

	return fn(cfg, db)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(config.Stdout, string(b))

	return nil
}

// editConfigAction opens the config file, or the .env file, in the user's
// default text editor.
func editConfigAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx, true)
	if err != nil {
		return err
	}

	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	path := cfg.System.ConfigPath
	if ctx.Bool("env") {
		path = cfg.System.EnvPath
	}

	//nolint:gosec // the editor is chosen by the user
	cmd := exec.Command(editor, path)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// configAction prints the effective configuration with secrets masked.
func configAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx, true)
	if err != nil {
		return err
	}

	pterm.Println(cfg.String())
	pterm.Println()
	pterm.Printfln("config file: %s", cfg.System.ConfigPath)
	pterm.Printfln("env file: %s", cfg.System.EnvPath)
	pterm.Printfln("database: %s", pathutil.DBFilePath(cfg.Storage.Driver))
	pterm.Printfln("log file: %s", pathutil.LogFilePath())

	return nil
}

// statsAction prints the report for the requested period.
func statsAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		now := time.Now()

		if ctx.Bool("digest") {
			digest, err := todaysDigest(db, now)
			if err != nil {
				return err
			}

			if ctx.Bool("json") {
				return printJSON(digest)
			}

			pterm.DefaultSection.Println(digest.Title)
			pterm.Println(digest.Body)

			return nil
		}

		filter, err := config.Filter(ctx)
		if err != nil {
			return err
		}

		records, err := db.GetActivity(time.Time{}, time.Time{})
		if err != nil {
			return err
		}

		anchor, _ := stats.ParseAnchor(cfg.Streak.Anchor)

		r := stats.NewReport(records, filter.StartTime, filter.EndTime, now, anchor)

		if ctx.Bool("json") {
			b, err := r.ToJSON()
			if err != nil {
				return err
			}

			fmt.Fprintln(config.Stdout, string(b))

			return nil
		}

		r.Render(config.Stdout)

		return nil
	})
}

func todaysDigest(db store.DB, now time.Time) (stats.Digest, error) {
	start, end := timeutil.PeriodRange(timeutil.PeriodToday, now)

	records, err := db.GetActivity(start, end)
	if err != nil {
		return stats.Digest{}, err
	}

	summaries, err := db.GetSummaries(start, end)
	if err != nil {
		return stats.Digest{}, err
	}

	return stats.BuildDigest(records, summaries, now), nil
}

// streakAction prints the current and longest streaks and the progress
// towards streak.goal.
func streakAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		records, err := db.GetActivity(time.Time{}, time.Time{})
		if err != nil {
			return err
		}

		anchor, _ := stats.ParseAnchor(cfg.Streak.Anchor)
		streak := stats.ComputeStreak(records, time.Now(), anchor)

		if ctx.Bool("json") {
			return printJSON(streak)
		}

		lastActive := "never"
		if !streak.LastActive.IsZero() {
			lastActive = humanize.Time(streak.LastActive)
		}

		percent := float64(streak.Current) / float64(cfg.Streak.Goal) * 100

		pterm.Printfln("%s %s", ui.Blue("Current streak:"), ui.Green(fmt.Sprintf("%d days", streak.Current)))
		pterm.Printfln("%s %s", ui.Blue("Longest streak:"), ui.Green(fmt.Sprintf("%d days", streak.Longest)))
		pterm.Printfln("%s %s", ui.Blue("Last productive day:"), lastActive)
		pterm.Printfln(
			"%s %s %d/%d",
			ui.Blue("Streak goal:"),
			ui.ProgressBar(percent, 20),
			streak.Current,
			cfg.Streak.Goal,
		)

		return nil
	})
}

// achievementsAction prints every achievement and whether it is unlocked.
func achievementsAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		records, err := db.GetActivity(time.Time{}, time.Time{})
		if err != nil {
			return err
		}

		now := time.Now()
		anchor, _ := stats.ParseAnchor(cfg.Streak.Anchor)
		achievements := stats.Achievements(
			records,
			stats.ComputeStreak(records, now, anchor),
			now,
		)

		if ctx.Bool("json") {
			return printJSON(achievements)
		}

		pterm.Println(stats.GetAchievements(achievements))

		return nil
	})
}

// summariesAction prints the page summaries in the requested period.
func summariesAction(ctx *cli.Context) error {
	return withStore(ctx, func(_ *config.Config, db store.DB) error {
		filter, err := config.Filter(ctx)
		if err != nil {
			return err
		}

		summaries, err := db.GetSummaries(filter.StartTime, filter.EndTime)
		if err != nil {
			return err
		}

		if ctx.Bool("json") {
			return printJSON(summaries)
		}

		if len(summaries) == 0 {
			report.Info("No summaries found for the specified time range")
			return nil
		}

		for i := range summaries {
			s := &summaries[i]

			title := firstNonEmptyString(s.Title, s.URL)

			pterm.Printfln(
				"%s %s",
				ui.Highlight(title),
				pterm.Gray(s.Timestamp.Local().Format("Jan 02, 2006 03:04 PM")),
			)
			pterm.Println(pterm.Gray(s.URL))
			pterm.Println(s.Summary)
			pterm.Println()
		}

		return nil
	})
}

// Dump is the full JSON export of the stored data.
type Dump struct {
	ExportedAt time.Time               `json:"exported_at"`
	LastExport *time.Time              `json:"last_export,omitempty"`
	Goal       *models.Goal            `json:"goal"`
	Activity   []models.ActivityRecord `json:"activity"`
	Summaries  []models.Summary        `json:"summaries"`
}

func dump(db store.DB, now time.Time) (*Dump, error) {
	d := &Dump{ExportedAt: now}

	var err error

	d.Activity, err = db.GetActivity(time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	d.Summaries, err = db.GetSummaries(time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	d.Goal, err = db.GetGoal()
	if err != nil {
		return nil, err
	}

	last, err := db.LastExport()
	if err != nil {
		return nil, err
	}

	if !last.IsZero() {
		d.LastExport = &last
	}

	return d, nil
}

func newExporter(cfg *config.Config) (*notion.Client, error) {
	c, err := notion.New(cfg.Notion.APIKey, cfg.Notion.DatabaseID)
	if err != nil {
		return nil, err
	}

	if cfg.Notion.Version != "" {
		c.Version = cfg.Notion.Version
	}

	return c, nil
}

// exportAction exports today's digest to Notion, tests the connection, or
// dumps all stored data as JSON.
func exportAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		now := time.Now()

		if ctx.Bool("json") {
			d, err := dump(db, now)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return err
			}

			if out := ctx.String("output"); out != "" {
				if err := os.WriteFile(out, b, osutil.SecretPermission); err != nil {
					return err
				}

				report.Success(
					"exported %d records and %d summaries to %s",
					len(d.Activity),
					len(d.Summaries),
					out,
				)

				return nil
			}

			fmt.Fprintln(config.Stdout, string(b))

			return nil
		}

		client, err := newExporter(cfg)
		if err != nil {
			return err
		}

		c, cancel := context.WithTimeout(ctx.Context, notionTimeout)
		defer cancel()

		last, err := db.LastExport()
		if err != nil {
			return err
		}

		if ctx.Bool("test") {
			title, err := client.TestConnection(c)
			if err != nil {
				return err
			}

			report.Success("connected to Notion database %q", title)
			report.Info("last export: %s", lastExportText(last))

			return nil
		}

		digest, err := todaysDigest(db, now)
		if err != nil {
			return err
		}

		if err := client.Export(c, digest); err != nil {
			return err
		}

		if err := db.SetLastExport(now); err != nil {
			return err
		}

		report.Success("exported %q to Notion", digest.Title)

		return nil
	})
}

func lastExportText(last time.Time) string {
	if last.IsZero() {
		return "never"
	}

	return humanize.Time(last)
}

// pruneAction deletes activity and summaries older than the retention
// period.
func pruneAction(ctx *cli.Context) error {
	return withStore(ctx, func(cfg *config.Config, db store.DB) error {
		days := cfg.Data.RetentionDays
		if ctx.IsSet("days") {
			days = ctx.Int("days")
		}

		if days <= 0 {
			report.Info("data retention is disabled: nothing to prune")
			return nil
		}

		activity, summaries, err := engine.Prune(db, days, time.Now())
		if err != nil {
			return err
		}

		report.Success(
			"deleted %s and %s older than %d days",
			plural(activity, "record"),
			plural(summaries, "summary"),
			days,
		)

		return nil
	})
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	if noun == "summary" {
		return humanize.Comma(int64(n)) + " summaries"
	}

	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// categoriesAction prints the effective domain table.
func categoriesAction(ctx *cli.Context) error {
	if _, err := loadConfig(ctx, false); err != nil {
		return err
	}

	table, err := category.LoadWithOverrides(pathutil.CategoryFilePath())
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		out := make(map[category.Category][]string, len(category.All))

		for _, c := range category.All {
			out[c] = table.Domains(c)
		}

		return printJSON(out)
	}

	for _, c := range category.All {
		domains := table.Domains(c)
		if len(domains) == 0 {
			continue
		}

		pterm.Printfln("%s (%d)", ui.Blue(string(c)), len(domains))

		for _, d := range domains {
			pterm.Printfln("  %s", d)
		}
	}

	pterm.Println()
	report.Info(
		"%d domains. Unlisted domains are %s. Add entries in %s",
		table.Len(),
		category.Misc,
		pathutil.CategoryFilePath(),
	)

	return nil
}

// installHostAction registers the native messaging host with the selected
// browsers.
func installHostAction(ctx *cli.Context) error {
	if err := pathutil.Initialize(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(ctx.StringSlice("browser")))

	for _, b := range ctx.StringSlice("browser") {
		dir, err := static.ManifestDir(b)
		if err != nil {
			return err
		}

		dirs = append(dirs, dir)
	}

	written, err := static.Install(exe, ctx.String("extension-id"), pathutil.DataDir(), dirs)
	if err != nil {
		return err
	}

	for _, path := range written {
		report.Success("wrote %s", path)
	}

	return nil
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	if err := pathutil.Initialize(); err != nil {
		return err
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envDiaryNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") || !ui.IsTerminal(os.Stdout) {
		disableStyling()
	}

	return nil
}
