package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func withFilters(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, filterFlags...), flags...)
}

// Get retrieves the diary app instance.
func Get() *cli.App {
	diaryApp := &cli.App{
		Name: "diary",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Diary records the time you spend on each website, classifies it, and
		turns it into productivity scores, streaks, achievements, and a daily
		digest that can be exported to Notion.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "host",
				Usage:  "Run the native messaging host (started by the browser extension)",
				Action: hostAction,
				Flags: []cli.Flag{
					originFlag,
					noServerFlag,
					portFlag,
					minTimeFlag,
					disableNotificationFlag,
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the event loop behind a local HTTP API",
				Action: serveAction,
				Flags: []cli.Flag{
					portFlag,
					minTimeFlag,
					disableNotificationFlag,
				},
			},
			{
				Name:   "stats",
				Usage:  "Show time by category and domain, productivity score, streak, and achievements",
				Action: statsAction,
				Flags:  withFilters(jsonFlag, digestFlag),
			},
			{
				Name:   "list",
				Usage:  "List the activity records within a time period",
				Action: listAction,
				Flags:  withFilters(jsonFlag, sortFlag),
			},
			{
				Name:   "streak",
				Usage:  "Show the current and longest productivity streaks",
				Action: streakAction,
				Flags:  []cli.Flag{jsonFlag},
			},
			{
				Name:   "achievements",
				Usage:  "Show unlocked and locked achievements",
				Action: achievementsAction,
				Flags:  []cli.Flag{jsonFlag},
			},
			{
				Name:  "goal",
				Usage: "Start, stop, or check a time goal",
				Subcommands: []*cli.Command{
					{
						Name:   "start",
						Usage:  "Start a new goal, replacing the current one",
						Action: goalStartAction,
						Flags:  []cli.Flag{goalTypeFlag, goalDurationFlag},
					},
					{
						Name:   "stop",
						Usage:  "Stop the active goal",
						Action: goalStopAction,
					},
					{
						Name:   "status",
						Usage:  "Show the progress of the current goal",
						Action: goalStatusAction,
						Flags:  []cli.Flag{jsonFlag},
					},
				},
			},
			{
				Name:   "summaries",
				Usage:  "Show the page summaries within a time period",
				Action: summariesAction,
				Flags:  withFilters(jsonFlag),
			},
			{
				Name:   "export",
				Usage:  "Export today's digest to Notion, or all data as JSON",
				Action: exportAction,
				Flags:  []cli.Flag{jsonFlag, outputFlag, exportTestFlag},
			},
			{
				Name:   "prune",
				Usage:  "Delete data older than the retention period",
				Action: pruneAction,
				Flags:  []cli.Flag{daysFlag},
			},
			{
				Name:   "categories",
				Usage:  "Show the domain to category table",
				Action: categoriesAction,
				Flags:  []cli.Flag{jsonFlag},
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration",
				Action: configAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
				Flags:  []cli.Flag{envFileFlag},
			},
			{
				Name:   "install-host",
				Usage:  "Register the native messaging host with your browsers",
				Action: installHostAction,
				Flags:  []cli.Flag{extensionIDFlag, browserFlag},
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
			driverFlag,
			logLevelFlag,
			logFormatFlag,
		},
		Action: statsAction,
		Before: beforeAction,
	}

	return diaryApp
}
