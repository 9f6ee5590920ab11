package app

import (
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/internal/timeutil"
)

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	driverFlag = &cli.StringFlag{
		Name:  "driver",
		Usage: "Storage backend: bolt or sqlite (default: storage.driver)",
	}

	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, or error (default: logging.level)",
	}

	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format: text or json (default: logging.format)",
	}

	portFlag = &cli.UintFlag{
		Name:  "port",
		Usage: "Port for the local HTTP server (default: server.port)",
	}

	minTimeFlag = &cli.IntFlag{
		Name:  "min-time",
		Usage: "Shortest session in seconds that is recorded (default: tracking.min_time)",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the desktop notification shown when a goal is completed",
	}

	noServerFlag = &cli.BoolFlag{
		Name:  "no-server",
		Usage: "Do not start the local HTTP server alongside the native messaging host",
	}

	originFlag = &cli.StringFlag{
		Name:   "origin",
		Usage:  "Origin of the calling extension, passed by the browser",
		Hidden: true,
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print output as JSON",
	}

	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Reporting period: " + periodUsage(),
	}

	startFlag = &cli.StringFlag{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "Start of the reporting period (e.g. '2024-06-01' or '3 days ago')",
	}

	endFlag = &cli.StringFlag{
		Name:    "end",
		Aliases: []string{"e"},
		Usage:   "End of the reporting period (e.g. 'yesterday')",
	}

	digestFlag = &cli.BoolFlag{
		Name:  "digest",
		Usage: "Print today's digest instead of the full report",
	}

	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Sort records by time, domain, or duration",
		Value: sortTime,
	}

	goalTypeFlag = &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Goal type: focus, learning, or limit",
	}

	goalDurationFlag = &cli.DurationFlag{
		Name:    "duration",
		Aliases: []string{"D"},
		Usage:   "Goal target (e.g. 45m or 2h)",
	}

	exportTestFlag = &cli.BoolFlag{
		Name:  "test",
		Usage: "Test the Notion connection without exporting",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the JSON export to this file instead of standard output",
	}

	daysFlag = &cli.IntFlag{
		Name:  "days",
		Usage: "Delete data older than this many days (default: data.retention_days)",
	}

	envFileFlag = &cli.BoolFlag{
		Name:  "env",
		Usage: "Edit the .env file that holds API keys instead of the config file",
	}

	extensionIDFlag = &cli.StringFlag{
		Name:     "extension-id",
		Usage:    "ID of the installed browser extension",
		Required: true,
	}

	browserFlag = &cli.StringSliceFlag{
		Name:  "browser",
		Usage: "Browser to register the host with: chrome, chromium, brave, or edge",
		Value: cli.NewStringSlice("chrome"),
	}
)

func periodUsage() string {
	s := ""

	for i, p := range timeutil.PeriodCollection {
		if i > 0 {
			s += ", "
		}

		s += string(p)
	}

	return s
}

var filterFlags = []cli.Flag{periodFlag, startFlag, endFlag}
