package config

import (
	"github.com/ayoisaiah/diary/internal/notify"
	"github.com/ayoisaiah/diary/stats"
	"github.com/ayoisaiah/diary/store"
)

const (
	maxMinTime       = 3600
	maxStreakGoal    = 3650
	maxRetentionDays = 3650
	maxPageChars     = 100000
	maxPort          = 65535
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := c.validateRanges(); err != nil {
		return err
	}

	if _, err := stats.ParseAnchor(c.Streak.Anchor); err != nil {
		return err
	}

	if err := notify.ValidateSound(c.Notifications.Sound); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case store.DriverBolt, store.DriverSQLite:
	default:
		return errUnknownDriver.Fmt(c.Storage.Driver)
	}

	return c.validateLogging()
}

func (c *Config) validateRanges() error {
	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{keyMinTime, c.Tracking.MinTime, 0, maxMinTime},
		{keyStreakGoal, c.Streak.Goal, 1, maxStreakGoal},
		{keySummariesMaxChars, c.Summaries.MaxChars, 1, maxPageChars},
		{keySummariesMinChars, c.Summaries.MinChars, 0, c.Summaries.MaxChars},
		{keyNotionExportHour, c.Notion.ExportHour, 0, 23},
		{keyRetentionDays, c.Data.RetentionDays, 0, maxRetentionDays},
		{keyServerPort, int(c.Server.Port), 1, maxPort},
	}

	for _, check := range checks {
		if check.value < check.min || check.value > check.max {
			return errOutOfRange.Fmt(check.name, check.min, check.max, check.value)
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errUnknownLogLevel.Fmt(c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return errUnknownLogFormat.Fmt(c.Logging.Format)
	}

	return nil
}
