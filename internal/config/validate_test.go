package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Tracking:  TrackingConfig{MinTime: 5},
		Streak:    StreakConfig{Anchor: "today", Goal: 30},
		Summaries: SummariesConfig{MinChars: 50, MaxChars: 3000},
		Notion:    NotionConfig{ExportHour: 21},
		Data:      DataConfig{RetentionDays: 90},
		Storage:   StorageConfig{Driver: "bolt"},
		Server:    ServerConfig{Port: 1111},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name   string
		Modify func(c *Config)
		Want   error
	}{
		{
			Name:   "defaults are valid",
			Modify: func(*Config) {},
		},
		{
			Name:   "retention of zero keeps everything",
			Modify: func(c *Config) { c.Data.RetentionDays = 0 },
		},
		{
			Name:   "negative min time",
			Modify: func(c *Config) { c.Tracking.MinTime = -1 },
			Want:   errOutOfRange,
		},
		{
			Name:   "export hour past midnight",
			Modify: func(c *Config) { c.Notion.ExportHour = 24 },
			Want:   errOutOfRange,
		},
		{
			Name:   "min chars above max chars",
			Modify: func(c *Config) { c.Summaries.MinChars = 4000 },
			Want:   errOutOfRange,
		},
		{
			Name:   "zero streak goal",
			Modify: func(c *Config) { c.Streak.Goal = 0 },
			Want:   errOutOfRange,
		},
		{
			Name:   "unknown driver",
			Modify: func(c *Config) { c.Storage.Driver = "postgres" },
			Want:   errUnknownDriver,
		},
		{
			Name:   "unknown log level",
			Modify: func(c *Config) { c.Logging.Level = "verbose" },
			Want:   errUnknownLogLevel,
		},
		{
			Name:   "unknown log format",
			Modify: func(c *Config) { c.Logging.Format = "xml" },
			Want:   errUnknownLogFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := validConfig()
			tc.Modify(cfg)

			err := cfg.Validate()
			if tc.Want == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.Want)
		})
	}
}

func TestValidateDelegates(t *testing.T) {
	cfg := validConfig()
	cfg.Streak.Anchor = "someday"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Notifications.Sound = filepath.Join(t.TempDir(), "bell.aac")
	assert.Error(t, cfg.Validate())
}

func TestApplyCLIOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Notifications.Enabled = true

	applyCLIOptions(cfg, CLIOptions{
		Driver:        "sqlite",
		Port:          8080,
		DisableNotify: true,
		NoColor:       true,
	})

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, uint(8080), cfg.Server.Port)
	assert.False(t, cfg.Notifications.Enabled)
	assert.True(t, cfg.Display.NoColor)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Tracking.MinTime)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "DIARY_SUMMARIES_API_KEY", EnvKey(keySummariesAPIKey))
	assert.Equal(t, "DIARY_NOTION_DATABASE_ID", EnvKey(keyNotionDatabaseID))
}
