// Package config loads diary settings from the config file, environment, and
// command-line flags
package config

import (
	"fmt"
	"io"
	"os"
	"time"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Tracking      TrackingConfig     `mapstructure:"tracking"`
		Streak        StreakConfig       `mapstructure:"streak"`
		Summaries     SummariesConfig    `mapstructure:"summaries"`
		Notion        NotionConfig       `mapstructure:"notion"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Data          DataConfig         `mapstructure:"data"`
		Display       DisplayConfig      `mapstructure:"display"`
		Storage       StorageConfig      `mapstructure:"storage"`
		Server        ServerConfig       `mapstructure:"server"`
		Logging       LoggingConfig      `mapstructure:"logging"`
		System        SystemConfig       `mapstructure:"-"`

		prompt *PromptOptions
	}

	// TrackingConfig holds session tracking settings.
	TrackingConfig struct {
		Excluded  []string `mapstructure:"excluded"`
		MinTime   int      `mapstructure:"min_time"` // seconds
		Incognito bool     `mapstructure:"incognito"`
	}

	// StreakConfig holds streak settings.
	StreakConfig struct {
		Anchor string `mapstructure:"anchor"`
		Goal   int    `mapstructure:"goal"` // days
	}

	// SummariesConfig holds page summary settings.
	SummariesConfig struct {
		APIKey   string `mapstructure:"api_key"`
		Model    string `mapstructure:"model"`
		Endpoint string `mapstructure:"endpoint"`
		MinChars int    `mapstructure:"min_chars"`
		MaxChars int    `mapstructure:"max_chars"`
		Enabled  bool   `mapstructure:"enabled"`
	}

	// NotionConfig holds Notion export settings.
	NotionConfig struct {
		APIKey     string `mapstructure:"api_key"`
		DatabaseID string `mapstructure:"database_id"`
		Version    string `mapstructure:"version"`
		ExportHour int    `mapstructure:"export_hour"`
		AutoExport bool   `mapstructure:"auto_export"`
	}

	// NotificationConfig holds notification settings.
	NotificationConfig struct {
		Sound   string `mapstructure:"sound"`
		GoalCmd string `mapstructure:"goal_cmd"`
		Enabled bool   `mapstructure:"enabled"`
	}

	// DataConfig holds data retention settings.
	DataConfig struct {
		RetentionDays int `mapstructure:"retention_days"` // 0 keeps everything
	}

	// DisplayConfig holds display-related settings.
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
		NoColor   bool `mapstructure:"no_color"`
	}

	// StorageConfig selects the database backend.
	StorageConfig struct {
		Driver string `mapstructure:"driver"`
	}

	// ServerConfig holds HTTP server settings.
	ServerConfig struct {
		Port uint `mapstructure:"port"`
	}

	// LoggingConfig holds log settings.
	LoggingConfig struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	// SystemConfig holds system-related settings.
	SystemConfig struct {
		ConfigPath string
		EnvPath    string
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.1.0"

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// MinTime returns the shortest session that is recorded.
func (c *Config) MinTime() time.Duration {
	return time.Duration(c.Tracking.MinTime) * time.Second
}

// New creates a new Config and applies options in order.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// String renders the effective configuration with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"tracking: min_time=%ds excluded=%d incognito=%t\n"+
			"streak: anchor=%s goal=%d\n"+
			"summaries: enabled=%t model=%s api_key=%s\n"+
			"notion: auto_export=%t database_id=%s api_key=%s\n"+
			"storage: driver=%s retention_days=%d\n"+
			"server: port=%d",
		c.Tracking.MinTime,
		len(c.Tracking.Excluded),
		c.Tracking.Incognito,
		c.Streak.Anchor,
		c.Streak.Goal,
		c.Summaries.Enabled,
		c.Summaries.Model,
		mask(c.Summaries.APIKey),
		c.Notion.AutoExport,
		c.Notion.DatabaseID,
		mask(c.Notion.APIKey),
		c.Storage.Driver,
		c.Data.RetentionDays,
		c.Server.Port,
	)
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}

	return "********"
}
