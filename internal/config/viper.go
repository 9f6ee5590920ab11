package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ayoisaiah/diary/internal/osutil"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// DIARY_SUMMARIES_API_KEY for summaries.api_key.
const EnvPrefix = "DIARY"

const (
	keyMinTime              = "tracking.min_time"
	keyExcluded             = "tracking.excluded"
	keyIncognito            = "tracking.incognito"
	keyStreakAnchor         = "streak.anchor"
	keyStreakGoal           = "streak.goal"
	keySummariesEnabled     = "summaries.enabled"
	keySummariesAPIKey      = "summaries.api_key"
	keySummariesModel       = "summaries.model"
	keySummariesEndpoint    = "summaries.endpoint"
	keySummariesMinChars    = "summaries.min_chars"
	keySummariesMaxChars    = "summaries.max_chars"
	keyNotionAPIKey         = "notion.api_key"
	keyNotionDatabaseID     = "notion.database_id"
	keyNotionAutoExport     = "notion.auto_export"
	keyNotionExportHour     = "notion.export_hour"
	keyNotionVersion        = "notion.version"
	keyNotificationsEnabled = "notifications.enabled"
	keyNotificationsSound   = "notifications.sound"
	keyGoalCmd              = "notifications.goal_cmd"
	keyRetentionDays        = "data.retention_days"
	keyDarkTheme            = "display.dark_theme"
	keyNoColor              = "display.no_color"
	keyStorageDriver        = "storage.driver"
	keyServerPort           = "server.port"
	keyLogLevel             = "logging.level"
	keyLogFormat            = "logging.format"
)

// DefaultExcluded lists the URL patterns that are never tracked unless the
// user changes tracking.excluded.
var DefaultExcluded = []string{
	"chrome://",
	"chrome-extension://",
	"moz-extension://",
	"about:",
	"file://",
	"localhost",
}

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing one with the defaults if it does not exist.
// Values from the optional dotenv file at envPath and DIARY_* environment
// variables take precedence over the file.
func WithViperConfig(configPath, envPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setDefaults(v)

		if c.prompt != nil {
			applyPromptOptions(v, c.prompt)
		}

		err := v.ReadInConfig()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return errReadConfig.Wrap(err)
			}

			if err := os.MkdirAll(filepath.Dir(configPath), osutil.DirPermission); err != nil {
				return errWriteConfig.Wrap(err)
			}

			// environment values are bound after this point so secrets
			// never end up in the written file
			if err := v.WriteConfig(); err != nil {
				return errWriteConfig.Wrap(err)
			}
		}

		if err := loadEnv(v, envPath); err != nil {
			return err
		}

		if err := v.Unmarshal(c); err != nil {
			return errReadConfig.Wrap(err)
		}

		c.System.ConfigPath = configPath
		c.System.EnvPath = envPath

		return nil
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyMinTime, 5)
	v.SetDefault(keyExcluded, DefaultExcluded)
	v.SetDefault(keyIncognito, false)
	v.SetDefault(keyStreakAnchor, "today")
	v.SetDefault(keyStreakGoal, 30)
	v.SetDefault(keySummariesEnabled, false)
	v.SetDefault(keySummariesAPIKey, "")
	v.SetDefault(keySummariesModel, "gemini-pro")
	v.SetDefault(keySummariesEndpoint, "https://generativelanguage.googleapis.com")
	v.SetDefault(keySummariesMinChars, 50)
	v.SetDefault(keySummariesMaxChars, 3000)
	v.SetDefault(keyNotionAPIKey, "")
	v.SetDefault(keyNotionDatabaseID, "")
	v.SetDefault(keyNotionAutoExport, false)
	v.SetDefault(keyNotionExportHour, 21)
	v.SetDefault(keyNotionVersion, "2022-06-28")
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyNotificationsSound, "")
	v.SetDefault(keyGoalCmd, "")
	v.SetDefault(keyRetentionDays, 90)
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyNoColor, false)
	v.SetDefault(keyStorageDriver, "bolt")
	v.SetDefault(keyServerPort, 1111)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
}

// loadEnv reads the optional dotenv file into the process environment and
// lets DIARY_* variables override config keys.
func loadEnv(v *viper.Viper, envPath string) error {
	if envPath != "" {
		err := godotenv.Load(envPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errReadEnv.Fmt(envPath).Wrap(err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return nil
}
