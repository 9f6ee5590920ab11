package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/diary/internal/config"
	"github.com/ayoisaiah/diary/internal/testutil"
)

var ignorePrompt = cmpopts.IgnoreUnexported(config.Config{})

// defaultConfig returns a new Config instance with default values.
func defaultConfig(configPath, envPath string) *config.Config {
	return &config.Config{
		Tracking: config.TrackingConfig{
			MinTime:  5,
			Excluded: config.DefaultExcluded,
		},
		Streak: config.StreakConfig{
			Anchor: "today",
			Goal:   30,
		},
		Summaries: config.SummariesConfig{
			Model:    "gemini-pro",
			Endpoint: "https://generativelanguage.googleapis.com",
			MinChars: 50,
			MaxChars: 3000,
		},
		Notion: config.NotionConfig{
			Version:    "2022-06-28",
			ExportHour: 21,
		},
		Notifications: config.NotificationConfig{
			Enabled: true,
		},
		Data: config.DataConfig{
			RetentionDays: 90,
		},
		Display: config.DisplayConfig{
			DarkTheme: true,
		},
		Storage: config.StorageConfig{
			Driver: "bolt",
		},
		Server: config.ServerConfig{
			Port: 1111,
		},
		Logging: config.LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		System: config.SystemConfig{
			ConfigPath: configPath,
			EnvPath:    envPath,
		},
	}
}

func TestViperWriteConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "diary", "config.yml")
	envPath := filepath.Join(tmpDir, "diary", ".env")

	cfg, err := config.New(config.WithViperConfig(configPath, envPath))
	require.NoError(t, err)

	testutil.Diff(t, defaultConfig(configPath, envPath), cfg, ignorePrompt)

	written, err := os.ReadFile(configPath)
	require.NoError(t, err)

	assert.Contains(t, string(written), "min_time: 5")
	assert.Contains(t, string(written), "retention_days: 90")
	assert.Contains(t, string(written), "export_hour: 21")
}

func TestViperReadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")

	err := os.WriteFile(configPath, []byte(`tracking:
  min_time: 10
  excluded:
    - "chrome://"
  incognito: true
streak:
  anchor: latest
  goal: 14
data:
  retention_days: 0
storage:
  driver: sqlite
`), 0o600)
	require.NoError(t, err)

	cfg, err := config.New(config.WithViperConfig(configPath, ""))
	require.NoError(t, err)

	want := defaultConfig(configPath, "")
	want.Tracking = config.TrackingConfig{
		MinTime:   10,
		Excluded:  []string{"chrome://"},
		Incognito: true,
	}
	want.Streak = config.StreakConfig{Anchor: "latest", Goal: 14}
	want.Data.RetentionDays = 0
	want.Storage.Driver = "sqlite"

	testutil.Diff(t, want, cfg, ignorePrompt)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	envPath := filepath.Join(tmpDir, ".env")

	t.Setenv("DIARY_SUMMARIES_API_KEY", "gemini-secret")
	t.Setenv("DIARY_SERVER_PORT", "2222")

	require.NoError(t, os.WriteFile(
		envPath,
		[]byte("DIARY_NOTION_DATABASE_ID=db-from-dotenv\n"),
		0o600,
	))

	t.Cleanup(func() {
		os.Unsetenv("DIARY_NOTION_DATABASE_ID")
	})

	cfg, err := config.New(config.WithViperConfig(configPath, envPath))
	require.NoError(t, err)

	assert.Equal(t, "gemini-secret", cfg.Summaries.APIKey)
	assert.Equal(t, uint(2222), cfg.Server.Port)
	assert.Equal(t, "db-from-dotenv", cfg.Notion.DatabaseID)

	written, err := os.ReadFile(configPath)
	require.NoError(t, err)

	assert.NotContains(t, string(written), "gemini-secret")
	assert.NotContains(t, string(written), "db-from-dotenv")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")

	err := os.WriteFile(configPath, []byte("notion:\n  export_hour: 30\n"), 0o600)
	require.NoError(t, err)

	_, err = config.New(config.WithViperConfig(configPath, ""))
	assert.Error(t, err)
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := defaultConfig("", "")
	cfg.Summaries.APIKey = "gemini-secret"

	out := cfg.String()

	assert.NotContains(t, out, "gemini-secret")
	assert.Contains(t, out, "********")
	assert.Contains(t, out, "(unset)")
}
