package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/viper"

	"github.com/ayoisaiah/diary/internal/osutil"
)

const asciiLogo = `
██████╗ ██╗ █████╗ ██████╗ ██╗   ██╗
██╔══██╗██║██╔══██╗██╔══██╗╚██╗ ██╔╝
██║  ██║██║███████║██████╔╝ ╚████╔╝
██║  ██║██║██╔══██║██╔══██╗  ╚██╔╝
██████╔╝██║██║  ██║██║  ██║   ██║
╚═════╝ ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝`

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	StreakAnchor     string
	SummariesAPIKey  string
	NotionAPIKey     string
	NotionDatabaseID string
	RetentionDays    int
	Summaries        bool
	AutoExport       bool
}

// WithPromptConfig returns an Option that asks for the main settings when
// the config file does not exist yet. It must run before WithViperConfig.
// API keys entered here are saved to the dotenv file at envPath rather than
// the config file.
func WithPromptConfig(configPath, envPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		opts, err := promptUser()
		if err != nil {
			return err
		}

		if err := saveSecrets(envPath, opts); err != nil {
			return err
		}

		c.prompt = &opts

		return nil
	}
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	opts := PromptOptions{
		StreakAnchor:  "today",
		RetentionDays: 90,
	}

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure Diary for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'diary edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Keep browsing history for").
				Options(
					huh.NewOption("30 days", 30),
					huh.NewOption("90 days", 90).Selected(true),
					huh.NewOption("1 year", 365),
					huh.NewOption("Forever", 0),
				).
				Value(&opts.RetentionDays),
			huh.NewSelect[string]().
				Title("Current streak counts from").
				Options(
					huh.NewOption("Today (today must be productive)", "today").Selected(true),
					huh.NewOption("The latest productive day", "latest"),
				).
				Value(&opts.StreakAnchor),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Summarise the pages you read with Gemini?").
				Value(&opts.Summaries),
			huh.NewInput().
				Title("Gemini API key (leave blank to set it later)").
				EchoMode(huh.EchoModePassword).
				Value(&opts.SummariesAPIKey),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export a daily digest to Notion?").
				Value(&opts.AutoExport),
			huh.NewInput().
				Title("Notion integration token (leave blank to set it later)").
				EchoMode(huh.EchoModePassword).
				Value(&opts.NotionAPIKey),
			huh.NewInput().
				Title("Notion database ID").
				Value(&opts.NotionDatabaseID),
		),
	)

	if err := form.Run(); err != nil {
		return opts, err
	}

	return opts, nil
}

// applyPromptOptions makes the prompt answers the defaults that get written
// to the new config file.
func applyPromptOptions(v *viper.Viper, opts *PromptOptions) {
	v.SetDefault(keyRetentionDays, opts.RetentionDays)
	v.SetDefault(keyStreakAnchor, opts.StreakAnchor)
	v.SetDefault(keySummariesEnabled, opts.Summaries)
	v.SetDefault(keyNotionAutoExport, opts.AutoExport)
	v.SetDefault(keyNotionDatabaseID, strings.TrimSpace(opts.NotionDatabaseID))
}

// EnvKey returns the environment variable that overrides a config key.
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// saveSecrets merges the API keys from opts into the dotenv file at path.
func saveSecrets(path string, opts PromptOptions) error {
	secrets := map[string]string{
		EnvKey(keySummariesAPIKey): strings.TrimSpace(opts.SummariesAPIKey),
		EnvKey(keyNotionAPIKey):    strings.TrimSpace(opts.NotionAPIKey),
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return errReadEnv.Fmt(path).Wrap(err)
		}

		env = make(map[string]string)
	}

	changed := false

	for k, v := range secrets {
		if v != "" {
			env[k] = v
			changed = true
		}
	}

	if !changed {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return err
	}

	if err := godotenv.Write(env, path); err != nil {
		return err
	}

	return os.Chmod(path, osutil.SecretPermission)
}
