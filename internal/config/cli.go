package config

import (
	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration overrides.
type CLIOptions struct {
	Driver        string
	LogLevel      string
	LogFormat     string
	Port          uint
	MinTime       int
	DisableNotify bool
	NoColor       bool
}

// WithCLIConfig returns an Option that applies overrides from CLI flags.
// Only flags that were explicitly set take effect.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		var opts CLIOptions

		if ctx.IsSet("driver") {
			opts.Driver = ctx.String("driver")
		}

		if ctx.IsSet("log-level") {
			opts.LogLevel = ctx.String("log-level")
		}

		if ctx.IsSet("log-format") {
			opts.LogFormat = ctx.String("log-format")
		}

		if ctx.IsSet("port") {
			opts.Port = ctx.Uint("port")
		}

		if ctx.IsSet("min-time") {
			opts.MinTime = ctx.Int("min-time")
		}

		opts.DisableNotify = ctx.Bool("disable-notification")
		opts.NoColor = ctx.Bool("no-color")

		applyCLIOptions(c, opts)

		return nil
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) {
	if opts.Driver != "" {
		c.Storage.Driver = opts.Driver
	}

	if opts.LogLevel != "" {
		c.Logging.Level = opts.LogLevel
	}

	if opts.LogFormat != "" {
		c.Logging.Format = opts.LogFormat
	}

	if opts.Port != 0 {
		c.Server.Port = opts.Port
	}

	if opts.MinTime > 0 {
		c.Tracking.MinTime = opts.MinTime
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	if opts.NoColor {
		c.Display.NoColor = true
	}
}
