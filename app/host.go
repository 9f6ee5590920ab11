package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/engine"
	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/config"
	"github.com/ayoisaiah/diary/internal/logging"
	"github.com/ayoisaiah/diary/internal/notify"
	"github.com/ayoisaiah/diary/internal/pathutil"
	"github.com/ayoisaiah/diary/nativemsg"
	"github.com/ayoisaiah/diary/server"
	"github.com/ayoisaiah/diary/stats"
	"github.com/ayoisaiah/diary/store"
	"github.com/ayoisaiah/diary/summary"
	"github.com/ayoisaiah/diary/tracker"
)

// newEngine wires the tracker, notifier, summariser, and exporter described
// by cfg into an engine.
func newEngine(
	cfg *config.Config,
	db store.DB,
	logger *slog.Logger,
) (*engine.Engine, error) {
	table, err := category.LoadWithOverrides(pathutil.CategoryFilePath())
	if err != nil {
		return nil, err
	}

	opts := engine.Options{
		Store: db,
		Tracker: tracker.New(tracker.Options{
			Classifier:     table,
			Excluded:       cfg.Tracking.Excluded,
			MinTime:        cfg.MinTime(),
			TrackIncognito: cfg.Tracking.Incognito,
		}),
		Notifier: notify.New(
			cfg.Notifications.Enabled,
			cfg.Notifications.Sound,
			"",
			logger,
		),
		Logger:        logger,
		GoalCmd:       cfg.Notifications.GoalCmd,
		MinChars:      cfg.Summaries.MinChars,
		MaxChars:      cfg.Summaries.MaxChars,
		ExportHour:    cfg.Notion.ExportHour,
		RetentionDays: cfg.Data.RetentionDays,
		AutoExport:    cfg.Notion.AutoExport,
	}

	if cfg.Summaries.Enabled {
		s, err := summary.New(
			cfg.Summaries.Endpoint,
			cfg.Summaries.Model,
			cfg.Summaries.APIKey,
		)
		if err != nil {
			logger.Warn("page summaries are unavailable", "error", err)
		} else {
			opts.Summarizer = s
		}
	}

	exporter, err := newExporter(cfg)
	if err == nil {
		opts.Exporter = exporter
	} else if cfg.Notion.AutoExport {
		logger.Warn("Notion auto-export is unavailable", "error", err)
	}

	return engine.New(opts)
}

// daemon holds the resources shared by the long-running commands.
type daemon struct {
	cfg    *config.Config
	db     store.DB
	logger *slog.Logger
	engine *engine.Engine
	close  func()
}

func startDaemon(ctx *cli.Context, logOpts logging.Options) (*daemon, error) {
	cfg, err := loadConfig(ctx, false)
	if err != nil {
		return nil, err
	}

	logOpts.Level = cfg.Logging.Level
	logOpts.Format = cfg.Logging.Format

	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	db, err := openStore(cfg)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	eng, err := newEngine(cfg, db, logger)
	if err != nil {
		db.Close()
		logCloser.Close()

		return nil, err
	}

	return &daemon{
		cfg:    cfg,
		db:     db,
		logger: logger,
		engine: eng,
		close: func() {
			db.Close()
			logCloser.Close()
		},
	}, nil
}

// serveHTTP runs the HTTP server until ctx is cancelled. Failing to bind the
// port is logged rather than fatal when optional is true.
func (rt *daemon) serveHTTP(ctx context.Context, optional bool) error {
	anchor, _ := stats.ParseAnchor(rt.cfg.Streak.Anchor)

	srv := server.New(rt.db, rt.engine, anchor, rt.logger)

	err := srv.ListenAndServe(ctx, rt.cfg.Server.Port)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	if optional {
		rt.logger.Warn("HTTP server unavailable", "port", rt.cfg.Server.Port, "error", err)
		return nil
	}

	return err
}

// hostAction runs the native messaging host. The browser starts it and
// talks to it over standard input and output, so logs go to the log file
// only.
func hostAction(ctx *cli.Context) error {
	disableStyling()

	rt, err := startDaemon(ctx, logging.Options{File: pathutil.LogFilePath()})
	if err != nil {
		return err
	}

	defer rt.close()

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("native messaging host started", "origin", ctx.String("origin"))

	done := make(chan error, 1)

	go func() {
		done <- rt.engine.Run(runCtx)
	}()

	if !ctx.Bool("no-server") {
		go func() {
			_ = rt.serveHTTP(runCtx, true)
		}()
	}

	err = nativemsg.Serve(runCtx, os.Stdin, os.Stdout, rt.engine, rt.logger)
	if err != nil {
		rt.logger.Error("native messaging failed", "error", err)
	}

	stop()

	if runErr := <-done; runErr != nil {
		return runErr
	}

	rt.logger.Info("native messaging host stopped")

	return err
}

// serveAction runs the event loop behind the HTTP API, for browsers that
// post events instead of using native messaging.
func serveAction(ctx *cli.Context) error {
	rt, err := startDaemon(ctx, logging.Options{
		File:   pathutil.LogFilePath(),
		Stderr: true,
	})
	if err != nil {
		return err
	}

	defer rt.close()

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)

	go func() {
		done <- rt.engine.Run(runCtx)
	}()

	serveErr := rt.serveHTTP(runCtx, false)

	stop()

	if err := <-done; err != nil {
		return err
	}

	return serveErr
}
