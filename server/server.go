// Package server exposes diary statistics and accepts browser events over
// HTTP
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/ayoisaiah/diary/engine"
	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/stats"
	"github.com/ayoisaiah/diary/store"
)

const (
	maxEventBytes   = 8 << 20
	readTimeout     = 30 * time.Second
	writeTimeout    = time.Minute
	shutdownTimeout = 5 * time.Second
)

var (
	errInvalidPeriod = &apperr.Error{
		Message: "invalid period %q",
	}

	errInvalidDate = &apperr.Error{
		Message: "invalid %s date %q: expected YYYY-MM-DD",
	}

	errDecodeEvent = &apperr.Error{
		Message: "unable to decode event",
	}
)

// Submitter delivers an event to the dispatcher and returns its reply.
type Submitter interface {
	Submit(ctx context.Context, ev engine.Event) (engine.Reply, error)
}

// Server serves the JSON API.
type Server struct {
	db     store.DB
	events Submitter
	logger *slog.Logger
	now    func() time.Time
	anchor stats.Anchor
}

// httpError is an error with an HTTP status code.
type httpError struct {
	err    error
	status int
}

func (e *httpError) Error() string {
	return e.err.Error()
}

func (e *httpError) Unwrap() error {
	return e.err
}

func badRequest(err error) error {
	return &httpError{err: err, status: http.StatusBadRequest}
}

type errorHandler func(w http.ResponseWriter, r *http.Request) error

// New returns a Server that reads from db. When events is nil, the events
// endpoint is not available and goals are read from the store.
func New(
	db store.DB,
	events Submitter,
	anchor stats.Anchor,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		db:     db,
		events: events,
		anchor: anchor,
		logger: logger,
		now:    time.Now,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/stats", s.handle(s.Stats))
	mux.Handle("GET /api/streak", s.handle(s.Streak))
	mux.Handle("GET /api/achievements", s.handle(s.Achievements))
	mux.Handle("GET /api/summaries", s.handle(s.Summaries))
	mux.Handle("GET /api/digest", s.handle(s.Digest))
	mux.Handle("GET /api/goal", s.handle(s.Goal))

	if s.events != nil {
		mux.Handle("POST /api/events", s.handle(s.Events))
	}

	return mux
}

func (s *Server) handle(h errorHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		status := http.StatusInternalServerError

		var he *httpError
		if errors.As(err, &he) {
			status = he.status
		}

		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		}

		writeJSON(w, status, map[string]string{"error": err.Error()})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// timeRange reads the period, start, and end query parameters. Dates use
// the YYYY-MM-DD form. Without any of them the range covers the whole log.
func (s *Server) timeRange(r *http.Request) (start, end time.Time, err error) {
	query := r.URL.Query()
	now := s.now()

	if p := query.Get("period"); p != "" {
		period := timeutil.Period(p)
		if !slices.Contains(timeutil.PeriodCollection, period) {
			return start, end, badRequest(errInvalidPeriod.Fmt(p))
		}

		start, end = timeutil.PeriodRange(period, now)

		return start, end, nil
	}

	end = now

	if v := query.Get("start"); v != "" {
		start, err = time.ParseInLocation(time.DateOnly, v, now.Location())
		if err != nil {
			return start, end, badRequest(errInvalidDate.Fmt("start", v))
		}
	}

	if v := query.Get("end"); v != "" {
		end, err = time.ParseInLocation(time.DateOnly, v, now.Location())
		if err != nil {
			return start, end, badRequest(errInvalidDate.Fmt("end", v))
		}

		end = timeutil.RoundToEnd(end)
	}

	return start, end, nil
}

// Stats responds with the report for the requested range.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) error {
	start, end, err := s.timeRange(r)
	if err != nil {
		return err
	}

	records, err := s.db.GetActivity(time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, stats.NewReport(records, start, end, s.now(), s.anchor))

	return nil
}

// Streak responds with the current and longest streaks.
func (s *Server) Streak(w http.ResponseWriter, _ *http.Request) error {
	records, err := s.db.GetActivity(time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, stats.ComputeStreak(records, s.now(), s.anchor))

	return nil
}

// Achievements responds with every achievement and whether it is unlocked.
func (s *Server) Achievements(w http.ResponseWriter, _ *http.Request) error {
	now := s.now()

	records, err := s.db.GetActivity(time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	streak := stats.ComputeStreak(records, now, s.anchor)

	writeJSON(w, http.StatusOK, stats.Achievements(records, streak, now))

	return nil
}

// Summaries responds with the page summaries in the requested range.
func (s *Server) Summaries(w http.ResponseWriter, r *http.Request) error {
	start, end, err := s.timeRange(r)
	if err != nil {
		return err
	}

	summaries, err := s.db.GetSummaries(start, end)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, summaries)

	return nil
}

// Digest responds with today's digest.
func (s *Server) Digest(w http.ResponseWriter, _ *http.Request) error {
	now := s.now()
	start, end := timeutil.PeriodRange(timeutil.PeriodToday, now)

	records, err := s.db.GetActivity(start, end)
	if err != nil {
		return err
	}

	summaries, err := s.db.GetSummaries(start, end)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, stats.BuildDigest(records, summaries, now))

	return nil
}

// Goal responds with the current goal, or null when there is none.
func (s *Server) Goal(w http.ResponseWriter, r *http.Request) error {
	if s.events != nil {
		reply, err := s.events.Submit(r.Context(), engine.GoalStatus{})
		if err != nil {
			return err
		}

		writeJSON(w, http.StatusOK, reply.Goal)

		return nil
	}

	g, err := s.db.GetGoal()
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, g)

	return nil
}

// Events decodes a browser message and hands it to the dispatcher.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) error {
	var msg engine.Message

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err := dec.Decode(&msg); err != nil {
		return badRequest(errDecodeEvent.Wrap(err))
	}

	ev, err := msg.Event()
	if err != nil {
		return badRequest(err)
	}

	reply, err := s.events.Submit(r.Context(), ev)
	if err != nil {
		if errors.Is(err, engine.ErrStopped) {
			return &httpError{err: err, status: http.StatusServiceUnavailable}
		}

		return err
	}

	status := http.StatusOK
	if !reply.OK {
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, reply)

	return nil
}

// ListenAndServe serves the API on localhost:port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port uint) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}
