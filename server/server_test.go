package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/diary/engine"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/testutil"
	"github.com/ayoisaiah/diary/stats"
	"github.com/ayoisaiah/diary/store"
	"github.com/ayoisaiah/diary/tracker"
)

var now = time.Date(2024, time.June, 12, 18, 0, 0, 0, time.Local)

type submitter struct {
	mu     sync.Mutex
	events []engine.Event
	reply  engine.Reply
	err    error
}

func (s *submitter) Submit(_ context.Context, ev engine.Event) (engine.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)

	return s.reply, s.err
}

func newTestServer(t *testing.T, events Submitter) (*Server, store.DB) {
	t.Helper()

	db, err := store.NewClient(filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	records := testutil.ProductiveDays(3, now, 3600)
	records = append(records, testutil.Record("youtube.com", 600, now.Add(-time.Hour)))

	for i := range records {
		require.NoError(t, db.AppendActivity(&records[i]))
	}

	s := New(db, events, stats.AnchorToday, nil)
	s.now = func() time.Time { return now }

	return s, db
}

func get(t *testing.T, h http.Handler, target string, v any) int {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if v != nil {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
	}

	return rec.Code
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	var today stats.Report
	require.Equal(t, http.StatusOK, get(t, h, "/api/stats?period=today", &today))

	assert.Equal(t, 4200, today.Summary.TotalSeconds)
	assert.Equal(t, 1, today.Summary.DaysActive)
	require.NotEmpty(t, today.Domains)
	assert.Equal(t, "github.com", today.Domains[0].Key)
	assert.Equal(t, 3, today.Streak.Current)
	assert.Len(t, today.Daily, 7)

	var all stats.Report
	require.Equal(t, http.StatusOK, get(t, h, "/api/stats", &all))
	assert.Equal(t, 3*3600+600, all.Summary.TotalSeconds)
	assert.Equal(t, 3, all.Summary.DaysActive)

	var ranged stats.Report
	require.Equal(t, http.StatusOK, get(t, h, "/api/stats?start=2024-06-10&end=2024-06-11", &ranged))
	assert.Equal(t, 2*3600, ranged.Summary.TotalSeconds)
}

func TestStatsBadRequest(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	var body map[string]string

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats?period=fortnight", &body))
	assert.Contains(t, body["error"], "fortnight")

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats?start=June", &body))
	assert.Contains(t, body["error"], "YYYY-MM-DD")
}

func TestStreakAndAchievements(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	var streak stats.Streak
	require.Equal(t, http.StatusOK, get(t, h, "/api/streak", &streak))
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, 3, streak.Longest)

	var achievements []stats.Achievement
	require.Equal(t, http.StatusOK, get(t, h, "/api/achievements", &achievements))
	require.NotEmpty(t, achievements)
	assert.Equal(t, "first_day", achievements[0].ID)
	assert.True(t, achievements[0].Unlocked)
}

func TestSummariesAndDigest(t *testing.T) {
	s, db := newTestServer(t, nil)
	h := s.Handler()

	require.NoError(t, db.AppendSummary(&models.Summary{
		URL:       "https://go.dev/blog",
		Summary:   "Go 1.22 ships range over int",
		Timestamp: now.Add(-2 * time.Hour),
	}))

	var summaries []models.Summary
	require.Equal(t, http.StatusOK, get(t, h, "/api/summaries?period=today", &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "https://go.dev/blog", summaries[0].URL)

	var digest stats.Digest
	require.Equal(t, http.StatusOK, get(t, h, "/api/digest", &digest))
	assert.Equal(t, "Digital Diary - June 12, 2024", digest.Title)
	assert.Contains(t, digest.Body, "go.dev: Go 1.22 ships range over int")
}

func TestGoalFromStore(t *testing.T) {
	s, db := newTestServer(t, nil)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goal", nil))
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	require.NoError(t, db.SaveGoal(&models.Goal{
		Type:          models.GoalFocus,
		TargetSeconds: 3600,
		Active:        true,
		StartTime:     now,
	}))

	var g models.Goal
	require.Equal(t, http.StatusOK, get(t, h, "/api/goal", &g))
	assert.Equal(t, models.GoalFocus, g.Type)
	assert.True(t, g.Active)
}

func TestEvents(t *testing.T) {
	sub := &submitter{reply: engine.Reply{OK: true}}
	s, _ := newTestServer(t, sub)
	h := s.Handler()

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(
			http.MethodPost,
			"/api/events",
			strings.NewReader(body),
		))

		return rec
	}

	rec := post(`{"type":"tab_activated","tab_id":4,"url":"https://github.com/"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, sub.events, 1)
	assert.Equal(t, engine.Browser{Event: tracker.TabActivated{
		TabID: 4,
		URL:   "https://github.com/",
	}}, sub.events[0])

	assert.Equal(t, http.StatusBadRequest, post(`{"type":"reload"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)

	sub.reply = engine.Reply{Error: "a goal is already active"}
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"type":"goal_start","goal_type":"focus","target":60}`).Code)

	sub.err = engine.ErrStopped
	assert.Equal(t, http.StatusServiceUnavailable, post(`{"type":"goal_stop"}`).Code)
}

func TestEventsRequireDispatcher(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost,
		"/api/events",
		strings.NewReader(`{"type":"export"}`),
	))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
