// Package tracker turns browser tab events into finalised activity records
package tracker

import (
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
)

// UnknownDomain is recorded for sessions whose URL has no parsable host.
const UnknownDomain = "unknown"

// Classifier assigns a category to a domain.
type Classifier interface {
	Classify(domain string) category.Category
}

// Options configures a Tracker.
type Options struct {
	Classifier Classifier
	// Excluded URLs are never tracked. A pattern matches a URL if it is a
	// prefix or a substring of it.
	Excluded []string
	// MinTime is the shortest session that is recorded.
	MinTime time.Duration
	// TrackIncognito enables tracking of private browsing tabs.
	TrackIncognito bool
}

// Session is an open browsing session on a single tab.
type Session struct {
	StartTime time.Time
	URL       string
	TabID     int
}

// Tracker keeps at most one open session per tab and finalises sessions as
// tabs are switched, navigated, closed or lose focus. It is not safe for
// concurrent use; events must be delivered one at a time.
type Tracker struct {
	opts      Options
	sessions  map[int]*Session
	activeTab int
	hasActive bool
}

// New returns a Tracker with no open sessions.
func New(opts Options) *Tracker {
	if opts.Classifier == nil {
		opts.Classifier = category.Default()
	}

	return &Tracker{
		opts:     opts,
		sessions: make(map[int]*Session),
	}
}

// Handle applies ev at time now and returns the records finalised as a
// result. Sessions shorter than the minimum tracking time are dropped.
func (t *Tracker) Handle(ev Event, now time.Time) []models.ActivityRecord {
	var out []models.ActivityRecord

	emit := func(tabID int) {
		if rec, ok := t.finalize(tabID, now); ok {
			out = append(out, rec)
		}
	}

	switch e := ev.(type) {
	case TabActivated:
		t.activate(e.TabID, e.URL, e.Incognito, now, emit)
	case TabUpdated:
		if e.URL == "" || !t.hasActive || e.TabID != t.activeTab {
			return nil
		}

		emit(e.TabID)
		t.open(e.TabID, e.URL, e.Incognito, now)
	case TabRemoved:
		emit(e.TabID)

		if t.hasActive && t.activeTab == e.TabID {
			t.hasActive = false
		}
	case FocusChanged:
		if e.WindowID == WindowNone {
			if t.hasActive {
				emit(t.activeTab)
			}

			return out
		}

		if e.URL != "" {
			t.activate(e.TabID, e.URL, e.Incognito, now, emit)
		}
	}

	return out
}

func (t *Tracker) activate(
	tabID int,
	rawURL string,
	incognito bool,
	now time.Time,
	emit func(int),
) {
	if t.hasActive {
		emit(t.activeTab)
	}

	// a tab can only have one open session
	emit(tabID)

	t.activeTab = tabID
	t.hasActive = true

	t.open(tabID, rawURL, incognito, now)
}

func (t *Tracker) open(tabID int, rawURL string, incognito bool, now time.Time) {
	if rawURL == "" || t.Excluded(rawURL) {
		return
	}

	if incognito && !t.opts.TrackIncognito {
		return
	}

	t.sessions[tabID] = &Session{
		TabID:     tabID,
		URL:       rawURL,
		StartTime: now,
	}
}

// finalize closes the open session for tabID, if any. The record is only
// returned if the session lasted at least the minimum tracking time.
func (t *Tracker) finalize(
	tabID int,
	now time.Time,
) (models.ActivityRecord, bool) {
	sess, ok := t.sessions[tabID]
	if !ok {
		return models.ActivityRecord{}, false
	}

	delete(t.sessions, tabID)

	duration := int(math.Round(now.Sub(sess.StartTime).Seconds()))
	if duration < 0 {
		duration = 0
	}

	if time.Duration(duration)*time.Second < t.opts.MinTime {
		return models.ActivityRecord{}, false
	}

	domain := Domain(sess.URL)

	return models.ActivityRecord{
		ID:        uuid.NewString(),
		Domain:    domain,
		URL:       sess.URL,
		Category:  t.opts.Classifier.Classify(domain),
		TimeSpent: duration,
		Timestamp: now,
	}, true
}

// FinalizeAll closes every open session, for example when the event source
// disconnects.
func (t *Tracker) FinalizeAll(now time.Time) []models.ActivityRecord {
	var out []models.ActivityRecord

	for tabID := range t.sessions {
		if rec, ok := t.finalize(tabID, now); ok {
			out = append(out, rec)
		}
	}

	t.hasActive = false

	return out
}

// Active returns the open session of the active tab.
func (t *Tracker) Active() (Session, bool) {
	if !t.hasActive {
		return Session{}, false
	}

	sess, ok := t.sessions[t.activeTab]
	if !ok {
		return Session{}, false
	}

	return *sess, true
}

// Len returns the number of open sessions.
func (t *Tracker) Len() int {
	return len(t.sessions)
}

// Excluded reports whether rawURL matches one of the exclusion patterns.
func (t *Tracker) Excluded(rawURL string) bool {
	for _, p := range t.opts.Excluded {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(rawURL, p) || strings.Contains(rawURL, p) {
			return true
		}
	}

	return false
}

// Domain returns the hostname of rawURL, or UnknownDomain if it cannot be
// determined.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return UnknownDomain
	}

	host := u.Hostname()
	if host == "" {
		return UnknownDomain
	}

	return host
}
