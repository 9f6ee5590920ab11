package stats

import (
	"slices"
	"time"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
)

// ProductiveDaySeconds is the learning and productive time needed for a day
// to count towards a streak.
const ProductiveDaySeconds = 1800

// Anchor decides which run of productive days is reported as the current
// streak.
type Anchor string

const (
	// AnchorToday requires today to be a productive day. Until today reaches
	// the threshold, the current streak is zero.
	AnchorToday Anchor = "today"
	// AnchorLatest reports the run that ends on the most recent productive
	// day in the log, regardless of how long ago that was.
	AnchorLatest Anchor = "latest"
)

var errInvalidAnchor = &apperr.Error{
	Message: "invalid streak anchor %q: must be 'today' or 'latest'",
}

// ParseAnchor validates s as a streak anchor.
func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(s)
	if a != AnchorToday && a != AnchorLatest {
		return "", errInvalidAnchor.Fmt(s)
	}

	return a, nil
}

// Streak summarises runs of consecutive productive days.
type Streak struct {
	LastActive time.Time `json:"last_active"`
	Current    int       `json:"current"`
	Longest    int       `json:"longest"`
}

type day struct {
	date       time.Time
	productive int
}

// groupByDay buckets records by local calendar day, most recent first.
func groupByDay(records []models.ActivityRecord) []day {
	byKey := make(map[int]*day)

	for i := range records {
		rec := records[i]
		ts := rec.Timestamp.Local()
		key := timeutil.DayFormat(ts)

		d, ok := byKey[key]
		if !ok {
			d = &day{date: timeutil.RoundToStart(ts)}
			byKey[key] = d
		}

		if rec.Category.IsProductive() {
			d.productive += rec.TimeSpent
		}
	}

	days := make([]day, 0, len(byKey))
	for _, d := range byKey {
		days = append(days, *d)
	}

	slices.SortFunc(days, func(a, b day) int {
		return b.date.Compare(a.date)
	})

	return days
}

// ComputeStreak derives the current and longest runs of productive days from
// records. A run consists of adjacent calendar days that each reach
// ProductiveDaySeconds; a missing or unproductive day ends it.
func ComputeStreak(
	records []models.ActivityRecord,
	now time.Time,
	anchor Anchor,
) Streak {
	days := groupByDay(records)
	if len(days) == 0 {
		return Streak{}
	}

	qualifying := make(map[int]bool)

	var productive []time.Time

	for _, d := range days {
		if d.productive >= ProductiveDaySeconds {
			qualifying[timeutil.DayFormat(d.date)] = true
			productive = append(productive, d.date)
		}
	}

	s := Streak{
		LastActive: days[0].date,
	}

	// productive is sorted most recent first
	run := 0

	for i, date := range productive {
		if i > 0 && !adjacent(productive[i-1], date) {
			run = 0
		}

		run++

		s.Longest = max(s.Longest, run)
	}

	var start time.Time

	switch anchor {
	case AnchorLatest:
		if len(productive) > 0 {
			start = productive[0]
		}
	default:
		start = timeutil.RoundToStart(now.Local())
	}

	if !start.IsZero() {
		for d := start; qualifying[timeutil.DayFormat(d)]; d = d.AddDate(0, 0, -1) {
			s.Current++
		}
	}

	return s
}

// adjacent reports whether later is the calendar day after earlier.
func adjacent(later, earlier time.Time) bool {
	return timeutil.DayFormat(later.AddDate(0, 0, -1)) == timeutil.DayFormat(earlier)
}
