// Package stats computes browsing statistics, streaks, and achievements from
// the activity log
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/maruel/natural"

	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
)

const defaultWeight = 5

var weights = map[category.Category]int{
	category.Learning:      10,
	category.Productive:    8,
	category.Shopping:      3,
	category.Entertainment: 2,
	category.SocialMedia:   1,
}

// Entry is a labelled duration used for ranked breakdowns.
type Entry struct {
	Key     string  `json:"key"`
	Seconds int     `json:"seconds"`
	Percent float64 `json:"percent"`
}

// TotalTime returns the sum of time spent across records.
func TotalTime(records []models.ActivityRecord) int {
	var total int

	for i := range records {
		total += records[i].TimeSpent
	}

	return total
}

// TimeByCategory sums time spent per category.
func TimeByCategory(records []models.ActivityRecord) map[category.Category]int {
	m := make(map[category.Category]int)

	for i := range records {
		m[records[i].Category] += records[i].TimeSpent
	}

	return m
}

// TimeByDomain sums time spent per domain.
func TimeByDomain(records []models.ActivityRecord) map[string]int {
	m := make(map[string]int)

	for i := range records {
		m[records[i].Domain] += records[i].TimeSpent
	}

	return m
}

// Weight returns the productivity weight of c.
func Weight(c category.Category) int {
	if w, ok := weights[c]; ok {
		return w
	}

	return defaultWeight
}

// ProductivityScore is the time weighted average of the category weights of
// records, scaled to [0, 100].
func ProductivityScore(records []models.ActivityRecord) int {
	var total, weighted int

	for i := range records {
		rec := records[i]
		total += rec.TimeSpent
		weighted += rec.TimeSpent * Weight(rec.Category)
	}

	if total == 0 {
		return 0
	}

	avg := float64(weighted) / float64(total)

	return timeutil.Round(math.Min(100, 10*avg))
}

// Filter returns the records whose timestamp falls within [start, end]. A zero
// start or end leaves that side unbounded.
func Filter(records []models.ActivityRecord, start, end time.Time) []models.ActivityRecord {
	var out []models.ActivityRecord

	for i := range records {
		ts := records[i].Timestamp

		if !start.IsZero() && ts.Before(start) {
			continue
		}

		if !end.IsZero() && ts.After(end) {
			continue
		}

		out = append(out, records[i])
	}

	return out
}

// OnDay returns the records logged on the local calendar day of day.
func OnDay(records []models.ActivityRecord, day time.Time) []models.ActivityRecord {
	key := timeutil.DayFormat(day.Local())

	var out []models.ActivityRecord

	for i := range records {
		if timeutil.DayFormat(records[i].Timestamp.Local()) == key {
			out = append(out, records[i])
		}
	}

	return out
}

// Rank sorts m by descending duration, breaking ties by natural key order.
// Each entry's Percent is its share of total.
func Rank[K ~string](m map[K]int, total int) []Entry {
	out := make([]Entry, 0, len(m))

	for k, v := range m {
		e := Entry{Key: string(k), Seconds: v}

		if total > 0 {
			e.Percent = math.Round(float64(v)/float64(total)*1000) / 10
		}

		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}

		return natural.Less(out[i].Key, out[j].Key)
	})

	return out
}
