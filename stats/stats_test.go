package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/testutil"
)

var now = time.Date(2024, time.June, 12, 18, 0, 0, 0, time.Local)

func at(daysAgo, hour int) time.Time {
	d := now.AddDate(0, 0, -daysAgo)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local)
}

func TestProductivityScore(t *testing.T) {
	cases := []struct {
		Name    string
		Records []models.ActivityRecord
		Want    int
	}{
		{
			Name: "empty log",
			Want: 0,
		},
		{
			Name: "single productive record",
			Records: []models.ActivityRecord{
				testutil.Record("github.com", 3600, at(0, 10)),
			},
			Want: 80,
		},
		{
			Name: "learning and social media in equal parts",
			Records: []models.ActivityRecord{
				testutil.Record("wikipedia.org", 600, at(0, 10)),
				testutil.Record("twitter.com", 600, at(0, 11)),
			},
			Want: 55,
		},
		{
			Name: "unknown domain uses the default weight",
			Records: []models.ActivityRecord{
				testutil.Record("example.com", 120, at(0, 10)),
			},
			Want: 50,
		},
		{
			Name: "zero time",
			Records: []models.ActivityRecord{
				testutil.Record("github.com", 0, at(0, 10)),
			},
			Want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, ProductivityScore(tc.Records))
		})
	}
}

func TestTimeByCategorySumsToTotal(t *testing.T) {
	records := []models.ActivityRecord{
		testutil.Record("github.com", 300, at(0, 9)),
		testutil.Record("youtube.com", 120, at(0, 10)),
		testutil.Record("example.com", 45, at(1, 10)),
		testutil.Record("github.com", 60, at(2, 10)),
		testutil.Record("amazon.com", 30, at(2, 11)),
	}

	byCategory := TimeByCategory(records)

	var sum int
	for _, v := range byCategory {
		sum += v
	}

	assert.Equal(t, TotalTime(records), sum)
	assert.Equal(t, 555, sum)
	assert.Equal(t, 360, byCategory[category.Productive])
	assert.Equal(t, 45, byCategory[category.Misc])

	byDomain := TimeByDomain(records)
	assert.Equal(t, 360, byDomain["github.com"])
}

func TestRank(t *testing.T) {
	entries := Rank(map[string]int{
		"a10": 60,
		"a2":  60,
		"b":   180,
	}, 300)

	require.Len(t, entries, 3)

	assert.Equal(t, "b", entries[0].Key)
	assert.InDelta(t, 60.0, entries[0].Percent, 0.001)
	assert.Equal(t, "a2", entries[1].Key)
	assert.Equal(t, "a10", entries[2].Key)
	assert.InDelta(t, 20.0, entries[2].Percent, 0.001)
}

func TestFilter(t *testing.T) {
	records := []models.ActivityRecord{
		testutil.Record("github.com", 60, at(3, 10)),
		testutil.Record("github.com", 60, at(1, 10)),
		testutil.Record("github.com", 60, at(0, 10)),
	}

	assert.Len(t, Filter(records, time.Time{}, time.Time{}), 3)
	assert.Len(t, Filter(records, at(1, 0), time.Time{}), 2)
	assert.Len(t, Filter(records, time.Time{}, at(2, 0)), 1)
	assert.Len(t, OnDay(records, now), 1)
}

func TestComputeStreak(t *testing.T) {
	t.Run("seven consecutive days ending today", func(t *testing.T) {
		records := testutil.ProductiveDays(7, now, ProductiveDaySeconds)

		s := ComputeStreak(records, now, AnchorToday)

		assert.Equal(t, 7, s.Current)
		assert.GreaterOrEqual(t, s.Longest, 7)
		assert.Equal(t, at(0, 0), s.LastActive)
	})

	t.Run("idempotent", func(t *testing.T) {
		records := testutil.ProductiveDays(4, now, 2000)

		assert.Equal(
			t,
			ComputeStreak(records, now, AnchorToday),
			ComputeStreak(records, now, AnchorToday),
		)
	})

	t.Run("run ending yesterday", func(t *testing.T) {
		records := testutil.ProductiveDays(3, now.AddDate(0, 0, -1), 2000)

		today := ComputeStreak(records, now, AnchorToday)
		assert.Equal(t, 0, today.Current)
		assert.Equal(t, 3, today.Longest)

		latest := ComputeStreak(records, now, AnchorLatest)
		assert.Equal(t, 3, latest.Current)
		assert.Equal(t, 3, latest.Longest)
	})

	t.Run("latest logged day is unproductive", func(t *testing.T) {
		records := append(
			testutil.ProductiveDays(3, now.AddDate(0, 0, -1), 2000),
			testutil.Record("youtube.com", 100, at(0, 10)),
		)

		today := ComputeStreak(records, now, AnchorToday)
		assert.Equal(t, 0, today.Current)
		assert.Equal(t, 3, today.Longest)
		assert.Equal(t, at(0, 0), today.LastActive)

		latest := ComputeStreak(records, now, AnchorLatest)
		assert.Equal(t, 3, latest.Current)
		assert.Equal(t, 3, latest.Longest)
	})

	t.Run("unproductive day breaks the run", func(t *testing.T) {
		records := []models.ActivityRecord{
			testutil.Record("github.com", 2000, at(2, 10)),
			testutil.Record("github.com", 100, at(1, 10)),
			testutil.Record("youtube.com", 5000, at(1, 11)),
			testutil.Record("github.com", 2000, at(0, 10)),
		}

		s := ComputeStreak(records, now, AnchorToday)

		assert.Equal(t, 1, s.Current)
		assert.Equal(t, 1, s.Longest)
	})

	t.Run("missing day breaks the run", func(t *testing.T) {
		records := []models.ActivityRecord{
			testutil.Record("github.com", 2000, at(5, 10)),
			testutil.Record("github.com", 2000, at(4, 10)),
			testutil.Record("github.com", 2000, at(3, 10)),
			testutil.Record("github.com", 2000, at(1, 10)),
			testutil.Record("github.com", 2000, at(0, 10)),
		}

		s := ComputeStreak(records, now, AnchorToday)

		assert.Equal(t, 2, s.Current)
		assert.Equal(t, 3, s.Longest)
	})

	t.Run("records split across a day add up", func(t *testing.T) {
		records := []models.ActivityRecord{
			testutil.Record("github.com", 900, at(0, 9)),
			testutil.Record("wikipedia.org", 900, at(0, 14)),
		}

		s := ComputeStreak(records, now, AnchorToday)

		assert.Equal(t, 1, s.Current)
	})

	t.Run("empty log", func(t *testing.T) {
		assert.Equal(t, Streak{}, ComputeStreak(nil, now, AnchorToday))
	})
}

func TestParseAnchor(t *testing.T) {
	a, err := ParseAnchor("latest")
	require.NoError(t, err)
	assert.Equal(t, AnchorLatest, a)

	_, err = ParseAnchor("yesterday")
	assert.ErrorIs(t, err, errInvalidAnchor)
}

func unlocked(achievements []Achievement) map[string]bool {
	m := make(map[string]bool)
	for _, a := range achievements {
		m[a.ID] = a.Unlocked
	}

	return m
}

func TestAchievements(t *testing.T) {
	t.Run("empty log unlocks nothing", func(t *testing.T) {
		got := Achievements(nil, Streak{}, now)

		require.Len(t, got, len(catalog))

		for _, a := range got {
			assert.False(t, a.Unlocked, a.ID)
		}
	})

	t.Run("mixed day", func(t *testing.T) {
		records := []models.ActivityRecord{
			testutil.Record("github.com", 1800, at(0, 8)),
			testutil.Record("wikipedia.org", 1800, at(0, 10)),
			testutil.Record("youtube.com", 600, at(0, 20)),
		}

		got := unlocked(Achievements(records, ComputeStreak(records, now, AnchorToday), now))

		assert.True(t, got["first_day"])
		assert.True(t, got["productive_hour"])
		assert.True(t, got["balanced_day"])
		assert.True(t, got["early_bird"])
		assert.False(t, got["week_streak"])
		assert.False(t, got["learning_master"])
	})

	t.Run("week streak and weekly learning", func(t *testing.T) {
		records := testutil.ProductiveDays(7, now, ProductiveDaySeconds)
		records = append(
			records,
			testutil.Record("coursera.org", 18000, at(2, 15)),
		)

		got := unlocked(Achievements(records, ComputeStreak(records, now, AnchorToday), now))

		assert.True(t, got["week_streak"])
		assert.True(t, got["learning_master"])
		assert.False(t, got["early_bird"])
	})

	t.Run("learning outside the trailing week does not count", func(t *testing.T) {
		records := []models.ActivityRecord{
			testutil.Record("coursera.org", 18000, at(10, 15)),
		}

		got := unlocked(Achievements(records, Streak{}, now))

		assert.False(t, got["learning_master"])
	})
}

func TestBuildDigest(t *testing.T) {
	records := []models.ActivityRecord{
		testutil.Record("github.com", 3600, at(0, 10)),
		testutil.Record("github.com", 3600, at(1, 10)),
	}

	summaries := []models.Summary{
		{URL: "https://a.example/1", Summary: "first", Timestamp: at(0, 9)},
		{URL: "https://b.example/2", Summary: "second", Timestamp: at(0, 10)},
		{URL: "https://c.example/3", Summary: "third", Timestamp: at(0, 11)},
		{URL: "https://d.example/4", Summary: "fourth", Timestamp: at(0, 12)},
		{URL: "https://e.example/5", Summary: "old", Timestamp: at(1, 12)},
	}

	d := BuildDigest(records, summaries, now)

	assert.Equal(t, "Digital Diary - June 12, 2024", d.Title)
	assert.Equal(t, 80, d.ProductivityScore)
	assert.Contains(t, d.Body, "Total Time Tracked: 1h\n")
	assert.Contains(t, d.Body, "Productivity Score: 80/100")
	assert.Contains(t, d.Body, "• productive: 1h (100.0%)")
	assert.Contains(t, d.Body, "Key Takeaways:")
	assert.NotContains(t, d.Body, "first")
	assert.Contains(t, d.Body, "• d.example: fourth")
	assert.NotContains(t, d.Body, "old")

	empty := BuildDigest(nil, nil, now)
	assert.Equal(t, 0, empty.ProductivityScore)
	assert.True(t, strings.HasPrefix(empty.Body, "No activity"))
}

func TestNewReport(t *testing.T) {
	var records []models.ActivityRecord

	domains := []string{
		"github.com", "wikipedia.org", "youtube.com", "twitter.com",
		"amazon.com", "notion.so", "arxiv.org", "reddit.com", "x.com",
		"etsy.com", "figma.com", "bbc.com",
	}

	for i, d := range domains {
		records = append(records, testutil.Record(d, 60*(i+1), at(i%3, 10)))
	}

	r := NewReport(records, time.Time{}, time.Time{}, now, AnchorToday)

	assert.Len(t, r.Domains, topDomains)
	assert.Equal(t, "bbc.com", r.Domains[0].Key)
	assert.Len(t, r.Daily, dailyDays)
	assert.Equal(t, now.Format(time.DateOnly), r.Daily[dailyDays-1].Date)
	assert.Equal(t, 3, r.Summary.DaysActive)
	assert.Equal(t, TotalTime(records), r.Summary.TotalSeconds)
	assert.Equal(t, r.Summary.TotalSeconds/3, r.Summary.AveragePerDay)
	assert.Equal(t, at(2, 0), r.StartTime)

	b, err := r.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"top_domains"`)
}

func TestRenderShowsReportingPeriod(t *testing.T) {
	records := []models.ActivityRecord{
		testutil.Record("github.com", 600, at(0, 10)),
	}

	r := NewReport(records, time.Time{}, time.Time{}, now, AnchorToday)

	var buf strings.Builder

	r.Render(&buf)

	assert.Contains(t, buf.String(), "Reporting period: ")
	assert.NotContains(t, buf.String(), "%!")
}
