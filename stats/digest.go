package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/tracker"
)

const maxTakeaways = 3

// Digest is the daily summary exported to external note-taking services.
type Digest struct {
	Date              time.Time `json:"date"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	ProductivityScore int       `json:"productivity_score"`
}

// BuildDigest summarises the activity and page summaries logged on the local
// calendar day of now.
func BuildDigest(
	records []models.ActivityRecord,
	summaries []models.Summary,
	now time.Time,
) Digest {
	today := OnDay(records, now)

	return Digest{
		Title:             "Digital Diary - " + now.Local().Format("January 2, 2006"),
		Date:              timeutil.RoundToStart(now.Local()),
		ProductivityScore: ProductivityScore(today),
		Body:              digestBody(today, summariesOnDay(summaries, now)),
	}
}

func digestBody(records []models.ActivityRecord, summaries []models.Summary) string {
	if len(records) == 0 {
		return "No activity recorded today."
	}

	var b strings.Builder

	total := TotalTime(records)

	b.WriteString("Daily Digital Activity Summary\n\n")
	fmt.Fprintf(&b, "Total Time Tracked: %s\n", timeutil.FormatSeconds(total))
	fmt.Fprintf(&b, "Productivity Score: %d/100\n\n", ProductivityScore(records))

	b.WriteString("Time by Category:\n")

	for _, e := range Rank(TimeByCategory(records), total) {
		fmt.Fprintf(
			&b,
			"• %s: %s (%.1f%%)\n",
			e.Key,
			timeutil.FormatSeconds(e.Seconds),
			e.Percent,
		)
	}

	if len(summaries) > 0 {
		if len(summaries) > maxTakeaways {
			summaries = summaries[len(summaries)-maxTakeaways:]
		}

		b.WriteString("\nKey Takeaways:\n")

		for _, s := range summaries {
			host := tracker.Domain(s.URL)
			if host == tracker.UnknownDomain {
				continue
			}

			fmt.Fprintf(&b, "• %s: %s\n", host, s.Summary)
		}
	}

	return b.String()
}

func summariesOnDay(summaries []models.Summary, day time.Time) []models.Summary {
	key := timeutil.DayFormat(day.Local())

	var out []models.Summary

	for _, s := range summaries {
		if timeutil.DayFormat(s.Timestamp.Local()) == key {
			out = append(out, s)
		}
	}

	return out
}
