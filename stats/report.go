package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/internal/ui"
)

const (
	barChartChar  = "▇"
	topDomains    = 10
	dailyDays     = 7
	noActivityMsg = "No activity found for the specified time range"
)

// Totals holds the headline figures of a report.
type Totals struct {
	TotalSeconds      int `json:"total_seconds"`
	ProductivityScore int `json:"productivity_score"`
	DaysActive        int `json:"days_active"`
	AveragePerDay     int `json:"average_per_day"`
	Records           int `json:"records"`
}

// Day is the time logged on a single calendar day.
type Day struct {
	Date    string `json:"date"`
	Seconds int    `json:"seconds"`
	Score   int    `json:"score"`
}

// Report is the full set of statistics for a reporting period.
type Report struct {
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Categories   []Entry       `json:"categories"`
	Domains      []Entry       `json:"top_domains"`
	Daily        []Day         `json:"daily"`
	Achievements []Achievement `json:"achievements"`
	Streak       Streak        `json:"streak"`
	Summary      Totals        `json:"summary"`
}

// NewReport computes the statistics for the records within [start, end].
// Streaks and achievements always consider the full log.
func NewReport(
	records []models.ActivityRecord,
	start, end, now time.Time,
	anchor Anchor,
) *Report {
	inRange := Filter(records, start, end)

	// For all-time, start at the date of the first record
	if start.IsZero() && len(inRange) > 0 {
		first := inRange[0].Timestamp

		for i := range inRange {
			if inRange[i].Timestamp.Before(first) {
				first = inRange[i].Timestamp
			}
		}

		start = timeutil.RoundToStart(first.Local())
	}

	total := TotalTime(inRange)
	daysActive := len(groupByDay(inRange))

	r := &Report{
		StartTime: start,
		EndTime:   end,
		Summary: Totals{
			TotalSeconds:      total,
			ProductivityScore: ProductivityScore(inRange),
			DaysActive:        daysActive,
			Records:           len(inRange),
		},
		Categories: Rank(TimeByCategory(inRange), total),
		Domains:    Rank(TimeByDomain(inRange), total),
		Daily:      dailyBreakdown(records, now),
	}

	if daysActive > 0 {
		r.Summary.AveragePerDay = total / daysActive
	}

	if len(r.Domains) > topDomains {
		r.Domains = r.Domains[:topDomains]
	}

	r.Streak = ComputeStreak(records, now, anchor)
	r.Achievements = Achievements(records, r.Streak, now)

	return r
}

// dailyBreakdown returns the time logged on each of the last seven days,
// oldest first.
func dailyBreakdown(records []models.ActivityRecord, now time.Time) []Day {
	days := make([]Day, 0, dailyDays)

	for i := dailyDays - 1; i >= 0; i-- {
		date := now.Local().AddDate(0, 0, -i)
		onDay := OnDay(records, date)

		days = append(days, Day{
			Date:    date.Format(time.DateOnly),
			Seconds: TotalTime(onDay),
			Score:   ProductivityScore(onDay),
		})
	}

	return days
}

// ToJSON encodes the report as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func getSummary(s Totals) string {
	header := fmt.Sprintf("%s\n", ui.Blue("Summary"))

	return header + fmt.Sprintf(
		"Time tracked: %s\nProductivity score: %s\nDays active: %s\nAverage per day: %s\n",
		ui.Green(timeutil.FormatSeconds(s.TotalSeconds)),
		ui.Green(fmt.Sprintf("%d/100", s.ProductivityScore)),
		ui.Green(s.DaysActive),
		ui.Green(timeutil.FormatSeconds(s.AveragePerDay)),
	)
}

// getEntries renders a ranked breakdown such as categories or domains.
func getEntries(title string, entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n%s\n", ui.Blue(title)))

	for _, e := range entries {
		builder.WriteString(fmt.Sprintf(
			"%s: %s (%.1f%%)\n",
			e.Key,
			ui.Green(timeutil.FormatSeconds(e.Seconds)),
			e.Percent,
		))
	}

	return builder.String()
}

func getBarChart(days []Day) string {
	if len(days) == 0 {
		return ""
	}

	header := ui.Blue("\nDaily breakdown (minutes)")

	bars := make(pterm.Bars, 0, len(days))

	for _, d := range days {
		label := d.Date

		if t, err := time.Parse(time.DateOnly, d.Date); err == nil {
			label = t.Format("Mon Jan 02")
		}

		bars = append(bars, pterm.Bar{
			Value: timeutil.Round(float64(d.Seconds) / 60),
			Label: label,
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return header + chart
}

func getStreak(s Streak) string {
	header := fmt.Sprintf("\n%s\n", ui.Blue("Streak"))

	lastActive := "never"
	if !s.LastActive.IsZero() {
		lastActive = s.LastActive.Format("January 02, 2006")
	}

	return header + fmt.Sprintf(
		"Current: %s\nLongest: %s\nLast active: %s\n",
		ui.Green(fmt.Sprintf("%d days", s.Current)),
		ui.Green(fmt.Sprintf("%d days", s.Longest)),
		ui.Green(lastActive),
	)
}

// GetAchievements renders the achievement catalog with unlock status.
func GetAchievements(achievements []Achievement) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n%s\n", ui.Blue("Achievements")))

	for _, a := range achievements {
		status := ui.Red("locked")
		if a.Unlocked {
			status = ui.Green("unlocked")
		}

		builder.WriteString(fmt.Sprintf(
			"%s %s [%s]: %s\n",
			a.Icon,
			ui.Highlight(a.Name),
			status,
			a.Description,
		))
	}

	return builder.String()
}

// Render writes the report to w for display in a terminal.
func (r *Report) Render(w io.Writer) {
	if r.Summary.Records == 0 {
		pterm.Info.Println(noActivityMsg)
	}

	end := r.EndTime
	if end.IsZero() {
		end = time.Now()
	}

	timePeriod := "Reporting period: " + r.StartTime.Format("January 02, 2006") +
		" - " + end.Format("January 02, 2006")

	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintln(timePeriod)

	output := fmt.Sprint(
		header,
		getSummary(r.Summary),
		getEntries("Categories", r.Categories),
		getEntries("Top domains", r.Domains),
		getBarChart(r.Daily),
		getStreak(r.Streak),
		GetAchievements(r.Achievements),
	)

	fmt.Fprintln(w, strings.TrimSpace(output))
}
