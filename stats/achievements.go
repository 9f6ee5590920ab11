package stats

import (
	"slices"
	"time"

	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
)

const (
	productiveHourSeconds = 3600
	weeklyLearningSeconds = 5 * 3600
	weekStreakDays        = 7
	earlyBirdHour         = 9
)

// Achievement is a milestone that is unlocked once its predicate holds for
// the activity log.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type achievementInput struct {
	now     time.Time
	records []models.ActivityRecord
	streak  Streak
}

type achievementDef struct {
	unlocked func(in achievementInput) bool
	Achievement
}

var catalog = []achievementDef{
	{
		Achievement: Achievement{
			ID:          "first_day",
			Name:        "Getting Started",
			Description: "Complete your first day of tracking",
			Icon:        "🌱",
		},
		unlocked: func(in achievementInput) bool {
			return len(in.records) > 0
		},
	},
	{
		Achievement: Achievement{
			ID:          "productive_hour",
			Name:        "Focused Hour",
			Description: "Spend 1 hour on productive activities",
			Icon:        "⏰",
		},
		unlocked: func(in achievementInput) bool {
			return productiveTime(in.records) >= productiveHourSeconds
		},
	},
	{
		Achievement: Achievement{
			ID:          "week_streak",
			Name:        "Week Warrior",
			Description: "Maintain a 7-day productivity streak",
			Icon:        "🔥",
		},
		unlocked: func(in achievementInput) bool {
			return in.streak.Current >= weekStreakDays ||
				in.streak.Longest >= weekStreakDays
		},
	},
	{
		Achievement: Achievement{
			ID:          "learning_master",
			Name:        "Learning Master",
			Description: "Spend 5 hours learning in a week",
			Icon:        "📚",
		},
		unlocked: func(in achievementInput) bool {
			return weeklyLearning(in.records, in.now) >= weeklyLearningSeconds
		},
	},
	{
		Achievement: Achievement{
			ID:          "balanced_day",
			Name:        "Balanced Life",
			Description: "Have a day with both learning and entertainment",
			Icon:        "⚖️",
		},
		unlocked: func(in achievementInput) bool {
			return hasBalancedDay(in.records)
		},
	},
	{
		Achievement: Achievement{
			ID:          "early_bird",
			Name:        "Early Bird",
			Description: "Start productive work before 9 AM",
			Icon:        "🌅",
		},
		unlocked: func(in achievementInput) bool {
			return slices.ContainsFunc(in.records, func(r models.ActivityRecord) bool {
				return r.Category.IsProductive() &&
					r.Timestamp.Local().Hour() < earlyBirdHour
			})
		},
	},
}

// Achievements evaluates every achievement in the catalog against records.
func Achievements(
	records []models.ActivityRecord,
	streak Streak,
	now time.Time,
) []Achievement {
	in := achievementInput{
		records: records,
		streak:  streak,
		now:     now,
	}

	out := make([]Achievement, len(catalog))

	for i, def := range catalog {
		a := def.Achievement
		a.Unlocked = def.unlocked(in)
		out[i] = a
	}

	return out
}

func productiveTime(records []models.ActivityRecord) int {
	var total int

	for i := range records {
		if records[i].Category.IsProductive() {
			total += records[i].TimeSpent
		}
	}

	return total
}

// weeklyLearning sums learning time in the seven days leading up to now.
func weeklyLearning(records []models.ActivityRecord, now time.Time) int {
	cutoff := now.AddDate(0, 0, -7)

	var total int

	for i := range records {
		rec := records[i]
		if rec.Category == category.Learning && !rec.Timestamp.Before(cutoff) {
			total += rec.TimeSpent
		}
	}

	return total
}

func hasBalancedDay(records []models.ActivityRecord) bool {
	type flags struct{ learning, entertainment bool }

	days := make(map[int]*flags)

	for i := range records {
		rec := records[i]
		key := timeutil.DayFormat(rec.Timestamp.Local())

		f, ok := days[key]
		if !ok {
			f = &flags{}
			days[key] = f
		}

		switch rec.Category {
		case category.Learning:
			f.learning = true
		case category.Entertainment:
			f.entertainment = true
		}

		if f.learning && f.entertainment {
			return true
		}
	}

	return false
}
