package goal

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
)

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func record(c category.Category, secs int) models.ActivityRecord {
	return models.ActivityRecord{Category: c, TimeSpent: secs, Timestamp: now}
}

func TestLearningGoalCompletes(t *testing.T) {
	tr := NewTracker(nil)

	_, err := tr.Start(models.GoalLearning, 10*time.Minute, now)
	require.NoError(t, err)

	changed, completed := tr.OnRecord(record(category.Learning, 300))
	assert.True(t, changed)
	assert.False(t, completed)

	changed, completed = tr.OnRecord(record(category.Learning, 300))
	assert.True(t, changed)
	assert.True(t, completed)

	want := &models.Goal{
		Type:            models.GoalLearning,
		TargetSeconds:   600,
		ProgressSeconds: 600,
		StartTime:       now,
		Completed:       true,
	}

	if diff := cmp.Diff(want, tr.Current()); diff != "" {
		t.Errorf("goal mismatch (-want +got):\n%s", diff)
	}

	// completion is reported once
	changed, completed = tr.OnRecord(record(category.Learning, 300))
	assert.False(t, changed)
	assert.False(t, completed)
	assert.Equal(t, 600, tr.Current().ProgressSeconds)
}

func TestIrrelevantCategoriesAreIgnored(t *testing.T) {
	cases := []struct {
		goalType models.GoalType
		counts   []category.Category
		ignored  []category.Category
	}{
		{
			goalType: models.GoalFocus,
			counts:   []category.Category{category.Learning, category.Productive},
			ignored:  []category.Category{category.Entertainment, category.SocialMedia, category.Shopping, category.Misc},
		},
		{
			goalType: models.GoalLearning,
			counts:   []category.Category{category.Learning},
			ignored:  []category.Category{category.Productive, category.Entertainment, category.Misc},
		},
		{
			goalType: models.GoalLimit,
			counts:   []category.Category{category.Entertainment, category.SocialMedia},
			ignored:  []category.Category{category.Learning, category.Productive, category.Shopping},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.goalType), func(t *testing.T) {
			tr := NewTracker(nil)

			_, err := tr.Start(tc.goalType, time.Hour, now)
			require.NoError(t, err)

			for _, c := range tc.ignored {
				changed, _ := tr.OnRecord(record(c, 60))
				assert.False(t, changed, "category %q", c)
			}

			assert.Zero(t, tr.Current().ProgressSeconds)

			for _, c := range tc.counts {
				changed, _ := tr.OnRecord(record(c, 60))
				assert.True(t, changed, "category %q", c)
			}

			assert.Equal(t, 60*len(tc.counts), tr.Current().ProgressSeconds)
		})
	}
}

func TestStartReplacesGoal(t *testing.T) {
	tr := NewTracker(nil)

	_, err := tr.Start(models.GoalFocus, time.Hour, now)
	require.NoError(t, err)

	tr.OnRecord(record(category.Productive, 900))

	g, err := tr.Start(models.GoalLimit, 30*time.Minute, now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, models.GoalLimit, g.Type)
	assert.Zero(t, g.ProgressSeconds)
	assert.True(t, g.Active)
	assert.Equal(t, 1800, g.TargetSeconds)
}

func TestStopDoesNotComplete(t *testing.T) {
	tr := NewTracker(nil)

	_, err := tr.Stop()
	assert.ErrorIs(t, err, ErrNoActiveGoal)

	_, err = tr.Start(models.GoalFocus, time.Hour, now)
	require.NoError(t, err)

	g, err := tr.Stop()
	require.NoError(t, err)
	assert.False(t, g.Active)
	assert.False(t, g.Completed)

	changed, _ := tr.OnRecord(record(category.Learning, 3600))
	assert.False(t, changed)
}

func TestStartValidation(t *testing.T) {
	tr := NewTracker(nil)

	_, err := tr.Start("sleep", time.Hour, now)
	assert.ErrorIs(t, err, errInvalidGoalType)

	_, err = tr.Start(models.GoalFocus, 4*time.Minute, now)
	assert.ErrorIs(t, err, errTargetTooShort)

	assert.Nil(t, tr.Current())
}
